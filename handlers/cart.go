package handlers

import (
	"net/http"

	"go_trial/cravewave/cart"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type cartLine struct {
	cart.Line
	Subtotal decimal.Decimal `json:"subtotal"`
}

type cartView struct {
	RestaurantID string          `json:"restaurant_id"`
	Lines        []cartLine      `json:"lines"`
	Total        decimal.Decimal `json:"total"`
}

func viewOf(c *cart.Cart) cartView {
	v := cartView{RestaurantID: c.RestaurantID(), Lines: []cartLine{}, Total: c.Total()}
	for _, l := range c.Lines() {
		v.Lines = append(v.Lines, cartLine{Line: l, Subtotal: l.Subtotal()})
	}
	return v
}

type addResponse struct {
	Result string   `json:"result"`
	Cart   cartView `json:"cart"`
}

func (a *App) GetCart(w http.ResponseWriter, r *http.Request) {
	var view cartView
	_ = a.Carts.With(actor(r).UserID, func(c *cart.Cart) error {
		view = viewOf(c)
		return nil
	})
	writeJSON(w, http.StatusOK, view)
}

func (a *App) ClearCart(w http.ResponseWriter, r *http.Request) {
	var view cartView
	_ = a.Carts.With(actor(r).UserID, func(c *cart.Cart) error {
		c.Clear()
		view = viewOf(c)
		return nil
	})
	writeJSON(w, http.StatusOK, view)
}

type addItemRequest struct {
	ItemID  string `json:"item_id"`
	Confirm bool   `json:"confirm"`
}

// AddCartItem adds one unit of a catalog item. Adding from a second
// restaurant answers 409 with the untouched cart until the client repeats the
// call with confirm set.
func (a *App) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	item, err := a.Catalog.MenuItem(ctx, req.ItemID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var (
		res  cart.AddResult
		view cartView
	)
	err = a.Carts.With(actor(r).UserID, func(c *cart.Cart) error {
		var err error
		res, err = c.Add(item, item.RestaurantID, req.Confirm)
		view = viewOf(c)
		return err
	})
	if err != nil {
		cartResults.WithLabelValues("error").Inc()
		writeError(w, r, err)
		return
	}
	cartResults.WithLabelValues(res.String()).Inc()

	status := http.StatusOK
	if res == cart.RequiresConfirmation {
		status = http.StatusConflict
	}
	writeJSON(w, status, addResponse{Result: res.String(), Cart: view})
}

type changeItemRequest struct {
	Delta int `json:"delta"`
}

func (a *App) ChangeCartItem(w http.ResponseWriter, r *http.Request) {
	var req changeItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var view cartView
	_ = a.Carts.With(actor(r).UserID, func(c *cart.Cart) error {
		c.ChangeQuantity(mux.Vars(r)["id"], req.Delta)
		view = viewOf(c)
		return nil
	})
	writeJSON(w, http.StatusOK, view)
}

func (a *App) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	var view cartView
	_ = a.Carts.With(actor(r).UserID, func(c *cart.Cart) error {
		c.Remove(mux.Vars(r)["id"])
		view = viewOf(c)
		return nil
	})
	writeJSON(w, http.StatusOK, view)
}
