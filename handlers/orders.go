package handlers

import (
	"net/http"
	"strings"

	"go_trial/cravewave/cart"
	"go_trial/cravewave/models"
	"go_trial/cravewave/orders"

	"github.com/gorilla/mux"
)

type placeOrderRequest struct {
	DeliveryAddress string `json:"delivery_address"`
}

// PlaceOrder checks the caller's cart out and empties it once the order is
// stored. A failed checkout leaves the cart as it was.
func (a *App) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	who := actor(r)
	var order models.Order
	err := a.Carts.With(who.UserID, func(c *cart.Cart) error {
		var err error
		order, err = a.Engine.Checkout(ctx, who, c, req.DeliveryAddress)
		if err != nil {
			return err
		}
		c.Clear()
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// ListOrders returns the orders the caller works with, newest first.
// Delivery partners may narrow the list with ?status=A,B.
func (a *App) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	who := actor(r)
	var (
		list []models.Order
		err  error
	)
	switch who.Role {
	case models.RoleCustomer:
		list, err = a.Engine.OrdersForCustomer(ctx, who.UserID)
	case models.RoleRestaurantPartner:
		if who.RestaurantID == "" {
			list = []models.Order{}
			break
		}
		list, err = a.Engine.OrdersForRestaurant(ctx, who.RestaurantID)
	case models.RoleDeliveryPartner:
		statuses, perr := parseStatuses(r.URL.Query().Get("status"))
		if perr != nil {
			writeError(w, r, perr)
			return
		}
		list, err = a.Engine.OrdersForDelivery(ctx, statuses...)
	case models.RoleAdmin:
		list, err = a.Engine.AllOrders(ctx, who)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func parseStatuses(raw string) ([]models.OrderStatus, error) {
	var out []models.OrderStatus
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		s, ok := models.ParseOrderStatus(part)
		if !ok {
			return nil, models.Validation("handlers.ListOrders", "unknown status %q", part)
		}
		out = append(out, s)
	}
	return out, nil
}

type orderView struct {
	Order        models.Order         `json:"order"`
	NextStatuses []models.OrderStatus `json:"next_statuses"`
}

func (a *App) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	who := actor(r)
	order, err := a.Engine.Order(ctx, who, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	next := orders.NextStatuses(order, who)
	if next == nil {
		next = []models.OrderStatus{}
	}
	writeJSON(w, http.StatusOK, orderView{Order: order, NextStatuses: next})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (a *App) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	to, ok := models.ParseOrderStatus(req.Status)
	if !ok {
		writeError(w, r, models.Validation("handlers.UpdateOrderStatus", "unknown status %q", req.Status))
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	order, err := a.Engine.UpdateStatus(ctx, actor(r), mux.Vars(r)["id"], to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
