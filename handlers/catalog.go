package handlers

import (
	"net/http"
	"strings"

	"go_trial/cravewave/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func (a *App) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	rs, err := a.Catalog.ListRestaurants(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (a *App) ListMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	items, err := a.Catalog.ListMenu(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type menuItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Available   bool            `json:"available"`
}

// UpdateMenuItem lets an admin, or the partner of the restaurant the item
// belongs to, replace a menu item.
func (a *App) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.UpdateMenuItem"
	var req menuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	existing, err := a.Catalog.MenuItem(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	who := actor(r)
	switch who.Role {
	case models.RoleAdmin:
	case models.RoleRestaurantPartner:
		if who.RestaurantID == "" || who.RestaurantID != existing.RestaurantID {
			writeError(w, r, models.Unauthorized(op, "menu item %s belongs to another restaurant", existing.ID))
			return
		}
	default:
		writeError(w, r, models.Unauthorized(op, "only restaurant partners edit menus"))
		return
	}

	item := models.MenuItem{
		ID:           existing.ID,
		RestaurantID: existing.RestaurantID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Price:        req.Price,
		Image:        req.Image,
		Category:     req.Category,
		Available:    req.Available,
	}
	if err := a.Catalog.UpdateMenuItem(ctx, item); err != nil {
		writeError(w, r, err)
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("item_id", item.ID).Bool("available", item.Available).Msg("menu item updated")
	writeJSON(w, http.StatusOK, item)
}

type recommendRequest struct {
	Query        string `json:"query"`
	RestaurantID string `json:"restaurant_id"`
}

// Recommend answers a free-text craving from one restaurant's menu, or from
// every menu when no restaurant is given. It degrades to a fixed message
// instead of failing.
func (a *App) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeMessage(w, http.StatusBadRequest, "query is required")
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	var ids []string
	if req.RestaurantID != "" {
		ids = []string{req.RestaurantID}
	} else {
		rs, err := a.Catalog.ListRestaurants(ctx)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for _, rest := range rs {
			ids = append(ids, rest.ID)
		}
	}

	var menu []models.MenuItem
	for _, id := range ids {
		items, err := a.Catalog.ListMenu(ctx, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		menu = append(menu, items...)
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": a.Recommender.Recommend(r.Context(), req.Query, menu)})
}
