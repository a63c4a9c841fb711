package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go_trial/cravewave/auth"
	"go_trial/cravewave/catalog"
	"go_trial/cravewave/models"
	"go_trial/cravewave/orders"
	"go_trial/cravewave/recommend"
	"go_trial/cravewave/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) http.Handler {
	t.Helper()
	app := &App{
		Engine:      orders.NewEngine(store.NewMemory()),
		Catalog:     catalog.NewSeeded(),
		Users:       auth.NewDirectory(auth.SeedUsers()),
		Issuer:      auth.NewIssuer("test-secret", time.Minute, time.Hour),
		Recommender: recommend.New(nil, zerolog.Nop()),
		Log:         zerolog.Nop(),
	}
	return app.Router()
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func login(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/token/login/", "", map[string]string{"email": email})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp tokenResponse
	decodeBody(t, rec, &resp)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

type cartBody struct {
	RestaurantID string `json:"restaurant_id"`
	Lines        []struct {
		Item     models.MenuItem `json:"item"`
		Quantity int             `json:"quantity"`
		Subtotal decimal.Decimal `json:"subtotal"`
	} `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

type addBody struct {
	Result string   `json:"result"`
	Cart   cartBody `json:"cart"`
}

func TestOrderFlow(t *testing.T) {
	h := newTestApp(t)
	customer := login(t, h, "user@crave.com")

	for _, id := range []string{"m1", "m2", "m2"} {
		rec := do(t, h, http.MethodPost, "/api/cart/items", customer, map[string]string{"item_id": id})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	var c cartBody
	decodeBody(t, do(t, h, http.MethodGet, "/api/cart", customer, nil), &c)
	assert.Equal(t, "res1", c.RestaurantID)
	require.Len(t, c.Lines, 2)
	assert.Equal(t, 2, c.Lines[1].Quantity)
	assert.True(t, decimal.NewFromInt(32).Equal(c.Lines[1].Subtotal))
	assert.True(t, decimal.NewFromInt(46).Equal(c.Total), c.Total.String())

	rec := do(t, h, http.MethodPost, "/api/orders", customer, map[string]string{"delivery_address": "101 User Ln"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var placed models.Order
	decodeBody(t, rec, &placed)
	assert.Equal(t, models.StatusPlaced, placed.Status)
	assert.Equal(t, "u1", placed.CustomerID)
	assert.Equal(t, "101 User Ln", placed.DeliveryAddress)
	assert.True(t, decimal.NewFromInt(46).Equal(placed.Total))

	decodeBody(t, do(t, h, http.MethodGet, "/api/cart", customer, nil), &c)
	assert.Empty(t, c.Lines, "checkout clears the cart")

	partner := login(t, h, "rest@crave.com")
	var view orderView
	decodeBody(t, do(t, h, http.MethodGet, "/api/orders/"+placed.ID, partner, nil), &view)
	assert.ElementsMatch(t, []models.OrderStatus{models.StatusAccepted, models.StatusCancelled}, view.NextStatuses)

	rec = do(t, h, http.MethodPatch, "/api/orders/"+placed.ID+"/status", partner, map[string]string{"status": "ACCEPTED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	driver := login(t, h, "driver@crave.com")
	rec = do(t, h, http.MethodPatch, "/api/orders/"+placed.ID+"/status", driver, map[string]string{"status": "DELIVERED"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	var errResp errorBody
	decodeBody(t, rec, &errResp)
	assert.Equal(t, models.KindInvalidTransition.String(), errResp.Kind)

	var mine []models.Order
	decodeBody(t, do(t, h, http.MethodGet, "/api/orders", customer, nil), &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, models.StatusAccepted, mine[0].Status)

	var forDriver []models.Order
	decodeBody(t, do(t, h, http.MethodGet, "/api/orders?status=ACCEPTED,PREPARING", driver, nil), &forDriver)
	assert.Len(t, forDriver, 1)
}

func TestAddFromAnotherRestaurantNeedsConfirmation(t *testing.T) {
	h := newTestApp(t)
	customer := login(t, h, "user@crave.com")

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/cart/items", customer, map[string]string{"item_id": "m1"}).Code)

	rec := do(t, h, http.MethodPost, "/api/cart/items", customer, map[string]string{"item_id": "m3"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	var resp addBody
	decodeBody(t, rec, &resp)
	assert.Equal(t, "REQUIRES_CONFIRMATION", resp.Result)
	assert.Equal(t, "res1", resp.Cart.RestaurantID)
	require.Len(t, resp.Cart.Lines, 1)

	rec = do(t, h, http.MethodPost, "/api/cart/items", customer, map[string]any{"item_id": "m3", "confirm": true})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.Equal(t, "ADDED", resp.Result)
	assert.Equal(t, "res2", resp.Cart.RestaurantID)
	require.Len(t, resp.Cart.Lines, 1)
	assert.Equal(t, "m3", resp.Cart.Lines[0].Item.ID)
}

func TestCartEdits(t *testing.T) {
	h := newTestApp(t)
	customer := login(t, h, "user@crave.com")
	do(t, h, http.MethodPost, "/api/cart/items", customer, map[string]string{"item_id": "m1"})
	do(t, h, http.MethodPost, "/api/cart/items", customer, map[string]string{"item_id": "m2"})

	var c cartBody
	decodeBody(t, do(t, h, http.MethodPatch, "/api/cart/items/m1", customer, map[string]int{"delta": 2}), &c)
	assert.True(t, decimal.NewFromInt(58).Equal(c.Total), c.Total.String())

	decodeBody(t, do(t, h, http.MethodPatch, "/api/cart/items/m1", customer, map[string]int{"delta": -5}), &c)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "m2", c.Lines[0].Item.ID)

	decodeBody(t, do(t, h, http.MethodDelete, "/api/cart/items/m2", customer, nil), &c)
	assert.Empty(t, c.Lines)
	assert.Empty(t, c.RestaurantID)
}

func TestRequestRejections(t *testing.T) {
	h := newTestApp(t)
	customer := login(t, h, "user@crave.com")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"no token", http.MethodGet, "/api/cart", "", nil, http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/cart", "not-a-token", nil, http.StatusUnauthorized},
		{"unknown email", http.MethodPost, "/token/login/", "", map[string]string{"email": "nobody@crave.com"}, http.StatusUnauthorized},
		{"empty checkout", http.MethodPost, "/api/orders", customer, map[string]string{}, http.StatusBadRequest},
		{"unknown item", http.MethodPost, "/api/cart/items", customer, map[string]string{"item_id": "nope"}, http.StatusNotFound},
		{"unknown order", http.MethodGet, "/api/orders/nope", customer, nil, http.StatusNotFound},
		{"bad status", http.MethodPatch, "/api/orders/nope/status", customer, map[string]string{"status": "EATEN"}, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/admin/analytics", customer, nil, http.StatusNotFound},
		{"analytics as customer", http.MethodGet, "/api/admin/analytics", customer, nil, http.StatusForbidden},
		{"menu edit as customer", http.MethodPut, "/api/menu-items/m1", customer, map[string]any{"name": "x", "price": 1}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRequireJSON(t *testing.T) {
	h := newTestApp(t)
	customer := login(t, h, "user@crave.com")

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString("delivery_address=x"))
	req.Header.Set("Authorization", "Bearer "+customer)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRefreshToken(t *testing.T) {
	h := newTestApp(t)
	rec := do(t, h, http.MethodPost, "/token/login/", "", map[string]string{"email": "Admin@Crave.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	var first tokenResponse
	decodeBody(t, rec, &first)
	assert.Equal(t, models.RoleAdmin, first.User.Role)

	rec = do(t, h, http.MethodPost, "/token/refresh/", "", map[string]string{"refresh_token": first.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var second tokenResponse
	decodeBody(t, rec, &second)
	assert.Equal(t, "a1", second.User.ID)

	var me models.User
	decodeBody(t, do(t, h, http.MethodGet, "/api/users/me/", second.AccessToken, nil), &me)
	assert.Equal(t, "admin@crave.com", me.Email)

	// an access token is not a refresh token
	rec = do(t, h, http.MethodPost, "/token/refresh/", "", map[string]string{"refresh_token": first.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAnalytics(t *testing.T) {
	h := newTestApp(t)
	customer := login(t, h, "user@crave.com")
	do(t, h, http.MethodPost, "/api/cart/items", customer, map[string]string{"item_id": "m1"})
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/orders", customer, map[string]string{}).Code)

	admin := login(t, h, "admin@crave.com")
	rec := do(t, h, http.MethodGet, "/api/admin/analytics?days=3", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report struct {
		TotalRevenue      decimal.Decimal `json:"total_revenue"`
		TotalOrders       int             `json:"total_orders"`
		ActiveRestaurants int             `json:"active_restaurants"`
		Daily             []any           `json:"daily"`
	}
	decodeBody(t, rec, &report)
	assert.Equal(t, 1, report.TotalOrders)
	assert.True(t, decimal.NewFromInt(14).Equal(report.TotalRevenue))
	assert.Len(t, report.Daily, 3)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/admin/analytics?days=0", admin, nil).Code)
}

func TestMenuEditByOwningPartner(t *testing.T) {
	h := newTestApp(t)
	partner := login(t, h, "rest@crave.com")

	rec := do(t, h, http.MethodPut, "/api/menu-items/m1", partner, map[string]any{
		"name": "Margherita Pizza", "price": "15.50", "category": "Pizza", "available": false,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var menu []models.MenuItem
	decodeBody(t, do(t, h, http.MethodGet, "/api/restaurants/res1/menu", "", nil), &menu)
	require.NotEmpty(t, menu)
	assert.True(t, decimal.RequireFromString("15.50").Equal(menu[0].Price))
	assert.False(t, menu[0].Available)

	// res2's items belong to someone else
	rec = do(t, h, http.MethodPut, "/api/menu-items/m3", partner, map[string]any{"name": "Dragon Roll", "price": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// unavailable items cannot go into a cart
	customer := login(t, h, "user@crave.com")
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/cart/items", customer, map[string]string{"item_id": "m1"}).Code)
}

func TestRecommendWithoutGenerator(t *testing.T) {
	h := newTestApp(t)
	rec := do(t, h, http.MethodPost, "/api/recommendations", "", map[string]string{"query": "something spicy"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, recommend.MsgUnavailable, resp["answer"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.Validation("op", "bad"), http.StatusBadRequest},
		{"not found", models.NotFound("op", "gone"), http.StatusNotFound},
		{"unauthenticated", models.Unauthenticated("op"), http.StatusUnauthorized},
		{"forbidden", models.Unauthorized("op", "no"), http.StatusForbidden},
		{"transition", models.InvalidTransition("op", models.StatusPlaced, models.StatusDelivered), http.StatusConflict},
		{"persistence", models.Persistence("op", errors.New("down")), http.StatusServiceUnavailable},
		{"wrapped", fmt.Errorf("outer: %w", models.NotFound("op", "gone")), http.StatusNotFound},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
