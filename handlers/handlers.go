// Package handlers exposes the ordering core over HTTP. Handlers stay thin:
// they resolve the actor, call the cart or the order engine, and map typed
// errors to status codes.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go_trial/cravewave/auth"
	"go_trial/cravewave/catalog"
	"go_trial/cravewave/middleware"
	"go_trial/cravewave/middleware/logkafka"
	"go_trial/cravewave/models"
	"go_trial/cravewave/orders"
	"go_trial/cravewave/recommend"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// requestTimeout bounds every store round trip made on behalf of a request.
const requestTimeout = 5 * time.Second

type App struct {
	Engine      *orders.Engine
	Catalog     catalog.Catalog
	Users       auth.Users
	Issuer      *auth.Issuer
	Recommender *recommend.Recommender
	Carts       *Carts
	Limiter     *middleware.RateLimiter
	Log         zerolog.Logger
	Now         func() time.Time
}

// Router builds the route table.
func (a *App) Router() *mux.Router {
	if a.Carts == nil {
		a.Carts = NewCarts()
	}
	if a.Now == nil {
		a.Now = time.Now
	}

	mainRouter := mux.NewRouter()
	mainRouter.Use(middleware.Authenticate(a.Issuer))
	mainRouter.Use(logkafka.LoggingMiddleware(a.Log))
	mainRouter.Use(instrument)
	if a.Limiter != nil {
		mainRouter.Use(a.Limiter.Middleware)
	}
	mainRouter.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "route not found")
	})

	mainRouter.HandleFunc("/healthz", a.Health).Methods(http.MethodGet)

	tokenRouter := mainRouter.PathPrefix("/token").Subrouter()
	tokenRouter.Use(middleware.RequireJSONBody)
	tokenRouter.HandleFunc("/login/", a.LoginTokenHandler).Methods(http.MethodPost)
	tokenRouter.HandleFunc("/refresh/", a.RefreshTokenHandler).Methods(http.MethodPost)

	// public reads
	publicRouter := mainRouter.PathPrefix("/api").Subrouter()
	publicRouter.Use(middleware.RequireJSONBody)
	publicRouter.HandleFunc("/restaurants", a.ListRestaurants).Methods(http.MethodGet)
	publicRouter.HandleFunc("/restaurants/{id}/menu", a.ListMenu).Methods(http.MethodGet)
	publicRouter.HandleFunc("/recommendations", a.Recommend).Methods(http.MethodPost)

	userRouter := mainRouter.PathPrefix("/api").Subrouter()
	userRouter.Use(middleware.RequireActor, middleware.RequireJSONBody)
	userRouter.HandleFunc("/users/me/", a.GetCurrentUserHandler).Methods(http.MethodGet)
	userRouter.HandleFunc("/menu-items/{id}", a.UpdateMenuItem).Methods(http.MethodPut)

	userRouter.HandleFunc("/cart", a.GetCart).Methods(http.MethodGet)
	userRouter.HandleFunc("/cart", a.ClearCart).Methods(http.MethodDelete)
	userRouter.HandleFunc("/cart/items", a.AddCartItem).Methods(http.MethodPost)
	userRouter.HandleFunc("/cart/items/{id}", a.ChangeCartItem).Methods(http.MethodPatch)
	userRouter.HandleFunc("/cart/items/{id}", a.RemoveCartItem).Methods(http.MethodDelete)

	userRouter.HandleFunc("/orders", a.PlaceOrder).Methods(http.MethodPost)
	userRouter.HandleFunc("/orders", a.ListOrders).Methods(http.MethodGet)
	userRouter.HandleFunc("/orders/{id}", a.GetOrder).Methods(http.MethodGet)
	userRouter.HandleFunc("/orders/{id}/status", a.UpdateOrderStatus).Methods(http.MethodPatch)

	userRouter.HandleFunc("/admin/analytics", a.Analytics).Methods(http.MethodGet)

	return mainRouter
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// actor is only called behind RequireActor.
func actor(r *http.Request) models.Actor {
	a, _ := middleware.ActorFrom(r.Context())
	return a
}

func withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.Validation("handlers.decode", "invalid request payload: %v", err)
	}
	return nil
}
