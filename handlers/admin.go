package handlers

import (
	"net/http"
	"strconv"

	"go_trial/cravewave/analytics"
	"go_trial/cravewave/catalog"
	"go_trial/cravewave/models"
)

// maxAnalyticsDays bounds the ?days= window.
const maxAnalyticsDays = 90

// Analytics reports revenue and order counts over the last ?days= days.
func (a *App) Analytics(w http.ResponseWriter, r *http.Request) {
	days := analytics.DefaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAnalyticsDays {
			writeError(w, r, models.Validation("handlers.Analytics", "days must be between 1 and %d", maxAnalyticsDays))
			return
		}
		days = n
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	all, err := a.Engine.AllOrders(ctx, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rs, err := a.Catalog.ListRestaurants(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Summarize(all, catalog.ActiveRestaurants(rs), a.Now(), days))
}
