package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go_trial/cravewave/models"

	"github.com/rs/zerolog"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch models.KindOf(err) {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindAuthorization:
		if errors.Is(err, models.ErrUnauthenticated) {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case models.KindInvalidTransition:
		return http.StatusConflict
	case models.KindPersistence:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	kind := models.KindOf(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}

	body := errorBody{Error: err.Error()}
	if kind != 0 {
		body.Kind = kind.String()
	}
	// internals of storage failures stay in the log
	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		body.Error = http.StatusText(status)
	}
	writeJSON(w, status, body)
}
