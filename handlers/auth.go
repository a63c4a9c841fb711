package handlers

import (
	"net/http"
	"strings"

	"go_trial/cravewave/models"

	"github.com/rs/zerolog"
)

type loginRequest struct {
	Email string `json:"email"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

// LoginTokenHandler signs a user in by email and returns a token pair.
func (a *App) LoginTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		loginRequests.WithLabelValues("error").Inc()
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()

	user, err := a.Users.Login(ctx, req.Email)
	if err != nil {
		loginRequests.WithLabelValues("error").Inc()
		if models.KindOf(err) == models.KindNotFound {
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeError(w, r, err)
		return
	}

	tokens, err := a.Issuer.Issue(models.ActorFor(user))
	if err != nil {
		loginRequests.WithLabelValues("error").Inc()
		writeError(w, r, err)
		return
	}
	loginRequests.WithLabelValues("success").Inc()
	zerolog.Ctx(r.Context()).Info().Str("user_id", user.ID).Stringer("role", user.Role).Msg("user logged in")
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken, User: user})
}

// RefreshTokenHandler trades a refresh token for a new pair.
func (a *App) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		writeMessage(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	tokens, actor, err := a.Issuer.Refresh(req.RefreshToken)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	// the account may have gone since the token was issued
	user, err := a.Users.User(ctx, actor.UserID)
	if err != nil {
		if models.KindOf(err) == models.KindNotFound {
			writeMessage(w, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken, User: user})
}

func (a *App) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()
	user, err := a.Users.User(ctx, actor(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
