package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/companeros-en-ruta/api/internal/auth"
	"github.com/companeros-en-ruta/api/pkg/respond"
	"github.com/rs/zerolog/log"
)

// SessionRevoker is implemented by *cache.SessionRevoker
type SessionRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type AuthHandler struct {
	revoker       SessionRevoker
	sessionCookie string
}

func NewAuthHandler(revoker SessionRevoker, sessionCookie string) *AuthHandler {
	return &AuthHandler{
		revoker:       revoker,
		sessionCookie: sessionCookie,
	}
}

// Me returns the authorization context resolved for the route's role
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	respond.JSON(w, http.StatusOK, ac)
}

// Logout revokes the current session token until it expires
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.SessionFromContext(r.Context())
	if !ok || claims.ID == "" || claims.ExpiresAt == nil {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.revoker.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		log.Error().Err(err).Msg("Failed to revoke session")
		respond.Error(w, http.StatusServiceUnavailable, "Failed to sign out")
		return
	}

	if h.sessionCookie != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     h.sessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	log.Info().Str("user_id", claims.Subject).Msg("Session revoked")
	w.WriteHeader(http.StatusNoContent)
}
