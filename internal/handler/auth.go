package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dreveal/backoffice/internal/middleware"
	"github.com/dreveal/backoffice/internal/service"
)

type AuthHandler struct {
	auth         *service.AuthService
	isProduction bool
}

func NewAuthHandler(auth *service.AuthService, isProduction bool) *AuthHandler {
	return &AuthHandler{auth: auth, isProduction: isProduction}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	token, expiresAt, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		log.Error().Err(err).Msg("login error")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Login failed"})
		return
	}

	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}

	middleware.SetSessionCookie(w, token, h.isProduction)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"expiresAt": expiresAt.UnixMilli(),
	})
}

// Check reports the authenticated session. The gate in front of this
// handler already refreshed the cookie.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"username":      sess.Username,
		"expiresAt":     sess.ExpiresAt.UnixMilli(),
	})
}

// Logout clears the cookie. Tokens are stateless so there is nothing to
// revoke server-side; an unauthenticated logout succeeds too.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) RotationStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.auth.RotationInfo())
}

func (h *AuthHandler) RotateSecret(w http.ResponseWriter, r *http.Request) {
	h.auth.RotateSecret()
	log.Info().Msg("session secret rotated on request")
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"rotation": h.auth.RotationInfo(),
	})
}
