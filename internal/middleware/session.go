package middleware

import (
	"context"
	"net/http"

	"github.com/dreveal/backoffice/internal/config"
	"github.com/dreveal/backoffice/internal/service"
	"github.com/dreveal/backoffice/internal/session"
)

const SessionCookie = "admin-session"

type contextKey string

const SessionContextKey contextKey = "adminSession"

// GetSession returns the authenticated session placed on the request
// context by the gate, or nil outside a gated route.
func GetSession(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(SessionContextKey).(*session.Session); ok {
		return sess
	}
	return nil
}

// SessionGate guards the admin surface. Every failure mode reads the same
// to the client: a 401 with no detail about whether the cookie was absent,
// expired, or forged.
type SessionGate struct {
	auth   *service.AuthService
	secure bool
}

func NewSessionGate(auth *service.AuthService, secure bool) *SessionGate {
	return &SessionGate{auth: auth, secure: secure}
}

func (g *SessionGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			g.reject(w)
			return
		}

		sess, refreshed, err := g.auth.Validate(cookie.Value)
		if err != nil {
			g.reject(w)
			return
		}

		// sliding expiry: every authenticated request re-issues the cookie
		SetSessionCookie(w, refreshed, g.secure)

		ctx := context.WithValue(r.Context(), SessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *SessionGate) reject(w http.ResponseWriter) {
	ClearSessionCookie(w)
	writeJSON(w, http.StatusUnauthorized, map[string]string{
		"error": "Unauthorized",
	})
}

func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(config.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
