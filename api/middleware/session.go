package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dataranlabs/storefront-backend/pkg/config"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
)

type sessionCtxKey struct{}

// Session assigns every caller a session id cookie so carts can be
// scoped per visitor. An existing cookie is reused; a missing or
// malformed one is replaced.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				if _, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
					sessionID = cookie.Value
				}
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(cfg.IdleTTL.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			ctx = context.WithValue(ctx, sessionCtxKey{}, sessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the session id assigned by the Session middleware,
// empty when the middleware did not run.
func SessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionCtxKey{}).(string); ok {
		return id
	}
	return ""
}
