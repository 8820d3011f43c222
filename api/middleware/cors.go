package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/dataranlabs/storefront-backend/pkg/config"
)

// CORS returns middleware that applies the configured allowed-origin
// policy. Credentials stay allowed so the session cookie travels with
// browser requests.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Cache", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
