package controllers

import (
	"context"
	"net/http"

	"github.com/dataranlabs/storefront-backend/api/responses"
	"github.com/dataranlabs/storefront-backend/pkg/config"
)

// ReadinessProbe reports whether an optional dependency is reachable.
type ReadinessProbe interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready once the process can serve traffic. The
// probe is optional: without Redis the service still runs on in-memory
// sessions.
func HealthReady(cfg *config.Config, probe ReadinessProbe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		status := map[string]string{"status": "ready"}
		if probe != nil {
			if err := probe.Ping(r.Context()); err != nil {
				status["redis"] = "unreachable"
			} else {
				status["redis"] = "ok"
			}
		}
		responses.WriteSuccess(w, status)
	}
}
