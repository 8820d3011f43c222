package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dataranlabs/storefront-backend/api/responses"
	"github.com/dataranlabs/storefront-backend/api/validators"
	eventsvc "github.com/dataranlabs/storefront-backend/internal/events"
	pkgerrors "github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
)

// ListEvents serves the event listing with optional status, limit and
// offset parameters. Statuses are supplied comma-separated.
func ListEvents(svc eventsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var statuses []string
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			for _, status := range strings.Split(raw, ",") {
				if status = strings.TrimSpace(status); status != "" {
					statuses = append(statuses, strings.ToUpper(status))
				}
			}
		}

		page, fromCache, err := svc.List(r.Context(), eventsvc.ListOptions{
			Limit:    limit,
			Offset:   offset,
			Statuses: statuses,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set(cacheHeader, cacheStatus(fromCache))
		responses.WriteSuccess(w, page)
	}
}

// GetEvent serves one event by id.
func GetEvent(svc eventsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		eventID := chi.URLParam(r, "eventId")
		view, fromCache, err := svc.Detail(r.Context(), eventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set(cacheHeader, cacheStatus(fromCache))
		responses.WriteSuccess(w, view)
	}
}
