package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dataranlabs/storefront-backend/api/responses"
	"github.com/dataranlabs/storefront-backend/api/validators"
	"github.com/dataranlabs/storefront-backend/internal/catalog"
	pkgerrors "github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
)

const cacheHeader = "X-Cache"

func cacheStatus(fromCache bool) string {
	if fromCache {
		return "HIT"
	}
	return "MISS"
}

// ListProducts serves the catalog with optional vendor, collection and
// limit filters.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 250)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		opts := catalog.ListOptions{
			Vendor:     strings.TrimSpace(r.URL.Query().Get("vendor")),
			Collection: strings.TrimSpace(r.URL.Query().Get("collection")),
			Limit:      limit,
		}

		products, fromCache, err := svc.List(r.Context(), opts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set(cacheHeader, cacheStatus(fromCache))
		responses.WriteSuccess(w, map[string]any{
			"products": products,
			"count":    len(products),
		})
	}
}

// GetProduct serves a single product by its handle.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		handle := chi.URLParam(r, "handle")
		product, fromCache, err := svc.Detail(r.Context(), handle)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set(cacheHeader, cacheStatus(fromCache))
		responses.WriteSuccess(w, product)
	}
}
