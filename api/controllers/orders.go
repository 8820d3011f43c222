package controllers

import (
	"net/http"

	"github.com/dataranlabs/storefront-backend/api/responses"
	"github.com/dataranlabs/storefront-backend/api/validators"
	ordersvc "github.com/dataranlabs/storefront-backend/internal/orders"
	"github.com/dataranlabs/storefront-backend/pkg/commerce"
	pkgerrors "github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
)

type orderLookupRequest struct {
	Value      string `json:"value" validate:"required"`
	SearchType string `json:"searchType" validate:"required,oneof=email order"`
}

// LookupOrders finds a customer's orders by email or order number.
func LookupOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload orderLookupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.Lookup(r.Context(), payload.Value, commerce.OrderSearchType(payload.SearchType))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"orders": views,
			"count":  len(views),
		})
	}
}
