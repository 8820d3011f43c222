package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/dataranlabs/storefront-backend/api/responses"
	"github.com/dataranlabs/storefront-backend/api/validators"
	digestsvc "github.com/dataranlabs/storefront-backend/internal/digest"
	pkgerrors "github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
)

type digestRequest struct {
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// AnalyzeThread digests a pasted thread payload into keywords, links,
// sentiment and engagement metrics.
func AnalyzeThread(svc digestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "digest service unavailable"))
			return
		}

		var payload digestRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		analysis, err := svc.Analyze(payload.Payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, analysis)
	}
}
