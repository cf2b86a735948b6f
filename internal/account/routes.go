package account

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soundtouchd/soundtouch-cloud/internal/api"
	"github.com/soundtouchd/soundtouch-cloud/internal/apperrors"
)

// RegisterRoutes wires the full-account route to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodGet, "/v1/accounts/{account_id}", api.Handler(getAccount(service)))
}

func getAccount(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		accountID := chi.URLParam(r, "account_id")

		doc, err := service.Reconcile(r.Context(), accountID, r)
		if err != nil {
			var decodeErr *DecodeError
			if errors.As(err, &decodeErr) {
				return apperrors.NewDecodeFailureError("Account document could not be decoded")
			}
			var upstreamErr *UpstreamError
			if errors.As(err, &upstreamErr) {
				return apperrors.NewUpstreamFailureError("Account fetch from upstream failed")
			}
			return apperrors.NewInternalError("Failed to reconcile account")
		}

		return api.WriteXML(w, http.StatusOK, doc)
	}
}
