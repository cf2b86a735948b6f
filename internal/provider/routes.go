package provider

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soundtouchd/soundtouch-cloud/internal/api"
	"github.com/soundtouchd/soundtouch-cloud/internal/apperrors"
)

// RegisterRoutes wires provider credential routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodPost, "/v1/credentials/{external_user_id}/refresh", api.Handler(refreshCredential(service)))
	router.Method(http.MethodGet, "/v1/credentials/{external_user_id}", api.Handler(listCredentials(service)))
	router.Method(http.MethodGet, "/v1/catalog/entity", api.Handler(lookupEntity(service)))
}

func refreshCredential(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		externalUserID := chi.URLParam(r, "external_user_id")

		var body struct {
			DisplayName string `json:"display_name"`
		}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				return apperrors.NewValidationError("invalid request body", nil)
			}
		}

		record, err := service.RefreshCredential(externalUserID, body.DisplayName)
		if err != nil {
			return mapProviderError(err)
		}

		return api.WriteResource(w, http.StatusOK, record)
	}
}

func listCredentials(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		externalUserID := chi.URLParam(r, "external_user_id")

		records, err := service.ListCredentials(externalUserID)
		if err != nil {
			return apperrors.NewInternalError("Failed to list credentials")
		}

		return api.WriteList(w, "/v1/credentials/"+externalUserID, records, false)
	}
}

func lookupEntity(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		uri := r.URL.Query().Get("uri")
		if uri == "" {
			return apperrors.NewValidationError("uri query parameter is required", nil)
		}

		entity, err := service.LookupEntity(uri)
		if err != nil {
			return mapProviderError(err)
		}

		return api.WriteResource(w, http.StatusOK, entity)
	}
}

func mapProviderError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apperrors.NewAppError(apperrors.ErrorCodeProviderAPIError, apiErr.Reason, http.StatusBadGateway, map[string]any{
			"provider_error_code": apiErr.ErrorCode,
			"provider_status":     apiErr.HTTPStatus,
		})
	}
	return apperrors.NewInternalError("Provider request failed")
}
