package recents

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soundtouchd/soundtouch-cloud/internal/api"
	"github.com/soundtouchd/soundtouch-cloud/internal/apperrors"
)

// RegisterRoutes wires recents routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodPost, "/v1/accounts/{account_id}/recents", api.Handler(recordPlay(service)))
	router.Method(http.MethodGet, "/v1/accounts/{account_id}/recents", api.Handler(listRecents(service)))
}

func recordPlay(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		accountID := chi.URLParam(r, "account_id")

		var body struct {
			DeviceID        string `json:"device_id"`
			Location        string `json:"location"`
			SourceID        string `json:"source_id"`
			ContentItemType string `json:"content_item_type"`
			Name            string `json:"name"`
			LastPlayedAt    string `json:"last_played_at,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return apperrors.NewValidationError("invalid request body", nil)
		}
		if body.Location == "" || body.SourceID == "" {
			return apperrors.NewValidationError("location and source_id are required", nil)
		}

		input := RecordPlayInput{
			AccountID:       accountID,
			DeviceID:        body.DeviceID,
			Location:        body.Location,
			SourceID:        body.SourceID,
			ContentItemType: body.ContentItemType,
			Name:            body.Name,
		}
		if body.LastPlayedAt != "" {
			playedAt, err := time.Parse(time.RFC3339, body.LastPlayedAt)
			if err != nil {
				return apperrors.NewValidationError("last_played_at must be RFC3339", nil)
			}
			input.LastPlayedAt = &playedAt
		}

		recent, err := service.RecordPlay(input)
		if err != nil {
			return apperrors.NewInternalError("Failed to record play")
		}

		return api.WriteResource(w, http.StatusOK, recent)
	}
}

func listRecents(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		accountID := chi.URLParam(r, "account_id")

		recents, err := service.List(accountID)
		if err != nil {
			return apperrors.NewInternalError("Failed to list recents")
		}

		return api.WriteList(w, "/v1/accounts/"+accountID+"/recents", recents, false)
	}
}
