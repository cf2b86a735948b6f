package presets

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/soundtouchd/soundtouch-cloud/internal/api"
	"github.com/soundtouchd/soundtouch-cloud/internal/apperrors"
)

// RegisterRoutes wires preset routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodPut, "/v1/accounts/{account_id}/devices/{device_id}/presets/{button}", api.Handler(assignPreset(service)))
	router.Method(http.MethodGet, "/v1/accounts/{account_id}/devices/{device_id}/presets/{button}", api.Handler(getPreset(service)))
	router.Method(http.MethodGet, "/v1/accounts/{account_id}/devices/{device_id}/presets", api.Handler(listPresets(service)))
}

func assignPreset(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		accountID := chi.URLParam(r, "account_id")
		deviceID := chi.URLParam(r, "device_id")

		button, err := strconv.Atoi(chi.URLParam(r, "button"))
		if err != nil || button < 1 {
			return apperrors.NewValidationError("button must be a positive integer", nil)
		}

		var body struct {
			Location        string `json:"location"`
			SourceID        string `json:"source_id"`
			ContentItemType string `json:"content_item_type"`
			ContainerArt    string `json:"container_art"`
			Name            string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return apperrors.NewValidationError("invalid request body", nil)
		}
		if body.Location == "" || body.SourceID == "" {
			return apperrors.NewValidationError("location and source_id are required", nil)
		}

		preset, err := service.Assign(AssignInput{
			AccountID:       accountID,
			DeviceID:        deviceID,
			ButtonNumber:    button,
			Location:        body.Location,
			SourceID:        body.SourceID,
			ContentItemType: body.ContentItemType,
			ContainerArt:    body.ContainerArt,
			Name:            body.Name,
		})
		if err != nil {
			return apperrors.NewInternalError("Failed to assign preset")
		}

		return api.WriteResource(w, http.StatusOK, preset)
	}
}

func getPreset(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		accountID := chi.URLParam(r, "account_id")
		deviceID := chi.URLParam(r, "device_id")

		button, err := strconv.Atoi(chi.URLParam(r, "button"))
		if err != nil {
			return apperrors.NewValidationError("button must be an integer", nil)
		}

		preset, err := service.Get(accountID, deviceID, button)
		if err != nil {
			return apperrors.NewInternalError("Failed to get preset")
		}
		if preset == nil {
			return apperrors.NewAppError(apperrors.ErrorCodePresetNotFound, "Preset not found", 404, map[string]any{
				"device_id": deviceID,
				"button":    button,
			})
		}

		return api.WriteResource(w, http.StatusOK, preset)
	}
}

func listPresets(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		accountID := chi.URLParam(r, "account_id")
		deviceID := chi.URLParam(r, "device_id")

		presets, err := service.List(accountID, deviceID)
		if err != nil {
			return apperrors.NewInternalError("Failed to list presets")
		}

		return api.WriteList(w, "/v1/accounts/"+accountID+"/devices/"+deviceID+"/presets", presets, false)
	}
}
