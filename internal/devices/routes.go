package devices

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soundtouchd/soundtouch-cloud/internal/api"
	"github.com/soundtouchd/soundtouch-cloud/internal/apperrors"
)

// RegisterRoutes wires device registry routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodPost, "/v1/devices/{device_id}/contact", api.Handler(recordContact(service)))
	router.Method(http.MethodPost, "/v1/devices/{device_id}/pair", api.Handler(pairDevice(service)))
	router.Method(http.MethodPost, "/v1/devices/{device_id}/unpair", api.Handler(unpairDevice(service)))
	router.Method(http.MethodGet, "/v1/devices/{device_id}", api.Handler(getDevice(service)))
	router.Method(http.MethodGet, "/v1/accounts/{account_id}/devices", api.Handler(listDevices(service)))
}

func recordContact(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		deviceID := chi.URLParam(r, "device_id")

		var body struct {
			IPAddress string `json:"ip_address"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return apperrors.NewValidationError("invalid request body", nil)
		}

		device, err := service.RecordContact(ContactInput{DeviceID: deviceID, IPAddress: body.IPAddress})
		if err != nil {
			return apperrors.NewInternalError("Failed to record device contact")
		}

		return api.WriteResource(w, http.StatusOK, device)
	}
}

func pairDevice(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		deviceID := chi.URLParam(r, "device_id")

		var body struct {
			AccountID   string `json:"account_id"`
			DisplayName string `json:"display_name"`
			IPAddress   string `json:"ip_address"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return apperrors.NewValidationError("invalid request body", nil)
		}
		if body.AccountID == "" {
			return apperrors.NewValidationError("account_id is required", nil)
		}

		device, err := service.Pair(PairInput{
			DeviceID:    deviceID,
			AccountID:   body.AccountID,
			DisplayName: body.DisplayName,
			IPAddress:   body.IPAddress,
		})
		if err != nil {
			return apperrors.NewInternalError("Failed to pair device")
		}

		return api.WriteResource(w, http.StatusOK, device)
	}
}

func unpairDevice(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		deviceID := chi.URLParam(r, "device_id")

		device, err := service.Unpair(deviceID)
		if err != nil {
			return apperrors.NewInternalError("Failed to unpair device")
		}
		if device == nil {
			return apperrors.NewAppError(apperrors.ErrorCodeDeviceNotFound, "Device not found", 404, map[string]any{"device_id": deviceID})
		}

		return api.WriteResource(w, http.StatusOK, device)
	}
}

func getDevice(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		deviceID := chi.URLParam(r, "device_id")

		device, err := service.Get(deviceID)
		if err != nil {
			return apperrors.NewInternalError("Failed to get device")
		}
		if device == nil {
			return apperrors.NewAppError(apperrors.ErrorCodeDeviceNotFound, "Device not found", 404, map[string]any{"device_id": deviceID})
		}

		return api.WriteResource(w, http.StatusOK, device)
	}
}

func listDevices(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		accountID := chi.URLParam(r, "account_id")

		devices, err := service.ListByAccount(accountID)
		if err != nil {
			return apperrors.NewInternalError("Failed to list devices")
		}

		return api.WriteList(w, "/v1/accounts/"+accountID+"/devices", devices, false)
	}
}
