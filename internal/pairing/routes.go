package pairing

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soundtouchd/soundtouch-cloud/internal/api"
	"github.com/soundtouchd/soundtouch-cloud/internal/apperrors"
)

// RegisterRoutes wires stereo-pair routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodPost, "/v1/accounts/{account_id}/groups", api.Handler(createGroup(service)))
	router.Method(http.MethodGet, "/v1/accounts/{account_id}/groups", api.Handler(listGroups(service)))
	router.Method(http.MethodGet, "/v1/accounts/{account_id}/groups/{group_id}", api.Handler(getGroup(service)))
	router.Method(http.MethodPut, "/v1/accounts/{account_id}/groups/{group_id}", api.Handler(updateGroup(service)))
	router.Method(http.MethodDelete, "/v1/accounts/{account_id}/groups/{group_id}", api.Handler(deleteGroup(service)))
	router.Method(http.MethodGet, "/v1/accounts/{account_id}/devices/{device_id}/group", api.Handler(lookupByDevice(service)))
}

func mapGroupError(err error) error {
	var invalidRole *InvalidRoleError
	if errors.As(err, &invalidRole) {
		return apperrors.NewInvalidRoleError(invalidRole.DeviceID)
	}
	var busy *DeviceBusyError
	if errors.As(err, &busy) {
		return apperrors.NewDeviceBusyError(busy.DeviceID)
	}
	var notFound *GroupNotFoundError
	if errors.As(err, &notFound) {
		return apperrors.NewAppError(apperrors.ErrorCodeGroupNotFound, "Group not found", 404, map[string]any{"group_id": notFound.GroupID})
	}
	return nil
}

func createGroup(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		accountID := chi.URLParam(r, "account_id")

		var body struct {
			MasterDeviceID string `json:"master_device_id"`
			LeftDeviceID   string `json:"left_device_id"`
			RightDeviceID  string `json:"right_device_id"`
			Name           string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return apperrors.NewValidationError("invalid request body", nil)
		}
		if body.LeftDeviceID == "" || body.RightDeviceID == "" || body.MasterDeviceID == "" {
			return apperrors.NewValidationError("master_device_id, left_device_id and right_device_id are required", nil)
		}

		group, err := service.CreateGroup(CreateGroupInput{
			AccountID:      accountID,
			MasterDeviceID: body.MasterDeviceID,
			LeftDeviceID:   body.LeftDeviceID,
			RightDeviceID:  body.RightDeviceID,
			Name:           body.Name,
		})
		if err != nil {
			if mapped := mapGroupError(err); mapped != nil {
				return mapped
			}
			return apperrors.NewInternalError("Failed to create group")
		}

		return api.WriteResource(w, http.StatusCreated, group)
	}
}

func updateGroup(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		accountID := chi.URLParam(r, "account_id")
		groupID := chi.URLParam(r, "group_id")

		var body struct {
			MasterDeviceID *string `json:"master_device_id"`
			Name           *string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return apperrors.NewValidationError("invalid request body", nil)
		}

		group, err := service.UpdateGroup(accountID, groupID, UpdateGroupInput{
			MasterDeviceID: body.MasterDeviceID,
			Name:           body.Name,
		})
		if err != nil {
			if mapped := mapGroupError(err); mapped != nil {
				return mapped
			}
			return apperrors.NewInternalError("Failed to update group")
		}

		return api.WriteResource(w, http.StatusOK, group)
	}
}

func deleteGroup(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		accountID := chi.URLParam(r, "account_id")
		groupID := chi.URLParam(r, "group_id")

		if err := service.DeleteGroup(accountID, groupID); err != nil {
			if mapped := mapGroupError(err); mapped != nil {
				return mapped
			}
			return apperrors.NewInternalError("Failed to delete group")
		}

		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}

func getGroup(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		accountID := chi.URLParam(r, "account_id")
		groupID := chi.URLParam(r, "group_id")

		group, err := service.GetGroup(accountID, groupID)
		if err != nil {
			return apperrors.NewInternalError("Failed to get group")
		}
		if group == nil {
			return apperrors.NewAppError(apperrors.ErrorCodeGroupNotFound, "Group not found", 404, map[string]any{"group_id": groupID})
		}

		return api.WriteResource(w, http.StatusOK, group)
	}
}

func listGroups(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		accountID := chi.URLParam(r, "account_id")

		groups, err := service.ListGroups(accountID)
		if err != nil {
			return apperrors.NewInternalError("Failed to list groups")
		}

		return api.WriteList(w, "/v1/accounts/"+accountID+"/groups", groups, false)
	}
}

func lookupByDevice(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		accountID := chi.URLParam(r, "account_id")
		deviceID := chi.URLParam(r, "device_id")

		group, err := service.LookupByDevice(accountID, deviceID)
		if err != nil {
			return apperrors.NewInternalError("Failed to look up group")
		}
		if group == nil {
			return apperrors.NewAppError(apperrors.ErrorCodeGroupNotFound, "Device is not grouped", 404, map[string]any{"device_id": deviceID})
		}

		return api.WriteResource(w, http.StatusOK, group)
	}
}
