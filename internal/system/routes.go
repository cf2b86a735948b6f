package system

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soundtouchd/soundtouch-cloud/internal/api"
	"github.com/soundtouchd/soundtouch-cloud/internal/apperrors"
)

// RegisterRoutes wires system routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodGet, "/v1/status", api.Handler(getStatus(service)))
}

func getStatus(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		status, err := service.GetStatus()
		if err != nil {
			return apperrors.NewInternalError("Failed to get system status")
		}

		return api.WriteResource(w, http.StatusOK, status)
	}
}
