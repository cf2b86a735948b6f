package registry

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soundtouchd/soundtouch-cloud/internal/api"
)

// RegisterRoutes wires registry routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodGet, "/v1/registry/sources", api.Handler(listSources(service)))
	router.Method(http.MethodGet, "/v1/registry/bmx", api.Handler(listBMXServices(service)))
}

func listSources(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteList(w, "/v1/registry/sources", service.Sources(), false)
	}
}

func listBMXServices(service *Service) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteList(w, "/v1/registry/bmx", service.BMXServices(), false)
	}
}
