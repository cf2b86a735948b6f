package server

import (
	"context"
	"log"
	"net/http"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/soundtouchd/soundtouch-cloud/internal/account"
	"github.com/soundtouchd/soundtouch-cloud/internal/api"
	"github.com/soundtouchd/soundtouch-cloud/internal/config"
	"github.com/soundtouchd/soundtouch-cloud/internal/db"
	"github.com/soundtouchd/soundtouch-cloud/internal/devices"
	"github.com/soundtouchd/soundtouch-cloud/internal/events"
	"github.com/soundtouchd/soundtouch-cloud/internal/gateway"
	"github.com/soundtouchd/soundtouch-cloud/internal/pairing"
	"github.com/soundtouchd/soundtouch-cloud/internal/presets"
	"github.com/soundtouchd/soundtouch-cloud/internal/provider"
	"github.com/soundtouchd/soundtouch-cloud/internal/recents"
	"github.com/soundtouchd/soundtouch-cloud/internal/registry"
	"github.com/soundtouchd/soundtouch-cloud/internal/system"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLoggerMiddleware logs all incoming HTTP requests
func requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, wrapped.status, time.Since(start).Round(time.Millisecond))
	})
}

// NewHandler builds the HTTP handler and returns a shutdown function.
func NewHandler(cfg config.Config) (http.Handler, func(context.Context) error, error) {
	log.Printf("Using database: %s", cfg.SQLiteDBPath)
	dbPair, err := db.Init(cfg.SQLiteDBPath)
	if err != nil {
		return nil, nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.StripSlashes) // Firmware is inconsistent about trailing slashes
	if cfg.RequestLogging {
		router.Use(requestLoggerMiddleware)
	}
	router.Use(api.RequestIDMiddleware)
	router.Use(api.RecovererMiddleware)

	registerHealthRoutes(router)

	// Event buffer and live feed. Everything below reports into the buffer.
	eventBuffer := events.NewBuffer(cfg.EventBufferCap, time.Duration(cfg.EventIdleTimeoutSec)*time.Second, nil)
	eventFeed := events.NewFeed(nil)
	eventBuffer.SetBroadcaster(eventFeed)
	if err := eventBuffer.StartPruning(cfg.EventPruneSchedule); err != nil {
		dbPair.Close()
		return nil, nil, err
	}
	events.RegisterRoutes(router, eventBuffer, eventFeed)

	deviceService := devices.NewService(cfg, dbPair, nil, eventBuffer)
	devices.RegisterRoutes(router, deviceService)

	presetService := presets.NewService(dbPair, nil, eventBuffer)
	presets.RegisterRoutes(router, presetService)

	recentsService := recents.NewService(dbPair, nil, eventBuffer)
	recents.RegisterRoutes(router, recentsService)

	pairingService := pairing.NewService(dbPair, nil, eventBuffer)
	pairing.RegisterRoutes(router, pairingService)

	// Account reconciler fetches through the legacy upstream on cache misses.
	forwarder := gateway.NewClient(cfg.UpstreamBaseURL, time.Duration(cfg.UpstreamTimeoutMs)*time.Millisecond)
	accountService := account.NewService(cfg, dbPair, nil, presetService, forwarder)
	account.RegisterRoutes(router, accountService)

	// Static registry (source enum + BMX catalog)
	registryService, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		log.Printf("Registry unavailable, routes disabled: %v", err)
	} else {
		registry.RegisterRoutes(router, registryService)
	}

	// Music provider gateway (only if configured)
	if cfg.ProviderTokenURL != "" && cfg.ProviderClientID != "" {
		var tokens *provider.TokenManager
		if cfg.ProviderTeamID != "" && cfg.ProviderKeyID != "" && cfg.ProviderPrivateKeyPath != "" {
			tokens, err = provider.NewTokenManager(provider.TokenManagerConfig{
				TeamID:         cfg.ProviderTeamID,
				KeyID:          cfg.ProviderKeyID,
				PrivateKeyPath: cfg.ProviderPrivateKeyPath,
				Expiry:         time.Duration(cfg.ProviderTokenExpirySec) * time.Second,
			})
			if err != nil {
				log.Printf("Provider token manager unavailable, catalog lookups disabled: %v", err)
			}
		}
		providerClient := provider.NewClient(
			cfg.ProviderTokenURL,
			cfg.ProviderCatalogURL,
			cfg.ProviderClientID,
			cfg.ProviderClientSecret,
			time.Duration(cfg.ProviderTimeoutMs)*time.Millisecond,
			tokens,
		)
		providerService := provider.NewService(providerClient, accountService.Credentials(), nil)
		provider.RegisterRoutes(router, providerService)
	}

	systemService := system.NewService(dbPair, nil, deviceService, accountService.Snapshots(), eventFeed)
	system.RegisterRoutes(router, systemService)

	// Serve static files
	router.Handle("/v1/assets/*", http.StripPrefix("/v1/assets/", http.FileServer(http.Dir("./assets"))))

	shutdown := func(ctx context.Context) error {
		eventBuffer.StopPruning()
		eventFeed.Close()
		if ctx == nil {
			ctx = context.Background()
		}
		return dbPair.Close()
	}

	return router, shutdown, nil
}

func registerHealthRoutes(router chi.Router) {
	router.Method(http.MethodGet, "/v1/health", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		response := map[string]any{
			"status":    "healthy",
			"service":   "soundtouch-cloud",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		return api.WriteJSON(w, http.StatusOK, response)
	}))
	router.Method(http.MethodGet, "/v1/health/live", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}))
	router.Method(http.MethodGet, "/v1/health/ready", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	}))
}
