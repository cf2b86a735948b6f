package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the base server configuration.
type Config struct {
	Host           string
	Port           string
	SQLiteDBPath   string
	RequestLogging bool

	// Upstream legacy account system (Margo) settings. The reconciler
	// forwards cache-miss account fetches here.
	UpstreamBaseURL   string
	UpstreamTimeoutMs int

	// Music provider settings. ProviderSource is the source identifier that
	// marks a credential-bearing source as belonging to the external music
	// provider during the snapshot patch step.
	ProviderSource         string
	ProviderTokenURL       string
	ProviderCatalogURL     string
	ProviderClientID       string
	ProviderClientSecret   string
	ProviderTeamID         string
	ProviderKeyID          string
	ProviderPrivateKeyPath string
	ProviderTokenExpirySec int
	ProviderTimeoutMs      int

	// Service registry payloads (BMX catalog, source providers) are fixed
	// configuration loaded once from this file.
	RegistryPath string

	// Device event buffer settings.
	EventBufferCap      int
	EventPruneSchedule  string
	EventIdleTimeoutSec int
}

// Load reads configuration from environment variables with defaults.
func Load() (Config, error) {
	return Config{
		Host:           envString("HOST", "0.0.0.0"),
		Port:           envString("PORT", "9005"),
		SQLiteDBPath:   envString("SQLITE_DB_PATH", "./data/soundtouch-cloud.db"),
		RequestLogging: envBool("REQUEST_LOGGING", true),

		UpstreamBaseURL:   envString("UPSTREAM_BASE_URL", "https://streaming.bose.com"),
		UpstreamTimeoutMs: envInt("UPSTREAM_TIMEOUT_MS", 10000),

		ProviderSource:         envString("PROVIDER_SOURCE", "PANDORA"),
		ProviderTokenURL:       envString("PROVIDER_TOKEN_URL", ""),
		ProviderCatalogURL:     envString("PROVIDER_CATALOG_URL", ""),
		ProviderClientID:       envString("PROVIDER_CLIENT_ID", ""),
		ProviderClientSecret:   envString("PROVIDER_CLIENT_SECRET", ""),
		ProviderTeamID:         envString("PROVIDER_TEAM_ID", ""),
		ProviderKeyID:          envString("PROVIDER_KEY_ID", ""),
		ProviderPrivateKeyPath: envString("PROVIDER_PRIVATE_KEY_PATH", ""),
		ProviderTokenExpirySec: envInt("PROVIDER_TOKEN_EXPIRY_SECONDS", 86400),
		ProviderTimeoutMs:      envInt("PROVIDER_TIMEOUT_MS", 10000),

		RegistryPath: envString("REGISTRY_PATH", "./assets/registry.yaml"),

		EventBufferCap:      envInt("EVENT_BUFFER_CAP", 100),
		EventPruneSchedule:  envString("EVENT_PRUNE_SCHEDULE", "@every 1h"),
		EventIdleTimeoutSec: envInt("EVENT_IDLE_TIMEOUT_SECONDS", 86400),
	}, nil
}

func envString(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return strings.EqualFold(val, "true")
}
