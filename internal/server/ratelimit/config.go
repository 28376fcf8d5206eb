package ratelimit

import (
	"time"

	"github.com/vl4dimr/tesis-system-unap/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// NewConfig builds the limiter configuration from the service settings,
// with the default per-endpoint limits.
func NewConfig(settings config.RateLimitConfig) *Config {
	if !settings.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    settings.DefaultLimit,
		DefaultWindow:   settings.DefaultWindow,
		CleanupInterval: settings.CleanupInterval,
		Whitelist:       addressSet(settings.Whitelist),
		Blacklist:       addressSet(settings.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Document processing holds a worker per request
		{Path: "/formatear", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/validar", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},

		// Audit lookups
		{Path: "/reportes/", Method: "GET", Limit: 300, Window: time.Minute, Burst: 30},

		// Everything else uses the default limit; health checks are unlimited
	}
}

func addressSet(addrs []string) map[string]bool {
	set := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		set[a] = true
	}
	return set
}
