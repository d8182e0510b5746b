package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/cv-builder/internal/config"
)

// EndpointConfig is the limit for one group of routes. Paths ending in "/"
// match by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	DefaultBurst    int
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FromSettings builds the limiter configuration from the loaded service config.
// Export routes get their own stricter bucket, auth routes a fixed one.
func FromSettings(s config.RateLimitConfig) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    s.RequestsPerM,
		DefaultWindow:   time.Minute,
		DefaultBurst:    s.Burst,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: EndpointConfigs(s.ExportPerM, s.ExportBurst),
	}
}

// EndpointConfigs returns the per-route limits.
func EndpointConfigs(exportPerMinute, exportBurst int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/export/", Method: "POST", Limit: exportPerMinute, Window: time.Minute, Burst: exportBurst},
		{Path: "/auth/login", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/auth/register", Method: "POST", Limit: 5, Window: time.Minute, Burst: 3},
		{Path: "/auth/forgot-password", Method: "POST", Limit: 3, Window: time.Minute, Burst: 3},
		{Path: "/auth/reset-password", Method: "POST", Limit: 5, Window: time.Minute, Burst: 3},
	}
}

// ParseIPList parses a comma separated list of addresses.
func ParseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
