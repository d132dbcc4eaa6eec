package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointLimit is a per-endpoint throttle. Path supports prefix matching
// when it ends with "/". Limit is requests per window, with <= 0 meaning
// unlimited; Burst is the bucket capacity and defaults to Limit when zero.
type EndpointLimit struct {
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
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	Endpoints       []EndpointLimit
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 300),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		Endpoints:       DefaultEndpointLimits(),
	}
}

// DefaultEndpointLimits returns the per-endpoint throttles. Submissions and
// AI analysis are the expensive paths; auth endpoints are capped to slow
// down credential stuffing.
func DefaultEndpointLimits() []EndpointLimit {
	return []EndpointLimit{
		// CV uploads and AI analysis
		{Path: "/applications", Method: "POST", Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/api/applications/", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},

		// Auth
		{Path: "/users/register", Method: "POST", Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/users/login", Method: "POST", Limit: 30, Window: time.Minute, Burst: 10},

		// Admin job management
		{Path: "/api/jobs", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/jobs/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
