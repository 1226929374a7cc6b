package config

import (
	"os"
	"time"
)

// AvailabilityCacheConfig defines settings for the availability
// snapshot cache.  When Enabled is false or no Redis client is
// configured, caching is disabled and every availability read goes to
// the primary store.  TTL bounds how stale a snapshot may be; the
// cache is also invalidated on every roster mutation, so the TTL only
// matters for mutations performed outside this process.
type AvailabilityCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadAvailabilityCacheConfig reads environment variables to build an
// AvailabilityCacheConfig.  Defaults are used when variables are not set.
func LoadAvailabilityCacheConfig() AvailabilityCacheConfig {
	return AvailabilityCacheConfig{
		Enabled: getenv("AVAIL_CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("AVAIL_CACHE_TTL", "5s")),
		Prefix:  getenv("AVAIL_CACHE_PREFIX", "avail"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
