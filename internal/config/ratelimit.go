package config

import (
	"strconv"
	"time"
)

// RateLimitConfig defines the fixed-window rate limiter applied to
// the availability endpoint.  Limit requests are allowed per Window
// for each (ip, user, route) key.
type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
	Prefix  string
}

// LoadRateLimitConfig reads environment variables to build a
// RateLimitConfig, falling back to sane defaults and clamping
// nonsensical values.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: getenv("RATE_LIMIT_ENABLED", "true") == "true",
		Limit:   atoiDef(getenv("RATE_LIMIT_LIMIT", "60"), 60),
		Window:  parseDur(getenv("RATE_LIMIT_WINDOW", "1m")),
		Prefix:  getenv("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Limit < 1 {
		cfg.Limit = 1
	}
	// The limiter buckets counters by whole seconds, so anything
	// shorter than a second is meaningless.
	if cfg.Window < time.Second {
		cfg.Window = time.Minute
	}
	return cfg
}

func atoiDef(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
