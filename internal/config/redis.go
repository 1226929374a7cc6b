package config

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig carries the connection parameters for the Redis server
// backing the availability cache and the rate limiter.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	UseTLS   bool
}

// LoadRedisConfig reads the Redis settings from the environment.
// REDIS_ADDR is a host:port shorthand; REDIS_HOST/REDIS_PORT take
// precedence when both forms are set.
func LoadRedisConfig() RedisConfig {
	cfg := RedisConfig{
		Addr:     getenv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		cfg.Addr = host + ":" + port
	}
	if n, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		cfg.DB = n
	}
	switch strings.ToLower(os.Getenv("REDIS_TLS")) {
	case "1", "true":
		cfg.UseTLS = true
	}
	return cfg
}

// NewRedisClient connects to Redis using the environment settings and
// verifies the connection with a short ping.  Redis is optional for
// this service, so a failed connection returns nil and the caller
// disables caching and rate limiting instead of refusing to start.
func NewRedisClient() *redis.Client {
	cfg := LoadRedisConfig()
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
