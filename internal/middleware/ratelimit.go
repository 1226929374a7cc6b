package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/classpeak/group-booking/internal/config"
)

// RateLimit returns a fixed-window rate limiter backed by Redis.
// Each (client ip, user, route) key may issue cfg.Limit requests per
// cfg.Window; the counter key expires with the window so idle clients
// cost nothing.  The limiter fails open: when Redis is unreachable
// the request proceeds, since throttling is protection for the
// database, not a correctness guarantee.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := "guest"
			if v, ok := c.Get("user_id").(string); ok && v != "" {
				user = v
			} else if v, ok := c.Get("user_id").(float64); ok {
				user = strconv.FormatUint(uint64(v), 10)
			}
			window := time.Now().Unix() / int64(cfg.Window/time.Second)
			key := fmt.Sprintf("%s:%s:%s:%s:%d", cfg.Prefix, c.RealIP(), user, c.Path(), window)

			ctx := c.Request().Context()
			pipe := rdb.TxPipeline()
			count := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, cfg.Window)
			if _, err := pipe.Exec(ctx); err != nil {
				return next(c)
			}
			if count.Val() > int64(cfg.Limit) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(cfg.Window/time.Second)))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
