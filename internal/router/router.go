// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4" // Echo web framework for routing
	"github.com/redis/go-redis/v9"

	"github.com/classpeak/group-booking/internal/config"
	"github.com/classpeak/group-booking/internal/handler"
	"github.com/classpeak/group-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check for load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterBooking wires the booking API under /v1.  Every endpoint
// requires a valid access token from the external auth service; the
// role claim then splits member operations from staff operations.
// The availability read additionally carries the Redis rate limiter,
// since it is the endpoint exposed to polling clients.
func RegisterBooking(e *echo.Echo, s *handler.SessionHandler, b *handler.BookingHandler, st *handler.StatsHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole(middleware.RoleMember, middleware.RoleStaff))

	// Reads available to both roles.  Hidden sessions stay invisible
	// to members inside the handler.
	v1.GET("/sessions/:id/availability", s.GetAvailability, middleware.RateLimit(rlCfg, rdb))

	// Member-facing mutations: joining a session and cancelling an own
	// spot.  Staff may cancel on behalf of any customer.
	v1.POST("/sessions/:id/join", b.Join)
	v1.DELETE("/sessions/:id/participants/:pid", b.Cancel)

	// Staff operations: check-in, no-show marking, waitlist
	// management, visibility and capacity control, and stats.
	staff := v1.Group("", middleware.RequireRole(middleware.RoleStaff))
	staff.POST("/participants/:pid/checkin", b.CheckIn)
	staff.POST("/sessions/:id/checkin-all", b.CheckInAll)
	staff.POST("/participants/:pid/no-show", b.MarkNoShow)
	staff.POST("/sessions/:id/promote", b.Promote)
	staff.GET("/sessions/:id/waitlist", s.GetWaitlist)
	staff.PATCH("/sessions/:id/visibility", s.SetVisibility)
	staff.PATCH("/sessions/:id/capacity", s.SetCapacity)
	staff.GET("/stats", st.GetStats)
}
