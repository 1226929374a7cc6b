package handler // handler defines http handlers

import (
	"errors"   // errors provides sentinel values used by the context helpers
	"net/http" // HTTP status codes
	"strconv"  // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/classpeak/group-booking/internal/booking"
	"github.com/classpeak/group-booking/internal/middleware"
	"github.com/classpeak/group-booking/internal/queue"
	queue_publisher "github.com/classpeak/group-booking/internal/service"
)

// publishEvent forwards a participant event to the broker.  Publish
// failures are logged by the publisher; callers that already
// committed their mutation ignore the returned error.
func publishEvent(c echo.Context, ev queue.ParticipantEvent) error {
	return queue_publisher.PublishParticipantEvent(c.Request().Context(), ev)
}

// ctxUint64 extracts a numeric claim stored in the echo context by
// the JWT middleware and converts it to uint64.  Claims decoded from
// JSON arrive as float64; tests and other middleware may store native
// integer types.
func ctxUint64(c echo.Context, key string) (uint64, error) {
	v := c.Get(key)
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid " + key + " in context")
}

// getUserID extracts the authenticated user's id from the context.
func getUserID(c echo.Context) (uint64, error) { return ctxUint64(c, "user_id") }

// getTenantID extracts the authenticated tenant id from the context.
func getTenantID(c echo.Context) (uint64, error) { return ctxUint64(c, "tenant_id") }

// isStaff reports whether the caller holds the STAFF role.
func isStaff(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == middleware.RoleStaff
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// engineError translates the engine's error taxonomy into an HTTP
// response.  Internal errors are reported as a generic 503; the
// underlying cause is never sent to the client.
func engineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, booking.ErrDuplicateParticipant):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already joined"})
	case errors.Is(err, booking.ErrCapacityFull):
		return c.JSON(http.StatusConflict, echo.Map{"error": "capacity full"})
	case errors.Is(err, booking.ErrInvalidTransition):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid transition"})
	case errors.Is(err, booking.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict, retry"})
	default:
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable"})
	}
}
