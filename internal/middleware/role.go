package middleware

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// Roles understood by the booking API.  MEMBER covers customers
// joining and cancelling their own spots; STAFF covers front-desk and
// instructor operations such as bulk check-in, no-show marking and
// waitlist promotion.
const (
	RoleMember = "MEMBER"
	RoleStaff  = "STAFF"
)

// RequireRole returns a middleware that enforces that the
// authenticated user has one of the specified roles, matching the
// values stored in the JWT's "role" claim.  It assumes JWTAuth has
// already extracted the role into the context.  Requests with a
// missing or disallowed role are rejected with 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("role")
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
