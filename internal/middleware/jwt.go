package middleware // middleware provides reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token minted by the external auth service and injects the token's
// subject, tenant and role claims into the request context.  The
// engine trusts this boundary and never re-validates credentials.
// Handlers access the authenticated identity via c.Get("user_id"),
// c.Get("tenant_id") and c.Get("role").
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with HS256 and the shared secret.  Tokens signed with
			// any other method are rejected outright.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			// A token without a tenant claim cannot be scoped to any data
			// and is useless here, so reject it early.
			tenant, ok := claims["tenant_id"]
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant claim"})
			}

			// Store the identity claims in the context.  Type assertions
			// are left to downstream consumers.
			c.Set("user_id", claims["sub"])
			c.Set("tenant_id", tenant)
			c.Set("role", claims["role"])
			return next(c)
		}
	}
}
