package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const revokedSessionMessage = "You have been detected as using an unknown device or location. " +
	"Your session has been logged out to prevent unwanted access."

// RequireUser is the authorization gate behind DeserializeUser. A
// force-revoked session gets the explicit device-mismatch message; an
// empty context gets a generic unauthorized. Both are 401.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if SessionRevoked(c) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": revokedSessionMessage})
			}
			if _, ok := CurrentIdentity(c); !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized user"})
			}
			return next(c)
		}
	}
}
