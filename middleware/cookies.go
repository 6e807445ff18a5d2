package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seedlift/seedlift/config"
)

func tokenCookie(cfg *config.Config, name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

// SetTokenCookies attaches fresh access/refresh cookies to the response,
// with max-age bound to each token's TTL.
func SetTokenCookies(c echo.Context, cfg *config.Config, accessToken, refreshToken string) {
	c.SetCookie(tokenCookie(cfg, cfg.AccessTokenCookie, accessToken, cfg.AccessTokenTTL))
	c.SetCookie(tokenCookie(cfg, cfg.RefreshTokenCookie, refreshToken, cfg.RefreshTokenTTL))
}

// ClearTokenCookies expires both token cookies, logging the client out.
func ClearTokenCookies(c echo.Context, cfg *config.Config) {
	c.SetCookie(tokenCookie(cfg, cfg.AccessTokenCookie, "", -1))
	c.SetCookie(tokenCookie(cfg, cfg.RefreshTokenCookie, "", -1))
}

// cookieValue reads a request cookie, empty when absent.
func cookieValue(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil || cookie == nil {
		return ""
	}
	return cookie.Value
}
