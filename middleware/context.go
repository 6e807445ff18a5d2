package middleware

import "github.com/labstack/echo/v4"

const (
	identityContextKey = "auth_identity"
	revokedContextKey  = "auth_session_revoked"
)

// Identity is the request-scoped authentication context populated by
// DeserializeUser and consumed by RequireUser and the handlers.
type Identity struct {
	UserID       string
	SessionID    string
	AccessToken  string
	RefreshToken string
}

// CurrentIdentity returns the authenticated identity for this request, if
// any.
func CurrentIdentity(c echo.Context) (*Identity, bool) {
	identity, ok := c.Get(identityContextKey).(*Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

// SessionRevoked reports whether this request's session was force-revoked
// by the fingerprint guard. Distinct from plain anonymous so the
// authorization gate can explain the forced logout.
func SessionRevoked(c echo.Context) bool {
	revoked, ok := c.Get(revokedContextKey).(bool)
	return ok && revoked
}

func setIdentity(c echo.Context, identity *Identity) {
	c.Set(identityContextKey, identity)
}

func markSessionRevoked(c echo.Context) {
	c.Set(revokedContextKey, true)
}
