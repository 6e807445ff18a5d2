package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/seedlift/seedlift/config"
	"github.com/seedlift/seedlift/domain"
	"github.com/seedlift/seedlift/internal/fingerprint"
	"github.com/seedlift/seedlift/internal/metrics"
	"github.com/seedlift/seedlift/services"
)

// Deserializer resolves the request's authentication state from the token
// cookies: a valid access token is the stateless fast path; an expired or
// missing one with a refresh token present triggers re-issuance with the
// fingerprint guard; anything else leaves the request anonymous.
type Deserializer struct {
	cfg      *config.Config
	sessions *services.SessionService
	locator  *fingerprint.Locator
}

// NewDeserializer creates the middleware's dependency bundle.
func NewDeserializer(cfg *config.Config, sessions *services.SessionService, locator *fingerprint.Locator) *Deserializer {
	return &Deserializer{cfg: cfg, sessions: sessions, locator: locator}
}

// DeserializeUser is the per-request state machine. Note the deliberate
// asymmetry: an access token failing verification for a reason other than
// expiry enters the refresh branch the same way a missing one does. The
// only branch conditions are token presence and the codec's expired flag.
func (d *Deserializer) DeserializeUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			accessToken := cookieValue(c, d.cfg.AccessTokenCookie)
			refreshToken := cookieValue(c, d.cfg.RefreshTokenCookie)

			var result services.VerifyResult
			if accessToken != "" {
				result = d.sessions.Codec().Verify(accessToken)
			}

			switch {
			case result.Decoded != nil && result.Decoded.Purpose == services.PurposeAccess:
				setIdentity(c, &Identity{
					UserID:       result.Decoded.User,
					SessionID:    result.Decoded.Subject,
					AccessToken:  accessToken,
					RefreshToken: refreshToken,
				})
			case refreshToken != "" && (accessToken == "" || result.Expired):
				d.handleNewTokens(c, refreshToken)
			}
			// Both tokens absent/invalid: anonymous, login required.

			return next(c)
		}
	}
}

// handleNewTokens runs re-issuance plus the fingerprint guard. It mutates
// the response cookies and request context but never fails the request;
// the authorization gate decides what an empty context means.
func (d *Deserializer) handleNewTokens(c echo.Context, refreshToken string) {
	ctx := c.Request().Context()

	reissued, err := d.sessions.ReIssueTokens(ctx, refreshToken)
	if err != nil {
		if !errors.Is(err, services.ErrReissueDenied) {
			log.Error().Err(err).Msg("Token re-issue failed")
		} else {
			log.Info().Msg("Refresh token rejected")
		}
		ClearTokenCookies(c, d.cfg)
		return
	}

	log.Info().Str("session_id", reissued.SessionID).Msg("Access token expired, tokens re-issued")

	session := reissued.Session

	// Device fingerprint check on the pre-rotation session snapshot.
	if session.UserAgent != nil {
		reqAgent := fingerprint.ParseUserAgent(c.Request().UserAgent())
		if !fingerprint.MatchUserAgent(reqAgent, session.UserAgent) {
			log.Info().
				Interface("request_agent", reqAgent).
				Interface("session_agent", session.UserAgent).
				Msg("Request and session devices do not match")
			d.revokeSession(c, session, "device")
			return
		}
	}

	// Geolocation fingerprint check.
	if session.Location != nil {
		reqLocation := d.locator.Lookup(ctx, fingerprint.ClientIP(c.Request()))
		if !fingerprint.MatchLocation(reqLocation, session.Location) {
			log.Info().
				Interface("request_location", reqLocation).
				Interface("session_location", session.Location).
				Msg("Request and session countries or cities do not match")
			d.revokeSession(c, session, "location")
			return
		}
	}

	SetTokenCookies(c, d.cfg, reissued.AccessToken, reissued.RefreshToken)
	setIdentity(c, &Identity{
		UserID:       reissued.UserID,
		SessionID:    reissued.SessionID,
		AccessToken:  reissued.AccessToken,
		RefreshToken: reissued.RefreshToken,
	})
}

func (d *Deserializer) revokeSession(c echo.Context, session *domain.Session, reason string) {
	ctx := c.Request().Context()
	if err := d.sessions.DeleteSessions(ctx, domain.SessionFilter{ID: session.ID}, true); err != nil {
		log.Error().Err(err).Str("session_id", session.ID).Msg("Failed to revoke session")
	}
	metrics.SessionsRevokedTotal.WithLabelValues(reason).Inc()
	ClearTokenCookies(c, d.cfg)
	markSessionRevoked(c)
}
