// Package echo wires the session lifecycle onto the HTTP surface.
package echo

import (
	goerrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/seedlift/seedlift/config"
	"github.com/seedlift/seedlift/domain"
	apierrors "github.com/seedlift/seedlift/errors"
	"github.com/seedlift/seedlift/internal/fingerprint"
	"github.com/seedlift/seedlift/middleware"
	"github.com/seedlift/seedlift/mongodb"
	"github.com/seedlift/seedlift/services"
)

// SessionAPI holds the dependencies of the session endpoints.
type SessionAPI struct {
	cfg      *config.Config
	sessions *services.SessionService
	locator  *fingerprint.Locator
}

// NewSessionAPI initializes the session API.
func NewSessionAPI(cfg *config.Config, sessions *services.SessionService, locator *fingerprint.Locator) *SessionAPI {
	return &SessionAPI{cfg: cfg, sessions: sessions, locator: locator}
}

// RegisterRoutes registers the session routes. DeserializeUser runs on all
// of them; everything except login additionally sits behind RequireUser.
func (a *SessionAPI) RegisterRoutes(e *echo.Echo, deserializer *middleware.Deserializer) {
	deserialize := deserializer.DeserializeUser()
	requireUser := middleware.RequireUser()

	v1 := e.Group("/v1", deserialize)

	v1.POST("/sessions", a.CreateSessionHandler)
	v1.GET("/sessions", a.GetSessionsHandler, requireUser)
	v1.GET("/sessions/:id", a.GetSessionHandler, requireUser)
	v1.DELETE("/session", a.DeleteCurrentSessionHandler, requireUser)
	v1.DELETE("/sessions/:id", a.DeleteSessionHandler, requireUser)
	v1.DELETE("/sessions", a.DeleteAllSessionsHandler, requireUser)

	e.GET("/healthz", a.HealthzHandler)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userSummary struct {
	Email         string   `json:"email"`
	Username      string   `json:"username"`
	LogoURI       string   `json:"logoUri,omitempty"`
	LikedProjects []string `json:"likedProjects,omitempty"`
}

func summarize(user *domain.User) userSummary {
	return userSummary{
		Email:         user.Email,
		Username:      user.Username,
		LogoURI:       user.LogoURI,
		LikedProjects: user.LikedProjects,
	}
}

// CreateSessionHandler is the login endpoint: validates credentials,
// creates a session bound to the request's device/location fingerprints
// and sets the token cookie pair.
func (a *SessionAPI) CreateSessionHandler(c echo.Context) error {
	ctx := c.Request().Context()

	// Already logged in: no new session, just the user summary.
	if identity, ok := middleware.CurrentIdentity(c); ok {
		user, err := a.sessions.FindSessionOwner(ctx, identity.UserID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Incorrect email or password"})
		}
		return c.JSON(http.StatusCreated, summarize(user))
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierrors.NewValidationError("invalid_type", "Malformed request body", "body"))
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, apierrors.NewValidationError("too_small", "Email and password are required", "body"))
	}

	agent := fingerprint.ParseUserAgent(c.Request().UserAgent())
	location := a.locator.Lookup(ctx, fingerprint.ClientIP(c.Request()))

	result, err := a.sessions.Login(ctx, services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Agent:    agent,
		Location: location,
	})
	if err != nil {
		switch {
		case goerrors.Is(err, services.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Incorrect email or password"})
		case goerrors.Is(err, services.ErrAccountNotConfirmed):
			return c.JSON(http.StatusForbidden, map[string]string{"message": "Verify your email address before using your account"})
		default:
			log.Error().Err(err).Msg("Login failed")
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "An unexpected error occurred"})
		}
	}

	middleware.SetTokenCookies(c, a.cfg, result.AccessToken, result.RefreshToken)

	return c.JSON(http.StatusCreated, summarize(result.User))
}

// GetSessionsHandler lists the caller's valid sessions.
func (a *SessionAPI) GetSessionsHandler(c echo.Context) error {
	identity, _ := middleware.CurrentIdentity(c)

	sessions, err := a.sessions.FindSessions(c.Request().Context(), domain.SessionFilter{UserID: identity.UserID})
	if err != nil {
		log.Error().Err(err).Msg("Failed to list sessions")
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "An unexpected error occurred"})
	}
	return c.JSON(http.StatusOK, sessions)
}

// GetSessionHandler returns one of the caller's sessions.
func (a *SessionAPI) GetSessionHandler(c echo.Context) error {
	identity, _ := middleware.CurrentIdentity(c)

	sessions, err := a.sessions.FindSessions(c.Request().Context(), domain.SessionFilter{
		ID:     c.Param("id"),
		UserID: identity.UserID,
	})
	if err != nil {
		var validationErr *apierrors.ValidationError
		if goerrors.As(err, &validationErr) {
			return c.JSON(http.StatusBadRequest, validationErr)
		}
		log.Error().Err(err).Msg("Failed to look up session")
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "An unexpected error occurred"})
	}
	if len(sessions) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Session not found"})
	}
	return c.JSON(http.StatusOK, sessions[0])
}

// DeleteCurrentSessionHandler logs the caller out of this session.
func (a *SessionAPI) DeleteCurrentSessionHandler(c echo.Context) error {
	identity, _ := middleware.CurrentIdentity(c)

	if identity.SessionID != "" {
		if err := a.sessions.DeleteSessions(c.Request().Context(), domain.SessionFilter{ID: identity.SessionID}, true); err != nil {
			log.Error().Err(err).Msg("Failed to revoke current session")
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "An unexpected error occurred"})
		}
	}

	middleware.ClearTokenCookies(c, a.cfg)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// DeleteSessionHandler revokes one of the caller's sessions by id.
func (a *SessionAPI) DeleteSessionHandler(c echo.Context) error {
	identity, _ := middleware.CurrentIdentity(c)
	sessionID := c.Param("id")

	if _, err := uuid.Parse(sessionID); err != nil {
		return c.JSON(http.StatusBadRequest, apierrors.NewInvalidSessionID())
	}

	err := a.sessions.DeleteSessions(c.Request().Context(), domain.SessionFilter{
		ID:     sessionID,
		UserID: identity.UserID,
	}, true)
	if err != nil {
		log.Error().Err(err).Msg("Failed to revoke session")
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "An unexpected error occurred"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// DeleteAllSessionsHandler revokes every session of the caller and logs
// this device out.
func (a *SessionAPI) DeleteAllSessionsHandler(c echo.Context) error {
	identity, _ := middleware.CurrentIdentity(c)

	err := a.sessions.DeleteSessions(c.Request().Context(), domain.SessionFilter{UserID: identity.UserID}, false)
	if err != nil {
		log.Error().Err(err).Msg("Failed to revoke all sessions")
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "An unexpected error occurred"})
	}

	middleware.ClearTokenCookies(c, a.cfg)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// HealthzHandler reports liveness, including store connectivity.
func (a *SessionAPI) HealthzHandler(c echo.Context) error {
	if err := mongodb.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
