package services

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/seedlift/seedlift/domain"
	"github.com/seedlift/seedlift/errors"
	"github.com/seedlift/seedlift/internal/metrics"
)

var (
	// ErrReissueDenied is the soft negative result of ReIssueTokens: the
	// presented refresh token cannot mint a new pair (expired, replayed,
	// session revoked, or owner gone). Callers drop to anonymous.
	ErrReissueDenied = goerrors.New("token re-issue denied")

	// ErrInvalidCredentials covers unknown email and wrong password alike.
	ErrInvalidCredentials = goerrors.New("incorrect email or password")

	// ErrAccountNotConfirmed is returned when credentials are correct but
	// the email address was never verified.
	ErrAccountNotConfirmed = goerrors.New("account email not confirmed")
)

// SessionService owns the session/token lifecycle: login, token pair
// issuance, re-issuance with refresh token rotation, and revocation.
type SessionService struct {
	sessions domain.SessionRepository
	users    domain.UserRepository
	codec    *TokenCodec
	hasher   PasswordHasher

	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewSessionService creates a SessionService.
func NewSessionService(
	sessions domain.SessionRepository,
	users domain.UserRepository,
	codec *TokenCodec,
	hasher PasswordHasher,
	accessTTL, refreshTTL time.Duration,
) *SessionService {
	return &SessionService{
		sessions:   sessions,
		users:      users,
		codec:      codec,
		hasher:     hasher,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Codec exposes the token codec for request deserialization.
func (s *SessionService) Codec() *TokenCodec {
	return s.codec
}

// FindSessionOwner resolves the user behind an authenticated identity.
func (s *SessionService) FindSessionOwner(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// NewPendingSession constructs an unsaved session with a generated id, so
// the id can be embedded in token subjects before the persistence
// round-trip. SaveSession completes the two-phase construct.
func (s *SessionService) NewPendingSession(userID string, agent *domain.UserAgentInfo, location *domain.Location, expiresAt time.Time) *domain.PendingSession {
	return &domain.PendingSession{
		Session: domain.Session{
			ID:        uuid.NewString(),
			UserID:    userID,
			Valid:     true,
			UserAgent: agent,
			Location:  location,
			ExpiresAt: expiresAt,
		},
	}
}

// SaveSession sets the refresh token on a pending session and persists it.
func (s *SessionService) SaveSession(ctx context.Context, pending *domain.PendingSession, refreshToken string) (*domain.Session, error) {
	pending.RefreshToken = refreshToken
	if err := s.sessions.InsertSession(ctx, &pending.Session); err != nil {
		return nil, err
	}
	return &pending.Session, nil
}

// FindSessions lists sessions matching the filter; valid ones only unless
// IncludeInvalid is set. A structurally invalid session id in the filter
// is a hard input error.
func (s *SessionService) FindSessions(ctx context.Context, filter domain.SessionFilter) ([]*domain.Session, error) {
	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return nil, errors.NewInvalidSessionID()
		}
	}
	return s.sessions.FindSessions(ctx, filter)
}

// DeleteSessions logically deletes (valid=false) one or all matching
// sessions. Physical removal is solely the store TTL's responsibility.
func (s *SessionService) DeleteSessions(ctx context.Context, filter domain.SessionFilter, single bool) error {
	return s.sessions.RevokeSessions(ctx, filter, single)
}

// ReIssuedTokens is the successful outcome of ReIssueTokens. Session is
// the pre-rotation snapshot, which the caller uses for fingerprint
// comparison.
type ReIssuedTokens struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	SessionID    string
	Session      *domain.Session
}

// ReIssueTokens validates a refresh token and mints a new access/refresh
// pair, rotating the stored refresh token. Every expected negative path
// returns ErrReissueDenied; only infrastructure failures surface as other
// errors.
func (s *SessionService) ReIssueTokens(ctx context.Context, refreshToken string) (*ReIssuedTokens, error) {
	result := s.codec.Verify(refreshToken)
	claims := result.Decoded
	if claims == nil || claims.Purpose != PurposeRefresh || claims.Subject == "" {
		metrics.TokenReissueDeniedTotal.Inc()
		return nil, ErrReissueDenied
	}

	// The triple check (found, valid, stored token equals presented)
	// defeats replay of a rotated-out refresh token even though it still
	// verifies cryptographically.
	session, err := s.sessions.GetSessionByID(ctx, claims.Subject)
	if err != nil {
		if goerrors.Is(err, domain.ErrSessionNotFound) {
			metrics.TokenReissueDeniedTotal.Inc()
			return nil, ErrReissueDenied
		}
		return nil, err
	}
	if !session.Valid || session.RefreshToken != refreshToken {
		metrics.TokenReissueDeniedTotal.Inc()
		return nil, ErrReissueDenied
	}

	// A deleted or unconfirmed-and-purged owner invalidates the session
	// silently at this layer.
	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if goerrors.Is(err, domain.ErrUserNotFound) {
			metrics.TokenReissueDeniedTotal.Inc()
			return nil, ErrReissueDenied
		}
		return nil, err
	}

	// The new refresh token inherits the old one's absolute expiry, so a
	// chain of refreshes never outlives the original login's window.
	refreshTTL := s.refreshTTL
	if claims.ExpiresAt != nil {
		refreshTTL = time.Until(claims.ExpiresAt.Time)
	}

	newAccessToken, err := s.codec.Sign(PurposeAccess, session.ID, user.ID, s.accessTTL)
	if err != nil {
		return nil, err
	}
	newRefreshToken, err := s.codec.Sign(PurposeRefresh, session.ID, "", refreshTTL)
	if err != nil {
		return nil, err
	}

	rotated, err := s.sessions.RotateRefreshToken(ctx, session.ID, refreshToken, newRefreshToken)
	if err != nil {
		return nil, err
	}
	if !rotated {
		// A concurrent re-issue won the conditional write first.
		metrics.TokenReissueDeniedTotal.Inc()
		return nil, ErrReissueDenied
	}

	metrics.TokensReissuedTotal.Inc()

	return &ReIssuedTokens{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
		UserID:       user.ID,
		SessionID:    session.ID,
		Session:      session,
	}, nil
}

// LoginInput carries the credentials and fingerprints of a login attempt.
type LoginInput struct {
	Email    string
	Password string
	Agent    *domain.UserAgentInfo
	Location *domain.Location
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User         *domain.User
	Session      *domain.Session
	AccessToken  string
	RefreshToken string
}

// Login validates credentials, creates a session bound to the request's
// fingerprints and issues the initial token pair. The session expires with
// the refresh token, after which the store's TTL removes it.
func (s *SessionService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if goerrors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginFailureTotal.Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Verify(user.PasswordHash, input.Password); err != nil {
		metrics.LoginFailureTotal.Inc()
		return nil, ErrInvalidCredentials
	}
	if !user.Confirmed {
		metrics.LoginFailureTotal.Inc()
		return nil, ErrAccountNotConfirmed
	}

	expiresAt := time.Now().Add(s.refreshTTL)
	pending := s.NewPendingSession(user.ID, input.Agent, input.Location, expiresAt)

	accessToken, err := s.codec.Sign(PurposeAccess, pending.ID, user.ID, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.Sign(PurposeRefresh, pending.ID, "", s.refreshTTL)
	if err != nil {
		return nil, err
	}

	session, err := s.SaveSession(ctx, pending, refreshToken)
	if err != nil {
		return nil, err
	}

	metrics.LoginSuccessTotal.Inc()
	log.Info().Str("user_id", user.ID).Str("session_id", session.ID).Msg("New session created")

	return &LoginResult{
		User:         user,
		Session:      session,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
