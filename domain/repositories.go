package domain

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound is returned when no session matches a lookup.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUserNotFound is returned when no user matches a lookup.
	ErrUserNotFound = errors.New("user not found")
)

// SessionRepository persists session records. Revocation is always a
// logical delete (valid=false); physical removal is the store's TTL
// mechanism acting on ExpiresAt, never a repository method.
type SessionRepository interface {
	InsertSession(ctx context.Context, session *Session) error
	GetSessionByID(ctx context.Context, id string) (*Session, error)
	FindSessions(ctx context.Context, filter SessionFilter) ([]*Session, error)

	// RotateRefreshToken replaces the stored refresh token only when the
	// stored value still equals current and the session is valid. It
	// reports false when no document matched, which callers must treat as
	// a failed re-issue (a concurrent rotation or a replayed token).
	RotateRefreshToken(ctx context.Context, sessionID, current, next string) (bool, error)

	// RevokeSessions sets valid=false on one (single=true) or all matching
	// sessions.
	RevokeSessions(ctx context.Context, filter SessionFilter, single bool) error
}

// UserRepository is the narrow user lookup surface the session core needs
// to validate session owners and login credentials.
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}
