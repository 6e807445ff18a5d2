package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/seedlift/seedlift/domain"
	apierrors "github.com/seedlift/seedlift/errors"
)

// --- Mock implementations ---

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) InsertSession(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetSessionByID(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) FindSessions(ctx context.Context, filter domain.SessionFilter) ([]*domain.Session, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) RotateRefreshToken(ctx context.Context, sessionID, current, next string) (bool, error) {
	args := m.Called(ctx, sessionID, current, next)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepository) RevokeSessions(ctx context.Context, filter domain.SessionFilter, single bool) error {
	args := m.Called(ctx, filter, single)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(hashedPassword, password string) error {
	args := m.Called(hashedPassword, password)
	return args.Error(0)
}

// --- Helpers ---

func newTestService(sessions *MockSessionRepository, users *MockUserRepository, hasher *MockPasswordHasher) *SessionService {
	codec := NewTokenCodec("test-secret")
	return NewSessionService(sessions, users, codec, hasher, 15*time.Minute, time.Hour)
}

func validSessionFixture(t *testing.T, svc *SessionService, refreshTTL time.Duration) (*domain.Session, string) {
	t.Helper()
	sessionID := uuid.NewString()
	refreshToken, err := svc.Codec().Sign(PurposeRefresh, sessionID, "", refreshTTL)
	require.NoError(t, err)
	session := &domain.Session{
		ID:           sessionID,
		UserID:       "user-1",
		RefreshToken: refreshToken,
		Valid:        true,
		ExpiresAt:    time.Now().Add(refreshTTL),
	}
	return session, refreshToken
}

// --- ReIssueTokens ---

func TestReIssueTokens_RotatesRefreshToken(t *testing.T) {
	sessions := new(MockSessionRepository)
	users := new(MockUserRepository)
	svc := newTestService(sessions, users, new(MockPasswordHasher))
	ctx := context.Background()

	session, refreshToken := validSessionFixture(t, svc, time.Hour)
	sessions.On("GetSessionByID", ctx, session.ID).Return(session, nil)
	users.On("GetUserByID", ctx, "user-1").Return(&domain.User{ID: "user-1", Confirmed: true}, nil)
	sessions.On("RotateRefreshToken", ctx, session.ID, refreshToken, mock.AnythingOfType("string")).Return(true, nil)

	result, err := svc.ReIssueTokens(ctx, refreshToken)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEqual(t, refreshToken, result.RefreshToken)
	assert.Equal(t, session.ID, result.SessionID)
	assert.Equal(t, "user-1", result.UserID)
	assert.Same(t, session, result.Session)

	access := svc.Codec().Verify(result.AccessToken)
	require.NotNil(t, access.Decoded)
	assert.Equal(t, PurposeAccess, access.Decoded.Purpose)
	assert.Equal(t, session.ID, access.Decoded.Subject)
	assert.Equal(t, "user-1", access.Decoded.User)

	sessions.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestReIssueTokens_NewRefreshKeepsOldAbsoluteExpiry(t *testing.T) {
	sessions := new(MockSessionRepository)
	users := new(MockUserRepository)
	svc := newTestService(sessions, users, new(MockPasswordHasher))
	ctx := context.Background()

	// Old refresh token expires in 10 minutes, well below the default
	// one-hour TTL.
	session, refreshToken := validSessionFixture(t, svc, 10*time.Minute)
	sessions.On("GetSessionByID", ctx, session.ID).Return(session, nil)
	users.On("GetUserByID", ctx, "user-1").Return(&domain.User{ID: "user-1"}, nil)
	sessions.On("RotateRefreshToken", ctx, session.ID, refreshToken, mock.AnythingOfType("string")).Return(true, nil)

	result, err := svc.ReIssueTokens(ctx, refreshToken)
	require.NoError(t, err)

	oldClaims := svc.Codec().Verify(refreshToken).Decoded
	newClaims := svc.Codec().Verify(result.RefreshToken).Decoded
	require.NotNil(t, oldClaims)
	require.NotNil(t, newClaims)

	diff := newClaims.ExpiresAt.Time.Sub(oldClaims.ExpiresAt.Time)
	assert.LessOrEqual(t, diff.Abs(), time.Second,
		"new refresh token must expire at the old one's absolute expiry, not now+TTL")
}

func TestReIssueTokens_DeniedForNonRefreshPurpose(t *testing.T) {
	svc := newTestService(new(MockSessionRepository), new(MockUserRepository), new(MockPasswordHasher))

	accessToken, err := svc.Codec().Sign(PurposeAccess, uuid.NewString(), "user-1", time.Hour)
	require.NoError(t, err)

	result, err := svc.ReIssueTokens(context.Background(), accessToken)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrReissueDenied)
}

func TestReIssueTokens_DeniedForGarbageToken(t *testing.T) {
	svc := newTestService(new(MockSessionRepository), new(MockUserRepository), new(MockPasswordHasher))

	result, err := svc.ReIssueTokens(context.Background(), "garbage")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrReissueDenied)
}

func TestReIssueTokens_DeniedWhenSessionMissing(t *testing.T) {
	sessions := new(MockSessionRepository)
	svc := newTestService(sessions, new(MockUserRepository), new(MockPasswordHasher))
	ctx := context.Background()

	_, refreshToken := validSessionFixture(t, svc, time.Hour)
	sessions.On("GetSessionByID", ctx, mock.AnythingOfType("string")).Return(nil, domain.ErrSessionNotFound)

	result, err := svc.ReIssueTokens(ctx, refreshToken)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrReissueDenied)
}

func TestReIssueTokens_DeniedWhenSessionRevoked(t *testing.T) {
	sessions := new(MockSessionRepository)
	svc := newTestService(sessions, new(MockUserRepository), new(MockPasswordHasher))
	ctx := context.Background()

	session, refreshToken := validSessionFixture(t, svc, time.Hour)
	session.Valid = false
	sessions.On("GetSessionByID", ctx, session.ID).Return(session, nil)

	result, err := svc.ReIssueTokens(ctx, refreshToken)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrReissueDenied)
}

func TestReIssueTokens_DeniedOnRotatedOutTokenReplay(t *testing.T) {
	// The replayed token still verifies cryptographically, but the
	// session already stores a newer value.
	sessions := new(MockSessionRepository)
	svc := newTestService(sessions, new(MockUserRepository), new(MockPasswordHasher))
	ctx := context.Background()

	session, staleToken := validSessionFixture(t, svc, time.Hour)
	session.RefreshToken = "a-newer-rotated-value"
	sessions.On("GetSessionByID", ctx, session.ID).Return(session, nil)

	result, err := svc.ReIssueTokens(ctx, staleToken)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrReissueDenied)
}

func TestReIssueTokens_DeniedWhenOwnerGone(t *testing.T) {
	sessions := new(MockSessionRepository)
	users := new(MockUserRepository)
	svc := newTestService(sessions, users, new(MockPasswordHasher))
	ctx := context.Background()

	session, refreshToken := validSessionFixture(t, svc, time.Hour)
	sessions.On("GetSessionByID", ctx, session.ID).Return(session, nil)
	users.On("GetUserByID", ctx, "user-1").Return(nil, domain.ErrUserNotFound)

	result, err := svc.ReIssueTokens(ctx, refreshToken)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrReissueDenied)
}

func TestReIssueTokens_DeniedWhenConcurrentRotationWins(t *testing.T) {
	sessions := new(MockSessionRepository)
	users := new(MockUserRepository)
	svc := newTestService(sessions, users, new(MockPasswordHasher))
	ctx := context.Background()

	session, refreshToken := validSessionFixture(t, svc, time.Hour)
	sessions.On("GetSessionByID", ctx, session.ID).Return(session, nil)
	users.On("GetUserByID", ctx, "user-1").Return(&domain.User{ID: "user-1"}, nil)
	sessions.On("RotateRefreshToken", ctx, session.ID, refreshToken, mock.AnythingOfType("string")).Return(false, nil)

	result, err := svc.ReIssueTokens(ctx, refreshToken)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrReissueDenied)
}

// --- Login ---

func TestLogin_CreatesSessionWithTokenPair(t *testing.T) {
	sessions := new(MockSessionRepository)
	users := new(MockUserRepository)
	hasher := new(MockPasswordHasher)
	svc := newTestService(sessions, users, hasher)
	ctx := context.Background()

	user := &domain.User{ID: "user-1", Email: "a@b.c", Username: "alice", PasswordHash: "hash", Confirmed: true}
	users.On("GetUserByEmail", ctx, "a@b.c").Return(user, nil)
	hasher.On("Verify", "hash", "secret").Return(nil)

	var stored *domain.Session
	sessions.On("InsertSession", ctx, mock.AnythingOfType("*domain.Session")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Session) }).
		Return(nil)

	agent := &domain.UserAgentInfo{Browser: "Chrome", OS: "Linux"}
	result, err := svc.Login(ctx, LoginInput{Email: "a@b.c", Password: "secret", Agent: agent})
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.True(t, stored.Valid)
	assert.Equal(t, "user-1", stored.UserID)
	assert.Equal(t, agent, stored.UserAgent)
	assert.Equal(t, result.RefreshToken, stored.RefreshToken)

	// The access token's subject is the freshly generated session id.
	access := svc.Codec().Verify(result.AccessToken)
	require.NotNil(t, access.Decoded)
	assert.Equal(t, stored.ID, access.Decoded.Subject)
	assert.Equal(t, "user-1", access.Decoded.User)

	refresh := svc.Codec().Verify(result.RefreshToken)
	require.NotNil(t, refresh.Decoded)
	assert.Equal(t, stored.ID, refresh.Decoded.Subject)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	sessions := new(MockSessionRepository)
	users := new(MockUserRepository)
	hasher := new(MockPasswordHasher)
	svc := newTestService(sessions, users, hasher)
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		users.On("GetUserByEmail", ctx, "nobody@b.c").Return(nil, domain.ErrUserNotFound)
		_, err := svc.Login(ctx, LoginInput{Email: "nobody@b.c", Password: "x"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		user := &domain.User{ID: "user-1", Email: "a@b.c", PasswordHash: "hash", Confirmed: true}
		users.On("GetUserByEmail", ctx, "a@b.c").Return(user, nil)
		hasher.On("Verify", "hash", "wrong").Return(assert.AnError)
		_, err := svc.Login(ctx, LoginInput{Email: "a@b.c", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLogin_UnconfirmedAccount(t *testing.T) {
	sessions := new(MockSessionRepository)
	users := new(MockUserRepository)
	hasher := new(MockPasswordHasher)
	svc := newTestService(sessions, users, hasher)
	ctx := context.Background()

	user := &domain.User{ID: "user-1", Email: "a@b.c", PasswordHash: "hash", Confirmed: false}
	users.On("GetUserByEmail", ctx, "a@b.c").Return(user, nil)
	hasher.On("Verify", "hash", "secret").Return(nil)

	_, err := svc.Login(ctx, LoginInput{Email: "a@b.c", Password: "secret"})
	assert.ErrorIs(t, err, ErrAccountNotConfirmed)
	sessions.AssertNotCalled(t, "InsertSession", mock.Anything, mock.Anything)
}

// --- FindSessions / DeleteSessions ---

func TestFindSessions_RejectsMalformedID(t *testing.T) {
	svc := newTestService(new(MockSessionRepository), new(MockUserRepository), new(MockPasswordHasher))

	_, err := svc.FindSessions(context.Background(), domain.SessionFilter{ID: "not-a-uuid"})
	require.Error(t, err)

	var validationErr *apierrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "validation", validationErr.Type)
	require.Len(t, validationErr.Issues, 1)
	assert.Equal(t, "invalid format", validationErr.Issues[0].Code)
	assert.Equal(t, []string{"id"}, validationErr.Issues[0].Path)
}

func TestFindSessions_PassesFilterThrough(t *testing.T) {
	sessions := new(MockSessionRepository)
	svc := newTestService(sessions, new(MockUserRepository), new(MockPasswordHasher))
	ctx := context.Background()

	filter := domain.SessionFilter{UserID: "user-1"}
	sessions.On("FindSessions", ctx, filter).Return([]*domain.Session{}, nil)

	result, err := svc.FindSessions(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, result)
	sessions.AssertExpectations(t)
}

func TestDeleteSessions_RevokesAllForUser(t *testing.T) {
	sessions := new(MockSessionRepository)
	svc := newTestService(sessions, new(MockUserRepository), new(MockPasswordHasher))
	ctx := context.Background()

	filter := domain.SessionFilter{UserID: "user-1"}
	sessions.On("RevokeSessions", ctx, filter, false).Return(nil)

	require.NoError(t, svc.DeleteSessions(ctx, filter, false))
	sessions.AssertExpectations(t)
}
