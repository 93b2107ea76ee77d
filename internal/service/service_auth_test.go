package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/mock"
	"github.com/MKhiriev/go-blog/internal/store"
	"github.com/MKhiriev/go-blog/internal/utils"
	"github.com/MKhiriev/go-blog/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testSignKey = "test-sign-key"
	testIssuer  = "go-blog-test"
)

type authFixture struct {
	svc      *authService
	users    *mock.MockUserRepository
	sessions *mock.MockSessionRepository
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)
	sessions := mock.NewMockSessionRepository(ctrl)

	return authFixture{
		svc: &authService{
			userRepository:    users,
			sessionRepository: sessions,
			credentials:       newTestCredentialService(users),
			tokenSignKey:      testSignKey,
			tokenIssuer:       testIssuer,
			sessionDuration:   14 * 24 * time.Hour,
			now:               func() time.Time { return fixedNow },
			logger:            logger.Nop(),
		},
		users:    users,
		sessions: sessions,
	}
}

func cookieFor(t *testing.T, sessionID string) string {
	t.Helper()
	token, err := utils.GenerateSessionToken(testIssuer, sessionID, time.Hour, testSignKey)
	require.NoError(t, err)
	return token.SignedString
}

func activeSession(id string, userID int64) models.Session {
	return models.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: fixedNow.Add(-time.Hour),
		ExpiresAt: fixedNow.Add(time.Hour),
	}
}

// ── Authenticate ────────────────────────────────────────────────────────────

func TestAuthService_Authenticate(t *testing.T) {
	f := newAuthFixture(t)
	hash, err := f.svc.credentials.HashPassword("correct")
	require.NoError(t, err)
	stored := models.User{UserID: 5, Email: "ann@example.com", PasswordHash: hash}

	f.users.EXPECT().FindUserByEmail(gomock.Any(), "ann@example.com").Return(stored, nil)

	user, err := f.svc.Authenticate(context.Background(), "  ann@example.com ", "correct")
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.UserID)
}

func TestAuthService_Authenticate_Failures(t *testing.T) {
	f := newAuthFixture(t)
	hash, err := f.svc.credentials.HashPassword("correct")
	require.NoError(t, err)

	t.Run("empty input", func(t *testing.T) {
		_, err := f.svc.Authenticate(context.Background(), " ", "x")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		f.users.EXPECT().FindUserByEmail(gomock.Any(), "nobody@example.com").Return(models.User{}, store.ErrUserNotFound)
		_, err := f.svc.Authenticate(context.Background(), "nobody@example.com", "correct")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		f.users.EXPECT().FindUserByEmail(gomock.Any(), "ann@example.com").Return(models.User{UserID: 5, PasswordHash: hash}, nil)
		_, err := f.svc.Authenticate(context.Background(), "ann@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("store failure is not hidden", func(t *testing.T) {
		f.users.EXPECT().FindUserByEmail(gomock.Any(), "ann@example.com").Return(models.User{}, errors.New("db down"))
		_, err := f.svc.Authenticate(context.Background(), "ann@example.com", "correct")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

// ── SignIn / SignOut ────────────────────────────────────────────────────────

func TestAuthService_SignIn_ReplacesSession(t *testing.T) {
	f := newAuthFixture(t)
	current := activeSession("anon-session", 0)
	current.Flashes = []models.Flash{{Kind: models.FlashSuccess, Message: "hello"}}

	var saved models.Session
	gomock.InOrder(
		f.sessions.EXPECT().DeleteSession(gomock.Any(), "anon-session").Return(nil),
		f.sessions.EXPECT().SaveSession(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, s models.Session) error {
				saved = s
				return nil
			}),
	)

	session, token, err := f.svc.SignIn(context.Background(), &current, models.User{UserID: 9})
	require.NoError(t, err)

	assert.NotEqual(t, "anon-session", session.ID)
	assert.Equal(t, int64(9), session.UserID)
	assert.Equal(t, current.Flashes, session.Flashes)
	assert.Equal(t, session, saved)
	assert.Equal(t, fixedNow.Add(14*24*time.Hour), session.ExpiresAt)

	parsed, err := utils.ValidateAndParseSessionToken(token.SignedString, testSignKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, session.ID, parsed.SessionID)
}

func TestAuthService_SignIn_DropFails(t *testing.T) {
	f := newAuthFixture(t)
	current := activeSession("anon-session", 0)

	f.sessions.EXPECT().DeleteSession(gomock.Any(), "anon-session").Return(errors.New("db down"))

	_, _, err := f.svc.SignIn(context.Background(), &current, models.User{UserID: 9})
	require.Error(t, err)
}

func TestAuthService_SignOut(t *testing.T) {
	f := newAuthFixture(t)

	require.NoError(t, f.svc.SignOut(context.Background(), nil))

	session := activeSession("s1", 2)
	f.sessions.EXPECT().DeleteSession(gomock.Any(), "s1").Return(nil)
	require.NoError(t, f.svc.SignOut(context.Background(), &session))
}

// ── Resolve ─────────────────────────────────────────────────────────────────

func TestAuthService_Resolve_Anonymous(t *testing.T) {
	tests := []struct {
		name   string
		cookie func(t *testing.T) string
		setup  func(f authFixture)
	}{
		{
			name:   "no cookie",
			cookie: func(*testing.T) string { return "" },
		},
		{
			name:   "garbage cookie",
			cookie: func(*testing.T) string { return "not-a-jwt" },
		},
		{
			name: "foreign signature",
			cookie: func(t *testing.T) string {
				token, err := utils.GenerateSessionToken(testIssuer, "s1", time.Hour, "other-key")
				require.NoError(t, err)
				return token.SignedString
			},
		},
		{
			name:   "unknown session",
			cookie: func(t *testing.T) string { return cookieFor(t, "s1") },
			setup: func(f authFixture) {
				f.sessions.EXPECT().FindSession(gomock.Any(), "s1").Return(models.Session{}, store.ErrSessionNotFound)
			},
		},
		{
			name:   "expired session is removed",
			cookie: func(t *testing.T) string { return cookieFor(t, "s1") },
			setup: func(f authFixture) {
				expired := activeSession("s1", 4)
				expired.ExpiresAt = fixedNow
				f.sessions.EXPECT().FindSession(gomock.Any(), "s1").Return(expired, nil)
				f.sessions.EXPECT().DeleteSession(gomock.Any(), "s1").Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			rc, err := f.svc.Resolve(context.Background(), tt.cookie(t))
			require.NoError(t, err)
			assert.False(t, rc.Identity.Authenticated)
			assert.Nil(t, rc.Session)
		})
	}
}

func TestAuthService_Resolve_Authenticated(t *testing.T) {
	f := newAuthFixture(t)
	session := activeSession("s1", 4)

	f.sessions.EXPECT().FindSession(gomock.Any(), "s1").Return(session, nil)
	f.users.EXPECT().FindUserByID(gomock.Any(), int64(4)).Return(models.User{UserID: 4, Username: "ann"}, nil)

	rc, err := f.svc.Resolve(context.Background(), cookieFor(t, "s1"))
	require.NoError(t, err)

	assert.True(t, rc.Identity.Authenticated)
	assert.Equal(t, "ann", rc.Identity.Username)
	require.NotNil(t, rc.Session)
	assert.Equal(t, "s1", rc.Session.ID)
	assert.Empty(t, rc.Notices)
}

func TestAuthService_Resolve_PopsFlashes(t *testing.T) {
	f := newAuthFixture(t)
	session := activeSession("s1", 0)
	session.Flashes = []models.Flash{
		{Kind: models.FlashSuccess, Message: "you are logged out"},
		{Kind: models.FlashError, Message: "oops"},
	}

	f.sessions.EXPECT().FindSession(gomock.Any(), "s1").Return(session, nil)
	f.sessions.EXPECT().SaveSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s models.Session) error {
			assert.Empty(t, s.Flashes)
			return nil
		})

	rc, err := f.svc.Resolve(context.Background(), cookieFor(t, "s1"))
	require.NoError(t, err)

	assert.False(t, rc.Identity.Authenticated)
	assert.Equal(t, []string{"you are logged out"}, rc.NoticesOf(models.FlashSuccess))
	assert.Equal(t, []string{"oops"}, rc.NoticesOf(models.FlashError))
	require.NotNil(t, rc.Session)
	assert.Empty(t, rc.Session.Flashes)
}

func TestAuthService_Resolve_DeletedUser(t *testing.T) {
	f := newAuthFixture(t)

	f.sessions.EXPECT().FindSession(gomock.Any(), "s1").Return(activeSession("s1", 4), nil)
	f.users.EXPECT().FindUserByID(gomock.Any(), int64(4)).Return(models.User{}, store.ErrUserNotFound)
	f.sessions.EXPECT().SaveSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s models.Session) error {
			assert.Zero(t, s.UserID)
			return nil
		})

	rc, err := f.svc.Resolve(context.Background(), cookieFor(t, "s1"))
	require.NoError(t, err)
	assert.False(t, rc.Identity.Authenticated)
}

func TestAuthService_Resolve_CancelledContext(t *testing.T) {
	f := newAuthFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Resolve(ctx, cookieFor(t, "s1"))
	assert.ErrorIs(t, err, context.Canceled)
}

// ── AddFlash / PurgeExpiredSessions ─────────────────────────────────────────

func TestAuthService_AddFlash_CreatesSession(t *testing.T) {
	f := newAuthFixture(t)
	flash := models.Flash{Kind: models.FlashSuccess, Message: "your account has been removed"}

	f.sessions.EXPECT().SaveSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s models.Session) error {
			assert.Zero(t, s.UserID)
			assert.Equal(t, []models.Flash{flash}, s.Flashes)
			return nil
		})

	session, token, err := f.svc.AddFlash(context.Background(), nil, flash)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, session.ID, token.SessionID)
}

func TestAuthService_AddFlash_Appends(t *testing.T) {
	f := newAuthFixture(t)
	current := activeSession("s1", 3)
	current.Flashes = []models.Flash{{Kind: models.FlashSuccess, Message: "first"}}

	f.sessions.EXPECT().SaveSession(gomock.Any(), gomock.Any()).Return(nil)

	session, _, err := f.svc.AddFlash(context.Background(), &current, models.Flash{Kind: models.FlashError, Message: "second"})
	require.NoError(t, err)

	assert.Len(t, session.Flashes, 2)
	assert.Len(t, current.Flashes, 1, "caller's session must not be modified")
}

func TestAuthService_PurgeExpiredSessions(t *testing.T) {
	f := newAuthFixture(t)

	f.sessions.EXPECT().DeleteExpiredSessions(gomock.Any(), fixedNow).Return(int64(3), nil)

	n, err := f.svc.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
