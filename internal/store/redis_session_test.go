package store

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var redisNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRedisSessions(t *testing.T) (*redisSessionRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewRedisSessionRepository(client, logger.Nop()).(*redisSessionRepository)
	repo.now = func() time.Time { return redisNow }
	return repo, mr
}

func redisSession(id string, userID int64, lifetime time.Duration) models.Session {
	return models.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: redisNow,
		ExpiresAt: redisNow.Add(lifetime),
	}
}

func TestRedisSessionKeys(t *testing.T) {
	assert.Equal(t, "session:abc", sessionKey("abc"))
	assert.Equal(t, "user_sessions:42", userSessionsKey(42))
}

func TestNewConnectRedis_InvalidURL(t *testing.T) {
	_, err := NewConnectRedis(context.Background(), "not-a-url://", logger.Nop())
	require.Error(t, err)
}

func TestNewConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewConnectRedis(context.Background(), "redis://"+mr.Addr(), logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}

// ─────────────────────────────────────────────
// SaveSession / FindSession
// ─────────────────────────────────────────────

func TestRedisSessionRepository_SaveAndFind(t *testing.T) {
	repo, mr := newTestRedisSessions(t)
	ctx := context.Background()

	session := redisSession("s1", 7, time.Hour)
	session.Flashes = []models.Flash{{Kind: models.FlashSuccess, Message: "login successful"}}
	require.NoError(t, repo.SaveSession(ctx, session))

	assert.Equal(t, time.Hour, mr.TTL(sessionKey("s1")))

	members, err := mr.Members(userSessionsKey(7))
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, members)
	assert.Equal(t, time.Hour, mr.TTL(userSessionsKey(7)))

	got, err := repo.FindSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, session.Flashes, got.Flashes)
	assert.True(t, got.ExpiresAt.Equal(session.ExpiresAt))
}

func TestRedisSessionRepository_SaveAnonymous(t *testing.T) {
	repo, mr := newTestRedisSessions(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, redisSession("anon", 0, time.Minute)))

	got, err := repo.FindSession(ctx, "anon")
	require.NoError(t, err)
	assert.NotNil(t, got.Flashes, "flashes are stored as an empty list")
	assert.Empty(t, got.Flashes)
	assert.False(t, mr.Exists(userSessionsKey(0)))
}

func TestRedisSessionRepository_SaveExpiredDeletes(t *testing.T) {
	repo, mr := newTestRedisSessions(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, redisSession("s1", 7, time.Hour)))
	require.NoError(t, repo.SaveSession(ctx, redisSession("s1", 7, -time.Second)))

	assert.False(t, mr.Exists(sessionKey("s1")))
	_, err := repo.FindSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionRepository_FindSession_Errors(t *testing.T) {
	repo, mr := newTestRedisSessions(t)
	ctx := context.Background()

	_, err := repo.FindSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, mr.Set(sessionKey("broken"), "{not json"))
	_, err = repo.FindSession(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, repo.SaveSession(ctx, redisSession("s1", 7, time.Minute)))
	mr.FastForward(time.Minute)
	_, err = repo.FindSession(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionRepository_ServerDown(t *testing.T) {
	repo, mr := newTestRedisSessions(t)
	mr.Close()

	_, err := repo.FindSession(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrExecutingQuery)

	err = repo.SaveSession(context.Background(), redisSession("s1", 7, time.Hour))
	assert.ErrorIs(t, err, ErrExecutingStatement)
}

// TestRedisSessionRepository_IndexOutlivesLongestSession verifies that saving
// a short-lived session never shortens the lifetime of the per-user index.
func TestRedisSessionRepository_IndexOutlivesLongestSession(t *testing.T) {
	repo, mr := newTestRedisSessions(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, redisSession("long", 7, 2*time.Hour)))
	require.NoError(t, repo.SaveSession(ctx, redisSession("short", 7, 10*time.Minute)))
	assert.Equal(t, 2*time.Hour, mr.TTL(userSessionsKey(7)))

	require.NoError(t, repo.SaveSession(ctx, redisSession("longer", 7, 3*time.Hour)))
	assert.Equal(t, 3*time.Hour, mr.TTL(userSessionsKey(7)))

	mr.FastForward(2*time.Hour + time.Minute)
	require.NoError(t, repo.DeleteUserSessions(ctx, 7))
	assert.False(t, mr.Exists(sessionKey("longer")))
}

// ─────────────────────────────────────────────
// DeleteSession / DeleteUserSessions
// ─────────────────────────────────────────────

func TestRedisSessionRepository_DeleteSession(t *testing.T) {
	repo, mr := newTestRedisSessions(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, redisSession("s1", 7, time.Hour)))
	require.NoError(t, repo.DeleteSession(ctx, "s1"))
	assert.False(t, mr.Exists(sessionKey("s1")))

	assert.NoError(t, repo.DeleteSession(ctx, "unknown"))
}

func TestRedisSessionRepository_DeleteUserSessions(t *testing.T) {
	repo, mr := newTestRedisSessions(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, redisSession("a1", 7, time.Hour)))
	require.NoError(t, repo.SaveSession(ctx, redisSession("a2", 7, 2*time.Hour)))
	require.NoError(t, repo.SaveSession(ctx, redisSession("b1", 8, time.Hour)))
	require.NoError(t, repo.SaveSession(ctx, redisSession("anon", 0, time.Hour)))

	require.NoError(t, repo.DeleteUserSessions(ctx, 7))

	assert.False(t, mr.Exists(sessionKey("a1")))
	assert.False(t, mr.Exists(sessionKey("a2")))
	assert.False(t, mr.Exists(userSessionsKey(7)))
	assert.True(t, mr.Exists(sessionKey("b1")))
	assert.True(t, mr.Exists(sessionKey("anon")))

	assert.NoError(t, repo.DeleteUserSessions(ctx, 99), "user without sessions")
}

func TestRedisSessionRepository_DeleteExpiredIsNoop(t *testing.T) {
	repo, _ := newTestRedisSessions(t)

	purged, err := repo.DeleteExpiredSessions(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, purged)
}
