package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/models"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

// redisSessionRepository keeps every session as a JSON value with a TTL
// equal to its remaining lifetime. A set per user indexes the session ids
// of signed-in users so they can be dropped together.
type redisSessionRepository struct {
	client *redis.Client
	logger *logger.Logger
	now    func() time.Time
}

// NewConnectRedis parses redisURL, connects and pings the server.
func NewConnectRedis(ctx context.Context, redisURL string, log *logger.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = client.Ping(pingCtx).Err(); err != nil {
		log.Err(err).Str("func", "NewConnectRedis").Msg("error connecting redis (ping)")
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Info().Str("func", "NewConnectRedis").Msg("connected to redis successfully")
	return client, nil
}

// NewRedisSessionRepository constructs the Redis [SessionRepository].
func NewRedisSessionRepository(client *redis.Client, logger *logger.Logger) SessionRepository {
	logger.Debug().Msg("creating redis session repository")
	return &redisSessionRepository{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func userSessionsKey(userID int64) string {
	return userSessionKeyPrefix + strconv.FormatInt(userID, 10)
}

// SaveSession writes the session with a TTL of its remaining lifetime.
// Sessions that are already expired are deleted instead.
func (r *redisSessionRepository) SaveSession(ctx context.Context, session models.Session) error {
	log := logger.FromContext(ctx)

	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return r.DeleteSession(ctx, session.ID)
	}

	if session.Flashes == nil {
		session.Flashes = []models.Flash{}
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error encoding session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, ttl)
	if session.UserID != 0 {
		// the index must outlive the longest session it lists: NX covers a
		// freshly created set, GT only ever extends an existing TTL
		pipe.SAdd(ctx, userSessionsKey(session.UserID), session.ID)
		pipe.ExpireNX(ctx, userSessionsKey(session.UserID), ttl)
		pipe.ExpireGT(ctx, userSessionsKey(session.UserID), ttl)
	}

	if _, err = pipe.Exec(ctx); err != nil {
		log.Err(err).Str("func", "redisSessionRepository.SaveSession").Str("session_id", session.ID).Msg("failed to save session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// FindSession loads a session by id.
//
// Returns [ErrSessionNotFound] when the key is missing or already expired.
func (r *redisSessionRepository) FindSession(ctx context.Context, sessionID string) (models.Session, error) {
	log := logger.FromContext(ctx)

	data, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "redisSessionRepository.FindSession").Str("session_id", sessionID).Msg("failed to load session")
		return models.Session{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	var session models.Session
	if err = json.Unmarshal(data, &session); err != nil {
		log.Err(err).Str("func", "redisSessionRepository.FindSession").Str("session_id", sessionID).Msg("corrupted session")
		return models.Session{}, fmt.Errorf("error decoding session: %w", err)
	}

	return session, nil
}

// DeleteSession removes one session. Unknown ids are ignored.
func (r *redisSessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "redisSessionRepository.DeleteSession").Str("session_id", sessionID).Msg("failed to delete session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// DeleteUserSessions removes every indexed session of userID and the index.
func (r *redisSessionRepository) DeleteUserSessions(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	ids, err := r.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		log.Err(err).Str("func", "redisSessionRepository.DeleteUserSessions").Int64("user_id", userID).Msg("failed to read session index")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userSessionsKey(userID))

	if err = r.client.Del(ctx, keys...).Err(); err != nil {
		log.Err(err).Str("func", "redisSessionRepository.DeleteUserSessions").Int64("user_id", userID).Msg("failed to delete sessions")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// DeleteExpiredSessions is a no-op: Redis evicts expired keys by itself.
func (r *redisSessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
