package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/models"
)

// sessionRepository keeps sessions in the "sessions" table. Flashes are
// stored as a JSONB array.
type sessionRepository struct {
	*DB
	logger *logger.Logger
}

// NewSessionRepository constructs the PostgreSQL [SessionRepository].
func NewSessionRepository(db *DB, logger *logger.Logger) SessionRepository {
	logger.Debug().Msg("creating postgres session repository")
	return &sessionRepository{
		DB:     db,
		logger: logger,
	}
}

// SaveSession inserts session or overwrites the stored user, flashes and
// expiry of an existing one.
func (s *sessionRepository) SaveSession(ctx context.Context, session models.Session) error {
	log := logger.FromContext(ctx)

	flashes, err := encodeFlashes(session.Flashes)
	if err != nil {
		return err
	}

	userID := sql.NullInt64{Int64: session.UserID, Valid: session.UserID != 0}
	if _, err = s.DB.ExecContext(ctx, saveSession, session.ID, userID, flashes, session.CreatedAt, session.ExpiresAt); err != nil {
		log.Err(err).Str("func", "sessionRepository.SaveSession").Str("session_id", session.ID).Msg("failed to save session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// FindSession loads a session by id. Expiry is not checked here.
//
// Returns [ErrSessionNotFound] when the id is unknown.
func (s *sessionRepository) FindSession(ctx context.Context, sessionID string) (models.Session, error) {
	log := logger.FromContext(ctx)

	var (
		session models.Session
		userID  sql.NullInt64
		flashes []byte
	)

	err := s.DB.QueryRowContext(ctx, findSession, sessionID).
		Scan(&session.ID, &userID, &flashes, &session.CreatedAt, &session.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug().Str("func", "sessionRepository.FindSession").Str("session_id", sessionID).Msg("session not found")
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "sessionRepository.FindSession").Str("session_id", sessionID).Msg("failed to load session")
		return models.Session{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	session.UserID = userID.Int64
	if session.Flashes, err = decodeFlashes(flashes); err != nil {
		log.Err(err).Str("func", "sessionRepository.FindSession").Str("session_id", sessionID).Msg("corrupted flashes")
		return models.Session{}, err
	}

	return session, nil
}

// DeleteSession removes a session. Deleting an unknown id is not an error.
func (s *sessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.DB.ExecContext(ctx, deleteSession, sessionID); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "sessionRepository.DeleteSession").Str("session_id", sessionID).Msg("failed to delete session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// DeleteUserSessions removes every session of userID.
func (s *sessionRepository) DeleteUserSessions(ctx context.Context, userID int64) error {
	if _, err := s.DB.ExecContext(ctx, deleteUserSessions, userID); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "sessionRepository.DeleteUserSessions").Int64("user_id", userID).Msg("failed to delete sessions")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// DeleteExpiredSessions purges sessions whose expiry is not after now.
func (s *sessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.DB.ExecContext(ctx, deleteExpiredSessions, now)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "sessionRepository.DeleteExpiredSessions").Msg("failed to purge sessions")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return result.RowsAffected()
}

func encodeFlashes(flashes []models.Flash) ([]byte, error) {
	if flashes == nil {
		flashes = []models.Flash{}
	}
	data, err := json.Marshal(flashes)
	if err != nil {
		return nil, fmt.Errorf("error encoding flashes: %w", err)
	}
	return data, nil
}

func decodeFlashes(data []byte) ([]models.Flash, error) {
	flashes := []models.Flash{}
	if len(data) == 0 {
		return flashes, nil
	}
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil, fmt.Errorf("error decoding flashes: %w", err)
	}
	return flashes, nil
}
