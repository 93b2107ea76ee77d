package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-blog/internal/config"
	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/redis/go-redis/v9"
)

// Storages bundles every persistence component used by the services.
type Storages struct {
	UserRepository     UserRepository
	PostRepository     PostRepository
	CategoryRepository CategoryRepository
	SessionRepository  SessionRepository
	AvatarFileStorage  AvatarFileStorage

	db    *DB
	redis *redis.Client
}

// NewStorages connects to PostgreSQL, applies migrations and builds the
// repositories. Sessions go to Redis when cfg.Redis.URL is set.
func NewStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	db, err := NewConnectPostgres(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("error connecting postgres: %w", err)
	}

	if err = db.Migrate(); err != nil {
		logger.Err(err).Str("func", "NewStorages").Msg("error applying migrations")
		return nil, errors.Join(err, db.Close())
	}

	storages := &Storages{
		UserRepository:     NewUserRepository(db, logger),
		PostRepository:     NewPostRepository(db, logger),
		CategoryRepository: NewCategoryRepository(db, logger),
		AvatarFileStorage:  NewAvatarFileStorage(cfg.Media.UploadDir, logger),
		db:                 db,
	}

	if cfg.Redis.URL != "" {
		client, redisErr := NewConnectRedis(ctx, cfg.Redis.URL, logger)
		if redisErr != nil {
			return nil, errors.Join(redisErr, db.Close())
		}
		storages.redis = client
		storages.SessionRepository = NewRedisSessionRepository(client, logger)
	} else {
		storages.SessionRepository = NewSessionRepository(db, logger)
	}

	return storages, nil
}

// Close releases the database and Redis connections.
func (s *Storages) Close() error {
	var err error
	if s.redis != nil {
		err = errors.Join(err, s.redis.Close())
	}
	if s.db != nil {
		err = errors.Join(err, s.db.Close())
	}
	return err
}

// Ping checks that PostgreSQL and, when configured, Redis answer.
func (s *Storages) Ping(ctx context.Context) error {
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}
