// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-blog/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository persists user accounts, credentials and password reset
// state in the "users" table.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	// UpdateProfile writes username, e-mail and avatar.
	UpdateProfile(ctx context.Context, user models.User) (models.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	SetResetToken(ctx context.Context, userID int64, token models.ResetToken) error
	FindUserByResetToken(ctx context.Context, token string) (models.User, error)
	// ResetPassword writes the new hash and clears the token in one statement,
	// guarded by the token still being valid at now.
	ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) error
	// DeleteUser removes the user row and returns the avatar reference it held.
	DeleteUser(ctx context.Context, userID int64) (string, error)
}

// PostRepository persists posts together with their ordered categories.
type PostRepository interface {
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	FindPostByID(ctx context.Context, postID string) (models.Post, error)
	UpdatePost(ctx context.Context, post models.Post) (models.Post, error)
	// DeletePost deletes the post owned by authorID and returns the number
	// of affected rows.
	DeletePost(ctx context.Context, postID string, authorID int64) (int64, error)
	DeletePostsByAuthor(ctx context.Context, authorID int64) (int64, error)
	ListPosts(ctx context.Context, filter models.PostFilter, limit, offset int) ([]models.Post, error)
	CountPosts(ctx context.Context, filter models.PostFilter) (int, error)
}

// CategoryRepository manages the fixed set of post categories.
type CategoryRepository interface {
	SeedCategories(ctx context.Context, names []string) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategoriesByIDs(ctx context.Context, ids []int64) ([]models.Category, error)
}

// SessionRepository persists server-side sessions. Implementations exist for
// PostgreSQL and Redis.
type SessionRepository interface {
	SaveSession(ctx context.Context, session models.Session) error
	FindSession(ctx context.Context, sessionID string) (models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteUserSessions(ctx context.Context, userID int64) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// AvatarFileStorage keeps uploaded avatar images on the file system.
type AvatarFileStorage interface {
	// ReplaceAvatar stores data as the avatar of userID and returns its
	// public reference. The previous file is restored if the write fails.
	ReplaceAvatar(ctx context.Context, previousRef string, userID int64, ext string, data []byte) (string, error)
	DeleteAvatar(ctx context.Context, ref string) error
}

// ErrorClassificator decides whether a failed database call may be retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
