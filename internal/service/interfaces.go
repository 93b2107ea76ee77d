// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-blog/models"
)

// CredentialService hashes and verifies passwords and manages password
// reset tokens.
type CredentialService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(ctx context.Context, password, hash string) bool
	IssueResetToken(ctx context.Context, user models.User) (models.ResetToken, error)
	// CheckResetToken returns ErrTokenInvalid unless token is held by a user
	// and still valid.
	CheckResetToken(ctx context.Context, token string) error
	// ConsumeResetToken validates input and replaces the password of the
	// token holder. A token can be consumed once.
	ConsumeResetToken(ctx context.Context, token string, input models.ResetPasswordInput) error
}

// AuthService authenticates users and manages server-side sessions and
// their flash notices.
type AuthService interface {
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	// SignIn drops current (when not nil) and starts a new session for user.
	SignIn(ctx context.Context, current *models.Session, user models.User) (models.Session, models.Token, error)
	SignOut(ctx context.Context, session *models.Session) error
	// Resolve builds the request context from a session cookie value. It
	// never fails because of a bad or stale cookie: the visitor is then
	// anonymous.
	Resolve(ctx context.Context, cookie string) (*models.RequestContext, error)
	// AddFlash queues flash on session, creating an anonymous session when
	// session is nil. The returned token must be sent back as the cookie.
	AddFlash(ctx context.Context, session *models.Session, flash models.Flash) (models.Session, models.Token, error)
	// PurgeExpiredSessions removes sessions that expired before now.
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// PostService is the post lifecycle: create, read, update, delete and list.
type PostService interface {
	Create(ctx context.Context, identity models.Identity, input models.PostInput) (models.Post, error)
	Get(ctx context.Context, identity models.Identity, postID string) (models.Post, error)
	// GetForEdit returns the post only to its author.
	GetForEdit(ctx context.Context, identity models.Identity, postID string) (models.Post, error)
	Update(ctx context.Context, identity models.Identity, postID string, patch models.PostPatch) (models.Post, error)
	Delete(ctx context.Context, identity models.Identity, postID string) error
	ListPublic(ctx context.Context, page, limit int) (models.PostPage, error)
	ListByAuthor(ctx context.Context, viewer models.Identity, authorID int64, page, limit int) (models.PostPage, error)
}

// AccountService covers registration, profile and password management and
// account removal.
type AccountService interface {
	SignUp(ctx context.Context, input models.SignUpInput) (models.User, error)
	Profile(ctx context.Context, identity models.Identity) (models.User, error)
	UpdateProfile(ctx context.Context, identity models.Identity, input models.ProfileInput) (models.User, error)
	ChangePassword(ctx context.Context, identity models.Identity, input models.ChangePasswordInput) error
	// ForgotPassword issues a reset token for email and mails a link built
	// from host.
	ForgotPassword(ctx context.Context, email, host string) error
	ResetPassword(ctx context.Context, token string, input models.ResetPasswordInput) error
	CheckResetToken(ctx context.Context, token string) error
	// DeleteAccount removes the posts, the user, the sessions and the avatar
	// of identity, in this order.
	DeleteAccount(ctx context.Context, identity models.Identity) error
}

// CategoryService manages the category catalogue.
type CategoryService interface {
	Seed(ctx context.Context) error
	List(ctx context.Context) ([]models.Category, error)
}

// AppInfoService reports the running version and build metadata.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetBuildInfo(ctx context.Context) models.AppBuildInfo
}
