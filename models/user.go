// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// DefaultAvatar is shown in views for users who never uploaded an avatar.
const DefaultAvatar = "default.png"

// User represents a registered blog author.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Username is the display name shown next to posts.
	Username string `json:"username"`

	// Email is the unique login identifier. Stored trimmed.
	Email string `json:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// The plaintext password never reaches the persistence layer.
	PasswordHash string `json:"-"`

	// Avatar is the public reference of the uploaded avatar
	// (e.g. "/uploads/user-42.png"). Empty when no avatar was uploaded.
	Avatar string `json:"avatar,omitempty"`

	// ResetPasswordToken is the pending single-use password reset token.
	ResetPasswordToken string `json:"-"`

	// ResetPasswordExpires is the instant after which ResetPasswordToken is
	// no longer accepted. Zero when no reset is pending.
	ResetPasswordExpires time.Time `json:"-"`

	// DateJoined is the timestamp when the account was created.
	DateJoined time.Time `json:"date_joined"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// AvatarOrDefault returns the avatar reference used by views.
func (u User) AvatarOrDefault() string {
	if u.Avatar == "" {
		return DefaultAvatar
	}
	return u.Avatar
}

// SignUpInput is the raw sign-up form.
type SignUpInput struct {
	Username  string `json:"username" validate:"required,max=30"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Password2 string `json:"password2"`
}

// ProfileInput is the profile update form. Avatar is optional.
type ProfileInput struct {
	Username string  `json:"username" validate:"required,max=30"`
	Email    string  `json:"email" validate:"required,email"`
	Avatar   *Upload `json:"-" validate:"-"`
}

// ChangePasswordInput is the password change form of a signed-in user.
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	Password2   string `json:"password2"`
}

// ResetPasswordInput is the form submitted together with a reset token.
type ResetPasswordInput struct {
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Password2 string `json:"password2" validate:"required"`
}

// ResetToken is an issued password reset token.
type ResetToken struct {
	Token     string
	ExpiresAt time.Time
}

// Upload is an uploaded file kept in memory.
type Upload struct {
	// Filename is the original client-side file name; only its extension is used.
	Filename string
	Data     []byte
}
