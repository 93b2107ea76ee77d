// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Flash kinds understood by the views.
const (
	FlashSuccess = "success_msg"
	FlashError   = "error_msg"
	FlashFailure = "failure_msg"
)

// Flash is a one-time notice shown on the next rendered view.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Session is the server-side state behind the session cookie.
type Session struct {
	// ID is a random UUID. It is never sent to the browser unsigned.
	ID string `json:"id"`

	// UserID is zero for anonymous sessions that only carry flashes.
	UserID int64 `json:"user_id,omitempty"`

	// Flashes are pending notices, removed once read.
	Flashes []Flash `json:"flashes"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TableName returns the name of the database table
// associated with the Session model.
func (s Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Identity is the actor making a request. The zero value is anonymous.
type Identity struct {
	UserID        int64
	Username      string
	Email         string
	Authenticated bool
}

// Anonymous returns the identity of a visitor who is not signed in.
func Anonymous() Identity {
	return Identity{}
}

// IdentityOf builds an authenticated identity for user.
func IdentityOf(user User) Identity {
	return Identity{
		UserID:        user.UserID,
		Username:      user.Username,
		Email:         user.Email,
		Authenticated: true,
	}
}

// RequestContext is created once per request by the session middleware and
// handed to handlers explicitly. It carries the session (if any), the
// resolved identity and the notices popped for this request.
type RequestContext struct {
	Session  *Session
	Identity Identity
	Notices  []Flash
}

// NoticesOf returns messages of the given kind.
func (rc *RequestContext) NoticesOf(kind string) []string {
	var messages []string
	for _, n := range rc.Notices {
		if n.Kind == kind {
			messages = append(messages, n.Message)
		}
	}
	return messages
}
