// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors of the transport layer. Callers can match against them
// with [errors.Is].
var (
	// ErrInvalidForm is returned when a form body cannot be parsed.
	ErrInvalidForm = errors.New("invalid form data")

	// ErrAvatarTooLarge is returned when an uploaded avatar exceeds
	// maxAvatarSize.
	ErrAvatarTooLarge = errors.New("avatar is too large")
)

// User facing notices.
const (
	noticeInvalidID      = "invalid identifier"
	noticeNotFound       = "the requested post was not found"
	noticeAccessDenied   = "you are not allowed to change this post"
	noticeTokenInvalid   = "Password reset token is invalid or has expired."
	noticeBadCredentials = "Incorrect email or password. Try again."
	noticeMailNotSent    = "the reset email could not be sent, try again later"
	noticeSignUpFailed   = "Unable to create account. Follow the instructions."
)
