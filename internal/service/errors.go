package service

import "errors"

var (
	// ErrInvalidIdentifier is returned for a resource id that cannot be
	// parsed.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrNotFound is returned when a resource does not exist or must not be
	// revealed to the caller.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied is returned when the caller does not own the resource
	// it tries to change.
	ErrAccessDenied = errors.New("access denied")

	// ErrDuplicateKey is returned together with a ValidationError when an
	// e-mail is already registered.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidCredentials hides whether the e-mail or the password was
	// wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenInvalid is returned for unknown, expired or already used
	// password reset tokens.
	ErrTokenInvalid = errors.New("password reset token is invalid or has expired")

	// ErrUnauthenticated is returned when an operation needs a signed-in user.
	ErrUnauthenticated = errors.New("authentication required")

	ErrTokenCreationFailed   = errors.New("session token creation failed")
	ErrMailNotSent           = errors.New("e-mail could not be sent")
	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)
