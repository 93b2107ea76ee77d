// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys,
// HTTP response writing, HTTP client initialization, session token
// generation and validation, and other common operations.
package utils

import (
	"context"

	"github.com/MKhiriev/go-blog/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// RequestCtxKey is the key under which the session middleware stores the
// per-request [models.RequestContext].
var RequestCtxKey = contextKey("requestContext")

// WithRequestContext returns a copy of ctx carrying rc.
func WithRequestContext(ctx context.Context, rc *models.RequestContext) context.Context {
	return context.WithValue(ctx, RequestCtxKey, rc)
}

// GetRequestContext retrieves the request context stored by the session
// middleware.
//
// Returns ok == false when the value is missing or has an unexpected type.
func GetRequestContext(ctx context.Context) (*models.RequestContext, bool) {
	rc, ok := ctx.Value(RequestCtxKey).(*models.RequestContext)
	if !ok || rc == nil {
		return nil, false
	}
	return rc, true
}

// IdentityFromContext returns the identity of the request, or an anonymous
// identity when no request context is present.
func IdentityFromContext(ctx context.Context) models.Identity {
	rc, ok := GetRequestContext(ctx)
	if !ok {
		return models.Anonymous()
	}
	return rc.Identity
}
