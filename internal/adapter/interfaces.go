// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides outbound transport abstractions of go-blog.
//
// The primary abstraction is [MailAdapter], which decouples the account flows
// from the way e-mails leave the server. The package ships an HTTP relay
// implementation ([NewHTTPMailAdapter]) and a log-only implementation
// ([NewLogMailAdapter]) used when no relay is configured.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-blog/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/mail_adapter_mock.go -package=mock

// MailAdapter delivers plain-text e-mails.
type MailAdapter interface {
	// Send delivers email. An empty From is replaced by the configured
	// sender address. Returns an error if the message was not accepted.
	Send(ctx context.Context, email models.Email) error
}
