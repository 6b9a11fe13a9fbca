// Package common defines shared constants and sentinel errors used across
// the server and the terminal client. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Transport errors: the remote API could not be reached or failed
	// with a server-side error.
	ErrUnavailable = errors.New("service unavailable")

	// Session lifecycle errors.
	ErrSessionNotFound = errors.New("session not found")
)
