package domain

import "errors"

// Domain errors
var (
	ErrNotFound      = errors.New("document not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotConfigured = errors.New("remote connection not configured")

	// ErrAuthDisabled is the expected degraded mode: the service is
	// reachable but anonymous sign-in is switched off. The engine logs a
	// warning and stays offline instead of retrying.
	ErrAuthDisabled = errors.New("anonymous auth disabled")
)
