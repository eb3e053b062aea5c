package auth

import "errors"

// Domain-specific errors for token handling.
var (
	// ErrTokenInvalid is returned for a token that fails parsing or validation.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrMissingSecret is returned when signing or verifying without a secret.
	ErrMissingSecret = errors.New("auth: signing secret is empty")

	// ErrInsufficientScope is returned when a valid token lacks a scope.
	ErrInsufficientScope = errors.New("auth: insufficient scope")
)
