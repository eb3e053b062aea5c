package engine

import "errors"

// Domain-specific errors for the show engine.
var (
	// ErrNoLights is returned when a show is applied to an empty light set.
	ErrNoLights = errors.New("engine: no lights")

	// ErrDuplicateLight is returned when a light id appears twice in one apply.
	ErrDuplicateLight = errors.New("engine: duplicate light id")

	// ErrSessionNotFound is returned when a session record does not exist.
	ErrSessionNotFound = errors.New("engine: session not found")
)
