package show

import "errors"

// Domain-specific errors for shows.
var (
	// ErrShowNotFound is returned when a show id is not registered.
	ErrShowNotFound = errors.New("show: not found")

	// ErrInvalidConfig is returned when show parameters fail validation.
	ErrInvalidConfig = errors.New("show: invalid config")

	// ErrNoWriter is returned when Run is called without an output writer.
	ErrNoWriter = errors.New("show: no writer")

	// ErrNoLevelSource is returned by sound-reactive shows with no audio input.
	ErrNoLevelSource = errors.New("show: no level source")
)
