package writequeue

import "errors"

// Domain-specific errors for the write coordinator.
var (
	// ErrClosed is reported to handles submitted after Close.
	ErrClosed = errors.New("writequeue: coordinator closed")

	// ErrControllerPanic is reported when the controller panics during a write.
	ErrControllerPanic = errors.New("writequeue: controller panicked")
)
