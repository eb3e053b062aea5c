package lightctl

import "errors"

// Domain-specific errors for light control.
var (
	// ErrInvalidColor is returned for a colour with a component out of range.
	ErrInvalidColor = errors.New("lightctl: colour out of range")

	// ErrInvalidLightID is returned when the light ID is empty.
	ErrInvalidLightID = errors.New("lightctl: light id cannot be empty")

	// ErrNoPublisher is returned when the controller has no MQTT publisher.
	ErrNoPublisher = errors.New("lightctl: no publisher configured")
)
