package audio

import "errors"

// Domain-specific errors for level sources.
var (
	// ErrInvalidReading is returned for a payload that is not a level reading.
	ErrInvalidReading = errors.New("audio: invalid level reading")

	// ErrNoSubscriber is returned when an MQTT source has no client.
	ErrNoSubscriber = errors.New("audio: no subscriber configured")

	// ErrAlreadyStarted is returned when a source is started twice.
	ErrAlreadyStarted = errors.New("audio: source already started")
)
