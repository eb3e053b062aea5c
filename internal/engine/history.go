package engine

import (
	"context"
	"time"
)

// SessionRecord is a persisted summary of one session.
type SessionRecord struct {
	ID         string     `json:"id"`
	ShowID     string     `json:"show_id"`
	LightCount int        `json:"light_count"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	EndReason  EndReason  `json:"end_reason,omitempty"`
}

// SessionRepository stores session history.
type SessionRepository interface {
	// RecordStart inserts a new running session.
	RecordStart(ctx context.Context, rec SessionRecord) error

	// RecordEnd marks a session finished.
	// Returns ErrSessionNotFound if the session was never recorded.
	RecordEnd(ctx context.Context, id string, endedAt time.Time, reason EndReason) error

	// List returns the most recent sessions, newest first.
	List(ctx context.Context, limit int) ([]SessionRecord, error)
}

// EventRecorder receives session lifecycle events for telemetry.
type EventRecorder interface {
	RecordSessionEvent(showID, event string, lights int)
}
