package audit

import (
	"context"
	"errors"
	"time"
)

// Actions recorded in the audit log.
const (
	ActionApply     = "apply"
	ActionStop      = "stop"
	ActionStopAll   = "stop_all"
	ActionConfigure = "configure"
)

// Sources of control actions.
const (
	SourceAPI     = "api"
	SourceStartup = "startup"
)

// Page size bounds for List.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// ErrInvalidEntry is returned when an entry lacks a required field.
var ErrInvalidEntry = errors.New("audit: invalid entry")

// Entry is one control action.
type Entry struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	ShowID    string         `json:"show_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Actor     string         `json:"actor"`
	Source    string         `json:"source"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Action string
	ShowID string
	Limit  int
	Offset int
}

// Page is one page of List results.
type Page struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository stores audit entries.
type Repository interface {
	Record(ctx context.Context, e *Entry) error
	List(ctx context.Context, f Filter) (*Page, error)
}

// normalize clamps the page bounds.
func (f Filter) normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
