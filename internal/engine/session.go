package engine

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
)

// EndReason records why a session finished.
type EndReason string

const (
	// ReasonStopped means Stop or StopAll ended the session.
	ReasonStopped EndReason = "stopped"

	// ReasonSuperseded means a newer Apply replaced the session.
	ReasonSuperseded EndReason = "superseded"

	// ReasonCompleted means the show finished on its own.
	ReasonCompleted EndReason = "completed"

	// ReasonFailed means the show returned an error.
	ReasonFailed EndReason = "failed"
)

// Session is one run of a show over a set of lights.
type Session struct {
	ID        string
	ShowID    string
	Targets   []canvas.Light
	StartedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	reason  EndReason
	err     error
	endedAt time.Time
}

func newSession(id, showID string, targets []canvas.Light, cancel context.CancelFunc) *Session {
	return &Session{
		ID:        id,
		ShowID:    showID,
		Targets:   slices.Clone(targets),
		StartedAt: time.Now().UTC(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Done is closed once the show loop has returned.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the show loop returns or ctx ends.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the show loop is still active.
func (s *Session) Running() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Err returns the error the show returned, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// EndReason returns why the session ended, or "" while it runs.
func (s *Session) EndReason() EndReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.endedAt.IsZero() {
		return ""
	}
	return s.reason
}

// Record returns a history snapshot of the session.
func (s *Session) Record() SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := SessionRecord{
		ID:         s.ID,
		ShowID:     s.ShowID,
		LightCount: len(s.Targets),
		StartedAt:  s.StartedAt,
	}
	if !s.endedAt.IsZero() {
		ended := s.endedAt
		rec.EndedAt = &ended
		rec.EndReason = s.reason
	}
	return rec
}

// stop cancels the loop. The first reason given wins.
func (s *Session) stop(reason EndReason) {
	s.mu.Lock()
	if s.reason == "" {
		s.reason = reason
	}
	s.mu.Unlock()
	s.cancel()
}

// finish records the loop's result once it has returned.
func (s *Session) finish(err error) EndReason {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
	s.endedAt = time.Now().UTC()
	switch {
	case s.reason != "":
	case err != nil:
		s.reason = ReasonFailed
	default:
		s.reason = ReasonCompleted
	}
	return s.reason
}
