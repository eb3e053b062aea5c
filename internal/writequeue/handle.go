package writequeue

import (
	"context"
	"sync"

	"github.com/nerrad567/luminary-core/internal/color"
)

// Status is the outcome of a submitted write.
type Status string

const (
	// StatusPending means the write has not resolved yet.
	StatusPending Status = "pending"

	// StatusWritten means the controller accepted the colour.
	StatusWritten Status = "written"

	// StatusFailed means the controller returned an error or timed out.
	StatusFailed Status = "failed"

	// StatusSuperseded means a newer write for the same light replaced this one.
	StatusSuperseded Status = "superseded"

	// StatusCancelled means Cancel, CancelAll or Close dropped this write.
	StatusCancelled Status = "cancelled"
)

// Result is the resolved outcome of a write.
type Result struct {
	Status Status
	Err    error
}

// OK reports whether the colour reached the controller successfully.
func (r Result) OK() bool {
	return r.Status == StatusWritten
}

// Handle tracks one submitted write.
type Handle struct {
	key   string
	color color.HSB

	once   sync.Once
	done   chan struct{}
	result Result
}

func newHandle(key string, c color.HSB) *Handle {
	return &Handle{key: key, color: c, done: make(chan struct{})}
}

// Completed returns a handle that is already resolved with r.
func Completed(key string, c color.HSB, r Result) *Handle {
	h := newHandle(key, c)
	h.resolve(r)
	return h
}

// Key returns the light id the write targets.
func (h *Handle) Key() string { return h.key }

// Color returns the (clamped) colour that was submitted.
func (h *Handle) Color() color.HSB { return h.color }

// Done is closed once the write resolves.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Result returns the outcome, or StatusPending if unresolved.
func (h *Handle) Result() Result {
	select {
	case <-h.done:
		return h.result
	default:
		return Result{Status: StatusPending}
	}
}

// Wait blocks until the write resolves or ctx ends. When ctx ends first the
// returned result has StatusPending and the context error.
func (h *Handle) Wait(ctx context.Context) Result {
	select {
	case <-h.done:
		return h.result
	case <-ctx.Done():
		return Result{Status: StatusPending, Err: ctx.Err()}
	}
}

// resolve sets the outcome. Only the first call has any effect.
func (h *Handle) resolve(r Result) bool {
	resolved := false
	h.once.Do(func() {
		h.result = r
		close(h.done)
		resolved = true
	})
	return resolved
}
