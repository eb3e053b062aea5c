package show

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
	"github.com/nerrad567/luminary-core/internal/sequence"
	"github.com/nerrad567/luminary-core/internal/writequeue"
)

// Info describes a show for listings.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Show is a colour animation over a set of lights.
type Show interface {
	// Describe returns the show's catalogue entry.
	Describe() Info

	// PreviewColor returns a representative colour for a light at time t
	// into the show, or false if the show has no static preview.
	PreviewColor(lightID string, pos canvas.Point, t time.Duration) (color.HSB, bool)

	// Run drives the show until it finishes or ctx is cancelled. It returns
	// nil on cancellation.
	Run(ctx context.Context, lights []canvas.Light, out Output) error
}

// Sequenced is implemented by shows that traverse lights in order.
type Sequenced interface {
	Show
	OrderingStrategy() sequence.Strategy
	Sequence(lights []canvas.Light) []string
}

// Configurable exposes show parameters in a generic form for editing.
type Configurable interface {
	// Settings returns a snapshot of the current parameters.
	Settings() any

	// UpdateSettings merges a JSON document into the current parameters.
	// Fields not present keep their value. The result is validated before
	// it is applied.
	UpdateSettings(data []byte) error
}

// Writer accepts colours for delivery to lights.
type Writer interface {
	SetColor(lightID string, c color.HSB) *writequeue.Handle
}

// UpdateFunc receives every colour a show computes, before it is written.
// A nil colour clears the preview for that light.
type UpdateFunc func(lightID string, c *color.HSB)

// Logger defines the logging interface used by shows.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Output is where a running show sends its colours.
type Output struct {
	Writer   Writer
	OnUpdate UpdateFunc
	Logger   Logger
}

// prepare fills defaults and checks the output is usable.
func (o *Output) prepare() error {
	if o.Writer == nil {
		return ErrNoWriter
	}
	if o.Logger == nil {
		o.Logger = noopLogger{}
	}
	return nil
}

// emit clamps c, reports it for preview and submits it for writing.
func (o *Output) emit(lightID string, c color.HSB) *writequeue.Handle {
	c = c.Clamp()
	if o.OnUpdate != nil {
		preview := c
		o.OnUpdate(lightID, &preview)
	}
	return o.Writer.SetColor(lightID, c)
}

// awaitAll waits for every handle to resolve. It returns false if ctx ended
// first.
func awaitAll(ctx context.Context, handles []*writequeue.Handle) bool {
	for _, h := range handles {
		select {
		case <-h.Done():
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// await waits for one handle. It returns false if ctx ended first.
func await(ctx context.Context, h *writequeue.Handle) bool {
	select {
	case <-h.Done():
		return true
	case <-ctx.Done():
		return false
	}
}

// sleep pauses for d. It returns false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// seconds converts a duration in seconds to time.Duration, saturating at
// maxIntervalSeconds. NaN and non-positive values give 0.
func seconds(s float64) time.Duration {
	if !(s > 0) {
		return 0
	}
	return time.Duration(min(s, maxIntervalSeconds) * float64(time.Second))
}

// normalisedIndex maps index i of n onto [0, 1].
func normalisedIndex(i, n int) float64 {
	return float64(i) / float64(max(1, n-1))
}

// newRand returns a randomly seeded generator.
func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// uniform samples [lo, hi].
func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
