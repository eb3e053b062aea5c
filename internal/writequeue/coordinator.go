package writequeue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/luminary-core/internal/color"
)

// Default timing values.
const (
	DefaultDebounce     = 100 * time.Millisecond
	DefaultWriteTimeout = 5 * time.Second
)

// Controller performs the actual colour write to a light.
type Controller interface {
	// SetColor sends c to the light. It must honour ctx cancellation.
	SetColor(ctx context.Context, lightID string, c color.HSB) error
}

// ControllerFunc adapts a function to the Controller interface.
type ControllerFunc func(ctx context.Context, lightID string, c color.HSB) error

// SetColor calls f.
func (f ControllerFunc) SetColor(ctx context.Context, lightID string, c color.HSB) error {
	return f(ctx, lightID, c)
}

// Recorder receives write outcomes for telemetry.
type Recorder interface {
	RecordWrite(lightID, status string, latency time.Duration)
}

// Logger defines the logging interface used by the Coordinator.
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

// Config holds coordinator timing.
type Config struct {
	// Debounce is how long a write waits for a newer one before firing.
	Debounce time.Duration

	// WriteTimeout bounds each controller call.
	WriteTimeout time.Duration
}

// entry is a write waiting for its debounce window to close.
type entry struct {
	key        string
	color      color.HSB
	deadline   time.Time
	generation uint64
	timer      *time.Timer
	handle     *Handle

	// due is set when the timer fired while another write for the key was
	// still in flight.
	due bool
}

type keyState struct {
	pending *entry
	writing bool
}

// Coordinator debounces writes per light. All methods are safe for
// concurrent use.
type Coordinator struct {
	ctrl     Controller
	cfg      Config
	logger   Logger
	recorder Recorder

	mu         sync.Mutex
	keys       map[string]*keyState
	generation uint64
	closed     bool

	inflight sync.WaitGroup
}

// New creates a Coordinator writing through ctrl. Zero durations in cfg
// fall back to DefaultDebounce and DefaultWriteTimeout.
func New(ctrl Controller, cfg Config) *Coordinator {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	return &Coordinator{
		ctrl:   ctrl,
		cfg:    cfg,
		logger: noopLogger{},
		keys:   make(map[string]*keyState),
	}
}

// SetLogger sets the logger for the coordinator.
func (c *Coordinator) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	c.logger = logger
}

// SetRecorder sets the telemetry recorder. Nil disables recording.
func (c *Coordinator) SetRecorder(r Recorder) {
	c.recorder = r
}

// SetColor schedules a write of col to the light identified by key.
//
// The colour is clamped into range before it is stored. Any write still
// pending for key is replaced and its handle resolves as superseded.
func (c *Coordinator) SetColor(key string, col color.HSB) *Handle {
	col = col.Clamp()
	h := newHandle(key, col)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		h.resolve(Result{Status: StatusCancelled, Err: ErrClosed})
		return h
	}

	ks := c.keys[key]
	if ks == nil {
		ks = &keyState{}
		c.keys[key] = ks
	}

	var replaced *entry
	if ks.pending != nil {
		replaced = ks.pending
		replaced.timer.Stop()
	}

	c.generation++
	gen := c.generation
	e := &entry{
		key:        key,
		color:      col,
		deadline:   time.Now().Add(c.cfg.Debounce),
		generation: gen,
		handle:     h,
	}
	ks.pending = e
	e.timer = time.AfterFunc(c.cfg.Debounce, func() { c.fire(key, gen) })
	c.mu.Unlock()

	if replaced != nil {
		c.finish(replaced, Result{Status: StatusSuperseded}, 0)
	}
	return h
}

// Cancel drops the pending write for key, if any. It reports whether a
// write was dropped.
func (c *Coordinator) Cancel(key string) bool {
	c.mu.Lock()
	e := c.dropPendingLocked(key)
	c.mu.Unlock()

	if e == nil {
		return false
	}
	c.finish(e, Result{Status: StatusCancelled}, 0)
	return true
}

// CancelAll drops every pending write and returns how many were dropped.
func (c *Coordinator) CancelAll() int {
	c.mu.Lock()
	dropped := make([]*entry, 0, len(c.keys))
	for key := range c.keys {
		if e := c.dropPendingLocked(key); e != nil {
			dropped = append(dropped, e)
		}
	}
	c.mu.Unlock()

	for _, e := range dropped {
		c.finish(e, Result{Status: StatusCancelled}, 0)
	}
	if len(dropped) > 0 {
		c.logger.Debug("pending light writes cancelled", "count", len(dropped))
	}
	return len(dropped)
}

// Pending returns the number of lights with a write waiting to fire.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, ks := range c.keys {
		if ks.pending != nil {
			n++
		}
	}
	return n
}

// Close cancels pending writes, rejects new ones and waits for writes
// already in flight to finish or for ctx to end.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.CancelAll()

	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight writes: %w", ctx.Err())
	}
}

// dropPendingLocked removes and returns the pending entry for key.
// Caller must hold c.mu.
func (c *Coordinator) dropPendingLocked(key string) *entry {
	ks := c.keys[key]
	if ks == nil || ks.pending == nil {
		return nil
	}
	e := ks.pending
	e.timer.Stop()
	ks.pending = nil
	if !ks.writing {
		delete(c.keys, key)
	}
	return e
}

// takeLocked moves the pending entry to the in-flight slot.
// Caller must hold c.mu.
func (c *Coordinator) takeLocked(ks *keyState) *entry {
	e := ks.pending
	ks.pending = nil
	ks.writing = true
	c.inflight.Add(1)
	return e
}

// fire runs when the debounce timer for generation gen of key expires.
func (c *Coordinator) fire(key string, gen uint64) {
	c.mu.Lock()
	ks := c.keys[key]
	if ks == nil || ks.pending == nil || ks.pending.generation != gen {
		// Superseded or cancelled after the timer started firing.
		c.mu.Unlock()
		return
	}
	if ks.writing {
		ks.pending.due = true
		c.mu.Unlock()
		return
	}
	e := c.takeLocked(ks)
	c.mu.Unlock()

	for e != nil {
		c.write(e)

		c.mu.Lock()
		ks.writing = false
		e = nil
		switch {
		case ks.pending != nil && ks.pending.due:
			e = c.takeLocked(ks)
		case ks.pending == nil:
			delete(c.keys, key)
		}
		c.mu.Unlock()
	}
}

// write performs one controller call and resolves the entry's handle.
func (c *Coordinator) write(e *entry) {
	defer c.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := c.callController(ctx, e)
	latency := time.Since(start)

	if err != nil {
		c.logger.Warn("light write failed",
			"light_id", e.key,
			"error", err,
			"latency_ms", latency.Milliseconds(),
		)
		c.finish(e, Result{Status: StatusFailed, Err: err}, latency)
		return
	}

	c.logger.Debug("light write complete",
		"light_id", e.key,
		"hue", e.color.Hue,
		"saturation", e.color.Saturation,
		"brightness", e.color.Brightness,
		"latency_ms", latency.Milliseconds(),
	)
	c.finish(e, Result{Status: StatusWritten}, latency)
}

// callController invokes the controller, converting a panic into an error
// so one misbehaving device cannot take down the timer goroutine.
func (c *Coordinator) callController(ctx context.Context, e *entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic in light controller",
				"light_id", e.key,
				"panic", r,
			)
			err = fmt.Errorf("%w: %v", ErrControllerPanic, r)
		}
	}()
	return c.ctrl.SetColor(ctx, e.key, e.color)
}

func (c *Coordinator) finish(e *entry, r Result, latency time.Duration) {
	if !e.handle.resolve(r) {
		return
	}
	if c.recorder != nil {
		c.recorder.RecordWrite(e.key, string(r.Status), latency)
	}
}
