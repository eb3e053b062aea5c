package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/show"
)

// historyTimeout bounds each session history write.
const historyTimeout = 2 * time.Second

// Writer is what the engine needs from the write coordinator.
type Writer interface {
	show.Writer

	// CancelAll drops every pending write and returns how many were dropped.
	CancelAll() int
}

// Logger defines the logging interface used by the Engine.
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

// Engine runs one show session at a time.
//
// Thread Safety: all methods are safe for concurrent use. Apply and Stop
// calls are serialised.
type Engine struct {
	registry *show.Registry
	writer   Writer
	history  SessionRepository
	logger   Logger

	preview show.UpdateFunc
	events  EventRecorder

	// opMu serialises Apply and Stop so a session is fully replaced before
	// the next operation starts.
	opMu sync.Mutex

	mu      sync.RWMutex
	current *Session
}

// New creates an engine.
//
// Parameters:
//   - registry: Show catalogue used by Apply to resolve ids
//   - writer: Destination for computed colours (usually the write coordinator)
//   - history: Session history store (may be nil)
//   - logger: Logger instance (may be nil)
func New(registry *show.Registry, writer Writer, history SessionRepository, logger Logger) *Engine {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Engine{
		registry: registry,
		writer:   writer,
		history:  history,
		logger:   logger,
	}
}

// SetPreview sets the callback that receives every computed colour.
// Call it before the first Apply.
func (e *Engine) SetPreview(fn show.UpdateFunc) {
	e.preview = fn
}

// SetEventRecorder sets the telemetry sink for session events.
// Call it before the first Apply.
func (e *Engine) SetEventRecorder(r EventRecorder) {
	e.events = r
}

// Registry returns the show catalogue the engine resolves ids against.
func (e *Engine) Registry() *show.Registry {
	return e.registry
}

// Apply starts the show registered under showID on lights.
//
// Returns:
//   - *Session: The new running session
//   - error: show.ErrShowNotFound, ErrNoLights, ErrDuplicateLight, or a
//     context error if ctx ended while waiting for the old session
func (e *Engine) Apply(ctx context.Context, showID string, lights []canvas.Light) (*Session, error) {
	s, err := e.registry.Get(showID)
	if err != nil {
		return nil, err
	}
	return e.ApplyShow(ctx, s, lights)
}

// ApplyShow starts s on lights, replacing any running session.
//
// The old session is cancelled and ApplyShow waits for its loop to exit
// before the new one starts. If ctx ends during that wait the old session
// stays cancelled and no new session is started.
func (e *Engine) ApplyShow(ctx context.Context, s show.Show, lights []canvas.Light) (*Session, error) {
	if len(lights) == 0 {
		return nil, ErrNoLights
	}
	if err := checkUnique(lights); err != nil {
		return nil, err
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	if err := e.stopCurrent(ctx, ReasonSuperseded); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	sess := newSession(uuid.NewString(), s.Describe().ID, lights, cancel)

	e.recordStart(ctx, sess)

	e.mu.Lock()
	e.current = sess
	e.mu.Unlock()

	go e.run(runCtx, s, sess)

	e.logger.Info("show session started",
		"session_id", sess.ID,
		"show_id", sess.ShowID,
		"lights", len(sess.Targets),
	)
	return sess, nil
}

// Stop cancels the running session and waits for its loop to exit.
// It returns the stopped session, or nil if nothing was running.
// Writes already queued in the coordinator are left alone.
func (e *Engine) Stop(ctx context.Context) (*Session, error) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.RLock()
	sess := e.current
	e.mu.RUnlock()

	if err := e.stopCurrent(ctx, ReasonStopped); err != nil {
		return sess, err
	}
	return sess, nil
}

// StopAll stops the running session and cancels every pending write.
// It returns the stopped session and the number of writes dropped.
func (e *Engine) StopAll(ctx context.Context) (*Session, int, error) {
	sess, err := e.Stop(ctx)
	dropped := e.writer.CancelAll()
	return sess, dropped, err
}

// Current returns the running session, or nil.
func (e *Engine) Current() *Session {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.current == nil || !e.current.Running() {
		return nil
	}
	return e.current
}

// History returns recent sessions, newest first. Without a repository it
// returns an empty list.
func (e *Engine) History(ctx context.Context, limit int) ([]SessionRecord, error) {
	if e.history == nil {
		return []SessionRecord{}, nil
	}
	return e.history.List(ctx, limit)
}

// stopCurrent cancels the current session and waits for it.
// Caller must hold e.opMu.
func (e *Engine) stopCurrent(ctx context.Context, reason EndReason) error {
	e.mu.Lock()
	sess := e.current
	e.current = nil
	e.mu.Unlock()

	if sess == nil {
		return nil
	}

	sess.stop(reason)
	if err := sess.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for session %s to stop: %w", sess.ID, err)
	}
	return nil
}

// run drives the show loop for one session.
func (e *Engine) run(ctx context.Context, s show.Show, sess *Session) {
	defer close(sess.done)
	defer sess.cancel()

	err := e.runShow(ctx, s, sess)
	reason := sess.finish(err)

	if err != nil {
		e.logger.Warn("show session failed",
			"session_id", sess.ID,
			"show_id", sess.ShowID,
			"error", err,
		)
	} else {
		e.logger.Info("show session ended",
			"session_id", sess.ID,
			"show_id", sess.ShowID,
			"reason", string(reason),
		)
	}
	e.recordEnd(sess, reason)
}

// runShow calls Run with panic recovery so a faulty show ends its session
// instead of the process.
func (e *Engine) runShow(ctx context.Context, s show.Show, sess *Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic in show loop",
				"session_id", sess.ID,
				"show_id", sess.ShowID,
				"panic", r,
			)
			err = fmt.Errorf("show %s panicked: %v", sess.ShowID, r)
		}
	}()

	return s.Run(ctx, sess.Targets, show.Output{
		Writer:   e.writer,
		OnUpdate: e.preview,
		Logger:   e.logger,
	})
}

func (e *Engine) recordStart(ctx context.Context, sess *Session) {
	if e.events != nil {
		e.events.RecordSessionEvent(sess.ShowID, "started", len(sess.Targets))
	}
	if e.history == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()
	if err := e.history.RecordStart(ctx, sess.Record()); err != nil {
		e.logger.Warn("recording session start failed",
			"session_id", sess.ID,
			"error", err,
		)
	}
}

func (e *Engine) recordEnd(sess *Session, reason EndReason) {
	if e.events != nil {
		e.events.RecordSessionEvent(sess.ShowID, string(reason), len(sess.Targets))
	}
	if e.history == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	rec := sess.Record()
	if err := e.history.RecordEnd(ctx, sess.ID, *rec.EndedAt, reason); err != nil {
		e.logger.Warn("recording session end failed",
			"session_id", sess.ID,
			"error", err,
		)
	}
}

func checkUnique(lights []canvas.Light) error {
	seen := make(map[string]struct{}, len(lights))
	for _, l := range lights {
		if _, ok := seen[l.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateLight, l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	return nil
}
