package writequeue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/luminary-core/internal/color"
)

// writeCall records one controller invocation.
type writeCall struct {
	key   string
	color color.HSB
	at    time.Time
}

// mockController captures writes and can block or fail on demand.
type mockController struct {
	mu       sync.Mutex
	calls    []writeCall
	err      error
	active   int
	maxAlive int

	entered chan string
	release chan struct{}
}

func (m *mockController) SetColor(ctx context.Context, key string, c color.HSB) error {
	m.mu.Lock()
	m.calls = append(m.calls, writeCall{key: key, color: c, at: time.Now()})
	m.active++
	if m.active > m.maxAlive {
		m.maxAlive = m.active
	}
	entered, release, err := m.entered, m.release, m.err
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.active--
		m.mu.Unlock()
	}()

	if entered != nil {
		entered <- key
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *mockController) getCalls() []writeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]writeCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *mockController) maxConcurrent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxAlive
}

// mockRecorder captures recorded outcomes.
type mockRecorder struct {
	mu       sync.Mutex
	statuses map[string]int
}

func (r *mockRecorder) RecordWrite(_, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.statuses == nil {
		r.statuses = make(map[string]int)
	}
	r.statuses[status]++
}

func (r *mockRecorder) count(status Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[string(status)]
}

func waitResult(t *testing.T, h *Handle) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	r := h.Wait(ctx)
	if r.Status == StatusPending {
		t.Fatalf("handle for %s did not resolve: %v", h.Key(), r.Err)
	}
	return r
}

func TestSetColor_CoalescesBurst(t *testing.T) {
	ctrl := &mockController{}
	c := New(ctrl, Config{Debounce: 100 * time.Millisecond})

	c1 := color.HSB{Hue: 10, Saturation: 100, Brightness: 100}
	c2 := color.HSB{Hue: 20, Saturation: 100, Brightness: 100}
	c3 := color.HSB{Hue: 30, Saturation: 100, Brightness: 100}

	start := time.Now()
	h1 := c.SetColor("k", c1)
	time.Sleep(30 * time.Millisecond)
	h2 := c.SetColor("k", c2)
	time.Sleep(30 * time.Millisecond)
	h3 := c.SetColor("k", c3)

	if r := waitResult(t, h3); r.Status != StatusWritten {
		t.Fatalf("final write status = %s, want written", r.Status)
	}

	calls := ctrl.getCalls()
	if len(calls) != 1 {
		t.Fatalf("controller calls = %d, want 1", len(calls))
	}
	if calls[0].color != c3 {
		t.Errorf("written colour = %+v, want %+v", calls[0].color, c3)
	}
	if elapsed := calls[0].at.Sub(start); elapsed < 160*time.Millisecond {
		t.Errorf("write issued after %v, want >= 160ms", elapsed)
	}

	for i, h := range []*Handle{h1, h2} {
		if r := h.Result(); r.Status != StatusSuperseded {
			t.Errorf("handle %d status = %s, want superseded", i+1, r.Status)
		}
	}
}

func TestSetColor_KeysDebounceIndependently(t *testing.T) {
	ctrl := &mockController{}
	c := New(ctrl, Config{Debounce: 50 * time.Millisecond})

	var last []*Handle
	for _, key := range []string{"A", "B"} {
		var h *Handle
		for i := 0; i < 5; i++ {
			h = c.SetColor(key, color.HSB{Hue: float64(i * 10), Saturation: 50, Brightness: 50})
		}
		last = append(last, h)
	}

	for _, h := range last {
		if r := waitResult(t, h); !r.OK() {
			t.Fatalf("write for %s = %s, want written", h.Key(), r.Status)
		}
	}

	calls := ctrl.getCalls()
	if len(calls) != 2 {
		t.Fatalf("controller calls = %d, want 2", len(calls))
	}
	perKey := map[string]color.HSB{}
	for _, call := range calls {
		perKey[call.key] = call.color
	}
	for _, key := range []string{"A", "B"} {
		if perKey[key].Hue != 40 {
			t.Errorf("key %s written with hue %v, want 40", key, perKey[key].Hue)
		}
	}
}

func TestCancel(t *testing.T) {
	ctrl := &mockController{}
	c := New(ctrl, Config{Debounce: 30 * time.Millisecond})

	h := c.SetColor("k", color.Red)
	keep := c.SetColor("other", color.Blue)

	if !c.Cancel("k") {
		t.Fatal("Cancel returned false for a pending key")
	}
	if c.Cancel("k") {
		t.Error("second Cancel returned true")
	}
	if r := h.Result(); r.Status != StatusCancelled {
		t.Errorf("cancelled handle status = %s, want cancelled", r.Status)
	}

	waitResult(t, keep)
	time.Sleep(50 * time.Millisecond)

	for _, call := range ctrl.getCalls() {
		if call.key == "k" {
			t.Error("cancelled key was written")
		}
	}
}

func TestCancelAll(t *testing.T) {
	ctrl := &mockController{}
	rec := &mockRecorder{}
	c := New(ctrl, Config{Debounce: time.Second})
	c.SetRecorder(rec)

	handles := []*Handle{
		c.SetColor("a", color.Red),
		c.SetColor("b", color.Green),
		c.SetColor("c", color.Blue),
	}
	if got := c.Pending(); got != 3 {
		t.Fatalf("Pending() = %d, want 3", got)
	}

	if n := c.CancelAll(); n != 3 {
		t.Errorf("CancelAll() = %d, want 3", n)
	}
	if got := c.Pending(); got != 0 {
		t.Errorf("Pending() after CancelAll = %d, want 0", got)
	}
	for _, h := range handles {
		if r := h.Result(); r.Status != StatusCancelled {
			t.Errorf("%s status = %s, want cancelled", h.Key(), r.Status)
		}
	}
	if got := rec.count(StatusCancelled); got != 3 {
		t.Errorf("recorded cancellations = %d, want 3", got)
	}
	if len(ctrl.getCalls()) != 0 {
		t.Error("controller called after CancelAll")
	}
}

func TestSetColor_SerialisesInFlightWrites(t *testing.T) {
	ctrl := &mockController{
		entered: make(chan string, 4),
		release: make(chan struct{}),
	}
	c := New(ctrl, Config{Debounce: 10 * time.Millisecond})

	h1 := c.SetColor("k", color.Red)
	select {
	case <-ctrl.entered:
	case <-time.After(time.Second):
		t.Fatal("first write never reached the controller")
	}

	// Due while the first write is still running: must wait as pending.
	h2 := c.SetColor("k", color.Green)
	time.Sleep(40 * time.Millisecond)
	if got := len(ctrl.getCalls()); got != 1 {
		t.Fatalf("controller calls while first in flight = %d, want 1", got)
	}
	if got := c.Pending(); got != 1 {
		t.Fatalf("Pending() = %d, want 1", got)
	}

	// A newer colour still supersedes the waiting one.
	h3 := c.SetColor("k", color.Blue)
	if r := h2.Result(); r.Status != StatusSuperseded {
		t.Errorf("waiting write status = %s, want superseded", r.Status)
	}

	time.Sleep(30 * time.Millisecond)
	close(ctrl.release)

	if r := waitResult(t, h1); !r.OK() {
		t.Errorf("first write = %s, want written", r.Status)
	}
	if r := waitResult(t, h3); !r.OK() {
		t.Errorf("last write = %s, want written", r.Status)
	}

	calls := ctrl.getCalls()
	if len(calls) != 2 {
		t.Fatalf("controller calls = %d, want 2", len(calls))
	}
	if calls[1].color != color.Blue {
		t.Errorf("second write colour = %+v, want blue", calls[1].color)
	}
	if got := ctrl.maxConcurrent(); got != 1 {
		t.Errorf("max concurrent writes = %d, want 1", got)
	}
}

func TestSetColor_ControllerFailure(t *testing.T) {
	errDevice := errors.New("device unreachable")
	ctrl := &mockController{err: errDevice}
	rec := &mockRecorder{}
	c := New(ctrl, Config{Debounce: 5 * time.Millisecond})
	c.SetRecorder(rec)

	r := waitResult(t, c.SetColor("k", color.Red))
	if r.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", r.Status)
	}
	if !errors.Is(r.Err, errDevice) {
		t.Errorf("err = %v, want %v", r.Err, errDevice)
	}
	if got := rec.count(StatusFailed); got != 1 {
		t.Errorf("recorded failures = %d, want 1", got)
	}

	// The coordinator keeps working after a failure.
	ctrl.mu.Lock()
	ctrl.err = nil
	ctrl.mu.Unlock()
	if r := waitResult(t, c.SetColor("k", color.Blue)); !r.OK() {
		t.Errorf("write after failure = %s, want written", r.Status)
	}
}

func TestSetColor_WriteTimeout(t *testing.T) {
	ctrl := &mockController{release: make(chan struct{})}
	c := New(ctrl, Config{Debounce: 5 * time.Millisecond, WriteTimeout: 20 * time.Millisecond})

	r := waitResult(t, c.SetColor("k", color.Red))
	if r.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", r.Status)
	}
	if !errors.Is(r.Err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", r.Err)
	}
}

func TestSetColor_RecoversControllerPanic(t *testing.T) {
	ctrl := ControllerFunc(func(context.Context, string, color.HSB) error {
		panic("boom")
	})
	c := New(ctrl, Config{Debounce: 5 * time.Millisecond})

	r := waitResult(t, c.SetColor("k", color.Red))
	if !errors.Is(r.Err, ErrControllerPanic) {
		t.Errorf("err = %v, want ErrControllerPanic", r.Err)
	}
}

func TestSetColor_ClampsOutOfRange(t *testing.T) {
	ctrl := &mockController{}
	c := New(ctrl, Config{Debounce: 5 * time.Millisecond})

	waitResult(t, c.SetColor("k", color.HSB{Hue: 720, Saturation: -5, Brightness: 250}))

	calls := ctrl.getCalls()
	if len(calls) != 1 {
		t.Fatalf("controller calls = %d, want 1", len(calls))
	}
	if !calls[0].color.Valid() {
		t.Errorf("controller received out-of-range colour %+v", calls[0].color)
	}
}

func TestClose(t *testing.T) {
	ctrl := &mockController{}
	c := New(ctrl, Config{Debounce: time.Second})

	pending := c.SetColor("k", color.Red)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if r := pending.Result(); r.Status != StatusCancelled {
		t.Errorf("pending write after Close = %s, want cancelled", r.Status)
	}

	r := c.SetColor("k", color.Blue).Result()
	if r.Status != StatusCancelled || !errors.Is(r.Err, ErrClosed) {
		t.Errorf("SetColor after Close = %+v, want cancelled with ErrClosed", r)
	}
}

func TestHandle_WaitHonoursContext(t *testing.T) {
	c := New(&mockController{}, Config{Debounce: time.Second})
	h := c.SetColor("k", color.Red)
	defer c.CancelAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	r := h.Wait(ctx)
	if r.Status != StatusPending || !errors.Is(r.Err, context.DeadlineExceeded) {
		t.Errorf("Wait = %+v, want pending with deadline exceeded", r)
	}
}
