package influxdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/luminary-core/internal/infrastructure/config"
)

// recordingWriter captures points in line protocol form.
type recordingWriter struct {
	mu      sync.Mutex
	lines   []string
	flushes int
}

func (w *recordingWriter) WritePoint(p *write.Point) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = append(w.lines, write.PointToLineProtocol(p, time.Nanosecond))
}

func (w *recordingWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushes++
}

func (w *recordingWriter) snapshot() ([]string, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.lines...), w.flushes
}

type fakePinger struct {
	healthy bool
	err     error
}

func (p fakePinger) Ping(context.Context) (bool, error) {
	return p.healthy, p.err
}

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_UnhealthyServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := Connect(config.InfluxDBConfig{
		Enabled: true,
		URL:     srv.URL,
		Token:   "token",
		Org:     "luminary",
		Bucket:  "telemetry",
	})
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestWriteLightWrite(t *testing.T) {
	w := &recordingWriter{}
	c := newClient(fakePinger{healthy: true}, w)

	c.WriteLightWrite("light-1", "written", 12500*time.Microsecond)

	lines, _ := w.snapshot()
	if len(lines) != 1 {
		t.Fatalf("points = %d, want 1", len(lines))
	}
	line := lines[0]
	for _, want := range []string{
		"light_writes,",
		"light_id=light-1",
		"status=written",
		"latency_ms=12.5",
		"count=1i",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestWriteSessionEvent(t *testing.T) {
	w := &recordingWriter{}
	c := newClient(fakePinger{healthy: true}, w)

	c.RecordSessionEvent("fire-effect", "started", 6)

	lines, _ := w.snapshot()
	if len(lines) != 1 {
		t.Fatalf("points = %d, want 1", len(lines))
	}
	for _, want := range []string{"show_sessions,", "show_id=fire-effect", "event=started", "lights=6i"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("line %q missing %q", lines[0], want)
		}
	}
}

func TestRecordWrite_Adapter(t *testing.T) {
	w := &recordingWriter{}
	c := newClient(fakePinger{healthy: true}, w)

	c.RecordWrite("light-2", "superseded", 0)

	lines, _ := w.snapshot()
	if len(lines) != 1 || !strings.Contains(lines[0], "status=superseded") {
		t.Errorf("lines = %v, want one superseded point", lines)
	}
}

func TestClose_FlushesAndStopsWrites(t *testing.T) {
	w := &recordingWriter{}
	c := newClient(fakePinger{healthy: true}, w)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}

	c.WriteLightWrite("light-1", "written", time.Millisecond)
	c.Flush()
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	lines, flushes := w.snapshot()
	if len(lines) != 0 {
		t.Errorf("points after Close = %d, want 0", len(lines))
	}
	if flushes != 1 {
		t.Errorf("flushes = %d, want 1", flushes)
	}
}

func TestClose_Nil(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		pinger  fakePinger
		wantErr bool
	}{
		{name: "healthy", pinger: fakePinger{healthy: true}},
		{name: "unhealthy", pinger: fakePinger{healthy: false}, wantErr: true},
		{name: "error", pinger: fakePinger{err: errors.New("refused")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(tt.pinger, &recordingWriter{})
			err := c.HealthCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHealthCheck_Closed(t *testing.T) {
	c := newClient(fakePinger{healthy: true}, &recordingWriter{})
	_ = c.Close()

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHandleWriteErrors(t *testing.T) {
	c := newClient(fakePinger{healthy: true}, &recordingWriter{})

	got := make(chan error, 1)
	c.SetOnError(func(err error) { got <- err })

	errCh := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		c.handleWriteErrors(errCh)
		close(done)
	}()

	errCh <- errors.New("write rejected")
	close(errCh)

	select {
	case err := <-got:
		if err.Error() != "write rejected" {
			t.Errorf("callback error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("error callback not invoked")
	}
	<-done
}
