package lightctl

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/luminary-core/internal/color"
	"github.com/nerrad567/luminary-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/luminary-core/internal/writequeue"
)

var _ writequeue.Controller = (*MQTTController)(nil)

type publishedMessage struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// mockPublisher records publishes for verification.
type mockPublisher struct {
	mu        sync.Mutex
	published []publishedMessage
	err       error
}

func (m *mockPublisher) PublishContext(ctx context.Context, topic string, payload []byte, qos byte, retained bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, publishedMessage{topic: topic, payload: payload, qos: qos, retained: retained})
	return nil
}

func (m *mockPublisher) messages() []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishedMessage(nil), m.published...)
}

func TestSetColor_PublishesCommand(t *testing.T) {
	pub := &mockPublisher{}
	ctrl := NewMQTTController(pub, 1)
	fixed := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	ctrl.now = func() time.Time { return fixed }

	c := color.HSB{Hue: 220, Saturation: 80, Brightness: 55}
	if err := ctrl.SetColor(context.Background(), "par-1", c); err != nil {
		t.Fatalf("SetColor() error = %v", err)
	}

	msgs := pub.messages()
	if len(msgs) != 1 {
		t.Fatalf("published = %d, want 1", len(msgs))
	}
	got := msgs[0]
	if got.topic != (mqtt.Topics{}).LightCommand("par-1") {
		t.Errorf("topic = %q", got.topic)
	}
	if got.qos != 1 || got.retained {
		t.Errorf("qos = %d retained = %v, want 1 false", got.qos, got.retained)
	}

	var cmd CommandMessage
	if err := json.Unmarshal(got.payload, &cmd); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if cmd.ID == "" {
		t.Error("command id is empty")
	}
	if cmd.LightID != "par-1" || cmd.Source != SourceEngine {
		t.Errorf("command = %+v", cmd)
	}
	if cmd.Color() != c {
		t.Errorf("Color() = %+v, want %+v", cmd.Color(), c)
	}
	if !cmd.Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", cmd.Timestamp, fixed)
	}
}

func TestSetColor_UniqueCommandIDs(t *testing.T) {
	pub := &mockPublisher{}
	ctrl := NewMQTTController(pub, 0)

	for range 2 {
		if err := ctrl.SetColor(context.Background(), "par-1", color.Red); err != nil {
			t.Fatalf("SetColor() error = %v", err)
		}
	}

	var first, second CommandMessage
	msgs := pub.messages()
	_ = json.Unmarshal(msgs[0].payload, &first)
	_ = json.Unmarshal(msgs[1].payload, &second)
	if first.ID == second.ID {
		t.Errorf("command ids repeat: %s", first.ID)
	}
}

func TestSetColor_Validation(t *testing.T) {
	tests := []struct {
		name    string
		lightID string
		color   color.HSB
		wantErr error
	}{
		{name: "empty id", lightID: "", color: color.White, wantErr: ErrInvalidLightID},
		{name: "hue 360", lightID: "a", color: color.HSB{Hue: 360, Saturation: 50, Brightness: 50}, wantErr: ErrInvalidColor},
		{name: "negative saturation", lightID: "a", color: color.HSB{Hue: 10, Saturation: -1, Brightness: 50}, wantErr: ErrInvalidColor},
		{name: "brightness over max", lightID: "a", color: color.HSB{Hue: 10, Saturation: 50, Brightness: 101}, wantErr: ErrInvalidColor},
		{name: "NaN", lightID: "a", color: color.HSB{Hue: math.NaN()}, wantErr: ErrInvalidColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &mockPublisher{}
			ctrl := NewMQTTController(pub, 1)

			err := ctrl.SetColor(context.Background(), tt.lightID, tt.color)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetColor() error = %v, want %v", err, tt.wantErr)
			}
			if n := len(pub.messages()); n != 0 {
				t.Errorf("published = %d, want 0", n)
			}
		})
	}
}

func TestSetColor_PublishError(t *testing.T) {
	pub := &mockPublisher{err: mqtt.ErrNotConnected}
	ctrl := NewMQTTController(pub, 1)

	err := ctrl.SetColor(context.Background(), "par-1", color.Blue)
	if !errors.Is(err, mqtt.ErrNotConnected) {
		t.Errorf("SetColor() error = %v, want wrapped ErrNotConnected", err)
	}
}

func TestSetColor_CancelledContext(t *testing.T) {
	ctrl := NewMQTTController(&mockPublisher{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := ctrl.SetColor(ctx, "par-1", color.Blue); !errors.Is(err, context.Canceled) {
		t.Errorf("SetColor() error = %v, want context.Canceled", err)
	}
}

func TestSetColor_NoPublisher(t *testing.T) {
	ctrl := NewMQTTController(nil, 1)
	if err := ctrl.SetColor(context.Background(), "par-1", color.Blue); !errors.Is(err, ErrNoPublisher) {
		t.Errorf("SetColor() error = %v, want ErrNoPublisher", err)
	}
}

func TestSetColor_ThroughCoordinator(t *testing.T) {
	pub := &mockPublisher{}
	ctrl := NewMQTTController(pub, 1)
	coord := writequeue.New(ctrl, writequeue.Config{Debounce: time.Millisecond, WriteTimeout: time.Second})
	defer coord.Close(context.Background())

	h := coord.SetColor("par-1", color.Green)
	res := h.Wait(context.Background())
	if res.Status != writequeue.StatusWritten {
		t.Errorf("Status = %v (err %v), want written", res.Status, res.Err)
	}
	if n := len(pub.messages()); n != 1 {
		t.Errorf("published = %d, want 1", n)
	}
}
