package lightctl

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/luminary-core/internal/color"
	"github.com/nerrad567/luminary-core/internal/infrastructure/mqtt"
)

// Publisher is the MQTT surface the controller needs.
// *mqtt.Client satisfies it.
type Publisher interface {
	PublishContext(ctx context.Context, topic string, payload []byte, qos byte, retained bool) error
}

// Logger defines the logging interface used by the controller.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// MQTTController publishes colour commands over MQTT.
//
// Thread Safety: SetColor is safe for concurrent use; the controller holds
// no mutable state after construction.
type MQTTController struct {
	pub    Publisher
	qos    byte
	source string
	topics mqtt.Topics
	logger Logger
	now    func() time.Time
}

// NewMQTTController creates a controller publishing at the given QoS.
func NewMQTTController(pub Publisher, qos byte) *MQTTController {
	return &MQTTController{
		pub:    pub,
		qos:    qos,
		source: SourceEngine,
		logger: noopLogger{},
		now:    time.Now,
	}
}

// SetLogger sets the logger used for per-write debug output.
func (c *MQTTController) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	c.logger = logger
}

// SetSource overrides the source field of published commands.
func (c *MQTTController) SetSource(source string) {
	c.source = source
}

// SetColor publishes c as a command for lightID.
//
// Returns:
//   - error: ErrInvalidLightID, ErrInvalidColor, or the wrapped publish error
func (c *MQTTController) SetColor(ctx context.Context, lightID string, hsb color.HSB) error {
	if lightID == "" {
		return ErrInvalidLightID
	}
	if !hsb.Valid() {
		return fmt.Errorf("%w: %+v", ErrInvalidColor, hsb)
	}
	if c.pub == nil {
		return ErrNoPublisher
	}

	msg := CommandMessage{
		ID:         uuid.NewString(),
		LightID:    lightID,
		Hue:        hsb.Hue,
		Saturation: hsb.Saturation,
		Brightness: hsb.Brightness,
		Source:     c.source,
		Timestamp:  c.now().UTC(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshalling command: %w", err)
	}

	topic := c.topics.LightCommand(lightID)
	if err := c.pub.PublishContext(ctx, topic, payload, c.qos, false); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}

	c.logger.Debug("light command published", "light_id", lightID, "command_id", msg.ID)
	return nil
}
