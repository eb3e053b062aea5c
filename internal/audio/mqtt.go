package audio

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/luminary-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/luminary-core/internal/show"
)

// Subscriber is the MQTT surface the source needs. *mqtt.Client satisfies it.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// reading is the payload published by the audio analyser.
type reading struct {
	Amplitude *float64 `json:"amplitude"`
	Frequency *float64 `json:"frequency"`
}

// MQTTSource is a show.LevelSource fed by MQTT level readings.
type MQTTSource struct {
	sub   Subscriber
	topic string
	level *decayingLevel

	mu      sync.Mutex
	started bool
}

// NewMQTTSource creates a source for topic. An empty topic uses the
// standard audio level topic.
func NewMQTTSource(sub Subscriber, topic string, decay, stale time.Duration) *MQTTSource {
	if topic == "" {
		topic = mqtt.Topics{}.AudioLevel()
	}
	return &MQTTSource{
		sub:   sub,
		topic: topic,
		level: newDecayingLevel(decay, stale),
	}
}

// Topic returns the subscribed topic.
func (s *MQTTSource) Topic() string { return s.topic }

// Start subscribes to the level topic.
func (s *MQTTSource) Start() error {
	if s.sub == nil {
		return ErrNoSubscriber
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	// Readings are superseded continuously, so delivery guarantees are moot.
	if err := s.sub.Subscribe(s.topic, 0, s.handleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", s.topic, err)
	}
	s.started = true
	return nil
}

// Stop unsubscribes. The last reading keeps decaying.
func (s *MQTTSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false
	return s.sub.Unsubscribe(s.topic)
}

// Level implements show.LevelSource.
func (s *MQTTSource) Level() (show.Level, bool) {
	return s.level.current()
}

func (s *MQTTSource) handleMessage(_ string, payload []byte) error {
	var r reading
	if err := json.Unmarshal(payload, &r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReading, err)
	}
	if r.Amplitude == nil {
		return fmt.Errorf("%w: missing amplitude", ErrInvalidReading)
	}

	l := show.Level{Amplitude: *r.Amplitude}
	if r.Frequency != nil {
		l.Frequency = *r.Frequency
	}
	s.level.update(l)
	return nil
}
