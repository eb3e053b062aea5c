package audio

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/nerrad567/luminary-core/internal/show"
)

// midiMax is the largest 7-bit MIDI data value.
const midiMax = 127

// MIDISource is a show.LevelSource driven by MIDI note-on events.
// Velocity becomes amplitude and the note number becomes frequency.
type MIDISource struct {
	level *decayingLevel

	mu   sync.Mutex
	stop func()
}

// NewMIDISource creates a source with no input attached.
func NewMIDISource(decay, stale time.Duration) *MIDISource {
	return &MIDISource{level: newDecayingLevel(decay, stale)}
}

// FindInPort returns the first MIDI input whose name contains substr,
// ignoring case.
func FindInPort(substr string) (drivers.In, error) {
	lower := strings.ToLower(substr)
	for _, port := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}
	return nil, fmt.Errorf("no MIDI input port matching %q", substr)
}

// Listen attaches the source to port. A MIDI driver must be registered by
// the binary (for example rtmididrv).
func (s *MIDISource) Listen(port drivers.In) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return ErrAlreadyStarted
	}

	stop, err := midi.ListenTo(port, func(msg midi.Message, _ int32) {
		s.HandleMessage(msg)
	})
	if err != nil {
		return fmt.Errorf("listening on %s: %w", port.String(), err)
	}
	s.stop = stop
	return nil
}

// Close detaches from the MIDI input.
func (s *MIDISource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

// HandleMessage applies one MIDI message. Messages other than note-on are
// ignored, as are note-ons with zero velocity (running-status note-off).
func (s *MIDISource) HandleMessage(msg midi.Message) {
	var channel, key, velocity uint8
	if !msg.GetNoteOn(&channel, &key, &velocity) || velocity == 0 {
		return
	}
	s.level.update(show.Level{
		Amplitude: float64(velocity) / midiMax,
		Frequency: float64(key) / midiMax,
	})
}

// Level implements show.LevelSource.
func (s *MIDISource) Level() (show.Level, bool) {
	return s.level.current()
}
