package audio

import (
	"math"
	"sync"
	"time"

	"github.com/nerrad567/luminary-core/internal/show"
)

// decayingLevel stores the latest reading and fades it with age.
type decayingLevel struct {
	decay time.Duration
	stale time.Duration
	now   func() time.Time

	mu    sync.Mutex
	level show.Level
	at    time.Time
	set   bool
}

func newDecayingLevel(decay, stale time.Duration) *decayingLevel {
	return &decayingLevel{decay: decay, stale: stale, now: time.Now}
}

func (d *decayingLevel) update(l show.Level) {
	l.Amplitude = unit(l.Amplitude)
	l.Frequency = unit(l.Frequency)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.level = l
	d.at = d.now()
	d.set = true
}

func (d *decayingLevel) current() (show.Level, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.set {
		return show.Level{}, false
	}
	age := d.now().Sub(d.at)
	if d.stale > 0 && age > d.stale {
		return show.Level{}, false
	}

	l := d.level
	if d.decay > 0 {
		l.Amplitude *= math.Max(0, 1-float64(age)/float64(d.decay))
	}
	return l, true
}

// unit clamps v to [0, 1]. NaN becomes 0.
func unit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 1)
}

// StaticSource reports a level set by hand.
type StaticSource struct {
	mu    sync.RWMutex
	level show.Level
	ok    bool
}

// NewStaticSource creates a source with no signal.
func NewStaticSource() *StaticSource {
	return &StaticSource{}
}

// Set stores l, clamped to [0, 1].
func (s *StaticSource) Set(l show.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = show.Level{Amplitude: unit(l.Amplitude), Frequency: unit(l.Frequency)}
	s.ok = true
}

// Clear removes the signal.
func (s *StaticSource) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = show.Level{}
	s.ok = false
}

// Level implements show.LevelSource.
func (s *StaticSource) Level() (show.Level, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level, s.ok
}
