package show

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
)

// Twinkle timing.
const (
	twinkleSettle = 500 * time.Millisecond
	twinkleTick   = 500 * time.Millisecond
	twinkleRevert = 200 * time.Millisecond
)

// TwinkleConfig holds Twinkle parameters.
type TwinkleConfig struct {
	Base    color.HSB `json:"base"`
	Twinkle color.HSB `json:"twinkle"`

	// Frequency is the chance per light per tick of a twinkle, 0 to 1.
	Frequency float64 `json:"frequency"`
}

// Validate checks the config.
func (c TwinkleConfig) Validate() error {
	if err := checkColor("base", c.Base); err != nil {
		return err
	}
	if err := checkColor("twinkle", c.Twinkle); err != nil {
		return err
	}
	return checkUnit("frequency", c.Frequency)
}

// Twinkle sparkles random lights briefly before returning them to the base
// colour.
type Twinkle struct {
	cfg params[TwinkleConfig]

	settle, tick, revert time.Duration
	rand                 func() *rand.Rand
}

// NewTwinkle creates the show with default parameters.
func NewTwinkle() *Twinkle {
	return &Twinkle{
		cfg: params[TwinkleConfig]{v: TwinkleConfig{
			Base:      color.White,
			Twinkle:   color.Yellow,
			Frequency: 0.3,
		}},
		settle: twinkleSettle,
		tick:   twinkleTick,
		revert: twinkleRevert,
		rand:   newRand,
	}
}

func (s *Twinkle) Describe() Info {
	return Info{
		ID:          "twinkle",
		Name:        "Twinkle",
		Description: "Random lights sparkle like stars",
		Icon:        "sparkles",
	}
}

func (s *Twinkle) Config() TwinkleConfig             { return s.cfg.get() }
func (s *Twinkle) SetConfig(cfg TwinkleConfig) error { return s.cfg.set(cfg) }
func (s *Twinkle) Settings() any                     { return s.cfg.get() }
func (s *Twinkle) UpdateSettings(data []byte) error  { return s.cfg.merge(data) }

func (s *Twinkle) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return s.cfg.get().Base, true
}

// Run schedules each revert on its own goroutine. Reverts share the run's
// context and Run does not return until they have all finished.
func (s *Twinkle) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	if len(lights) == 0 {
		return nil
	}

	var reverts sync.WaitGroup
	defer reverts.Wait()

	if !setAll(ctx, lights, &out, s.cfg.get().Base) || !sleep(ctx, s.settle) {
		return nil
	}

	r := s.rand()
	for ctx.Err() == nil {
		for _, l := range lights {
			if ctx.Err() != nil {
				return nil
			}
			cfg := s.cfg.get()
			if r.Float64() >= cfg.Frequency {
				continue
			}
			if !await(ctx, out.emit(l.ID, cfg.Twinkle)) {
				return nil
			}

			reverts.Add(1)
			go func(id string, base color.HSB) {
				defer reverts.Done()
				if sleep(ctx, s.revert) {
					out.emit(id, base)
				}
			}(l.ID, cfg.Base)
		}
		if !sleep(ctx, s.tick) {
			return nil
		}
	}
	return nil
}
