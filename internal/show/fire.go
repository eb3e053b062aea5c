package show

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
)

// Flicker bounds for one fire cycle, in seconds.
const (
	fireMinDelay = 0.05
	fireMaxDelay = 0.2
)

// FireEffectConfig holds Fire Effect parameters.
type FireEffectConfig struct {
	// Intensity scales brightness, 0 to 1.
	Intensity float64 `json:"intensity"`
}

// Validate checks the config.
func (c FireEffectConfig) Validate() error {
	return checkUnit("intensity", c.Intensity)
}

// FireEffect flickers every light through red, orange and yellow.
type FireEffect struct {
	cfg   params[FireEffectConfig]
	delay func(r *rand.Rand) time.Duration
	rand  func() *rand.Rand
}

// NewFireEffect creates the show with default parameters.
func NewFireEffect() *FireEffect {
	return &FireEffect{
		cfg: params[FireEffectConfig]{v: FireEffectConfig{Intensity: 0.8}},
		delay: func(r *rand.Rand) time.Duration {
			return seconds(uniform(r, fireMinDelay, fireMaxDelay))
		},
		rand: newRand,
	}
}

func (s *FireEffect) Describe() Info {
	return Info{
		ID:          "fire-effect",
		Name:        "Fire Effect",
		Description: "Flickering orange/red/yellow to simulate flames",
		Icon:        "flame.fill",
	}
}

func (s *FireEffect) Config() FireEffectConfig             { return s.cfg.get() }
func (s *FireEffect) SetConfig(cfg FireEffectConfig) error { return s.cfg.set(cfg) }
func (s *FireEffect) Settings() any                        { return s.cfg.get() }
func (s *FireEffect) UpdateSettings(data []byte) error     { return s.cfg.merge(data) }

func (s *FireEffect) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return color.HSB{}, false
}

func (s *FireEffect) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	if len(lights) == 0 {
		return nil
	}

	r := s.rand()
	for ctx.Err() == nil {
		intensity := s.cfg.get().Intensity
		for _, l := range lights {
			if ctx.Err() != nil {
				return nil
			}
			out.emit(l.ID, flameColor(r, intensity))
		}
		if !sleep(ctx, s.delay(r)) {
			return nil
		}
	}
	return nil
}

// flameColor samples a colour from the fire range.
func flameColor(r *rand.Rand, intensity float64) color.HSB {
	return color.HSB{
		Hue:        uniform(r, 0, 30),
		Saturation: uniform(r, 80, 100),
		Brightness: uniform(r, 50*intensity, 100*intensity),
	}
}
