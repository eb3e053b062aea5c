package show

import (
	"context"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
)

// StrobeConfig holds Strobe parameters.
type StrobeConfig struct {
	Color color.HSB `json:"color"`

	// Speed is the off time in seconds; the on time is a quarter of it.
	Speed float64 `json:"speed"`

	// Intensity is the flash brightness, 0 to 100.
	Intensity float64 `json:"intensity"`
}

// Validate checks the config.
func (c StrobeConfig) Validate() error {
	if err := checkColor("color", c.Color); err != nil {
		return err
	}
	if c.Intensity < 0 || c.Intensity > color.MaxBrightness {
		return invalid("intensity must be between 0 and 100")
	}
	return checkInterval("speed", c.Speed)
}

// Strobe flashes every light on briefly, then holds them dark.
type Strobe struct {
	cfg params[StrobeConfig]
}

// NewStrobe creates the show with default parameters.
func NewStrobe() *Strobe {
	return &Strobe{cfg: params[StrobeConfig]{v: StrobeConfig{
		Color:     color.White,
		Speed:     0.2,
		Intensity: 100,
	}}}
}

func (s *Strobe) Describe() Info {
	return Info{
		ID:          "strobe",
		Name:        "Strobe",
		Description: "Configurable strobe effect with color and speed",
		Icon:        "bolt.fill",
	}
}

func (s *Strobe) Config() StrobeConfig             { return s.cfg.get() }
func (s *Strobe) SetConfig(cfg StrobeConfig) error { return s.cfg.set(cfg) }
func (s *Strobe) Settings() any                    { return s.cfg.get() }
func (s *Strobe) UpdateSettings(data []byte) error { return s.cfg.merge(data) }

func (s *Strobe) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return s.cfg.get().Color, true
}

func (s *Strobe) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	if len(lights) == 0 {
		return nil
	}

	for ctx.Err() == nil {
		cfg := s.cfg.get()
		on := cfg.Color.WithBrightness(cfg.Intensity)
		off := cfg.Color.WithBrightness(0)

		if !setAll(ctx, lights, &out, on) || !sleep(ctx, seconds(cfg.Speed/4)) {
			return nil
		}
		if !setAll(ctx, lights, &out, off) || !sleep(ctx, seconds(cfg.Speed)) {
			return nil
		}
	}
	return nil
}
