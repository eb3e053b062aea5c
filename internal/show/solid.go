package show

import (
	"context"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
)

// SolidColorConfig holds Solid Color parameters.
type SolidColorConfig struct {
	Color color.HSB `json:"color"`
}

// Validate checks the config.
func (c SolidColorConfig) Validate() error {
	return checkColor("color", c.Color)
}

// SolidColor sets every light to one colour, once.
type SolidColor struct {
	cfg params[SolidColorConfig]
}

// NewSolidColor creates the show with default parameters.
func NewSolidColor() *SolidColor {
	return &SolidColor{cfg: params[SolidColorConfig]{v: SolidColorConfig{Color: color.White}}}
}

func (s *SolidColor) Describe() Info {
	return Info{
		ID:          "solid-color",
		Name:        "Solid Color",
		Description: "Set all lights to the same color",
		Icon:        "paintpalette.fill",
	}
}

func (s *SolidColor) Config() SolidColorConfig             { return s.cfg.get() }
func (s *SolidColor) SetConfig(cfg SolidColorConfig) error { return s.cfg.set(cfg) }
func (s *SolidColor) Settings() any                        { return s.cfg.get() }
func (s *SolidColor) UpdateSettings(data []byte) error     { return s.cfg.merge(data) }

func (s *SolidColor) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return s.cfg.get().Color, true
}

// Run writes the colour to every light and returns without waiting for the
// writes to land.
func (s *SolidColor) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	c := s.cfg.get().Color
	for _, l := range lights {
		if ctx.Err() != nil {
			return nil
		}
		out.emit(l.ID, c)
	}
	return nil
}
