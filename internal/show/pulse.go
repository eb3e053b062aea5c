package show

import (
	"context"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
	"github.com/nerrad567/luminary-core/internal/writequeue"
)

// pulseDimBrightness is the brightness of the "off" half of a pulse.
const pulseDimBrightness = 10

// ColorPulseConfig holds Color Pulse parameters.
type ColorPulseConfig struct {
	Color color.HSB `json:"color"`

	// Speed is the full pulse period, in seconds.
	Speed float64 `json:"speed"`
}

// Validate checks the config.
func (c ColorPulseConfig) Validate() error {
	if err := checkColor("color", c.Color); err != nil {
		return err
	}
	return checkInterval("speed", c.Speed)
}

// ColorPulse brightens and dims every light together.
type ColorPulse struct {
	cfg params[ColorPulseConfig]
}

// NewColorPulse creates the show with default parameters.
func NewColorPulse() *ColorPulse {
	return &ColorPulse{cfg: params[ColorPulseConfig]{v: ColorPulseConfig{
		Color: color.Purple,
		Speed: 1,
	}}}
}

func (s *ColorPulse) Describe() Info {
	return Info{
		ID:          "color-pulse",
		Name:        "Color Pulse",
		Description: "All lights pulse in sync with adjustable rhythm",
		Icon:        "waveform.path.ecg",
	}
}

func (s *ColorPulse) Config() ColorPulseConfig             { return s.cfg.get() }
func (s *ColorPulse) SetConfig(cfg ColorPulseConfig) error { return s.cfg.set(cfg) }
func (s *ColorPulse) Settings() any                        { return s.cfg.get() }
func (s *ColorPulse) UpdateSettings(data []byte) error     { return s.cfg.merge(data) }

func (s *ColorPulse) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return s.cfg.get().Color, true
}

func (s *ColorPulse) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	if len(lights) == 0 {
		return nil
	}

	for ctx.Err() == nil {
		cfg := s.cfg.get()
		half := seconds(cfg.Speed / 2)

		if !setAll(ctx, lights, &out, cfg.Color) || !sleep(ctx, half) {
			return nil
		}
		if !setAll(ctx, lights, &out, cfg.Color.WithBrightness(pulseDimBrightness)) || !sleep(ctx, half) {
			return nil
		}
	}
	return nil
}

// setAll writes c to every light and waits for the writes to resolve.
func setAll(ctx context.Context, lights []canvas.Light, out *Output, c color.HSB) bool {
	handles := make([]*writequeue.Handle, len(lights))
	for i, l := range lights {
		handles[i] = out.emit(l.ID, c)
	}
	return awaitAll(ctx, handles)
}
