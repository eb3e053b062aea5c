package show

import (
	"context"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
	"github.com/nerrad567/luminary-core/internal/sequence"
)

// rainbowPalette is indexed by position in the sequence.
var rainbowPalette = []color.HSB{
	{Hue: 0, Saturation: 100, Brightness: 100},
	{Hue: 30, Saturation: 100, Brightness: 100},
	{Hue: 60, Saturation: 100, Brightness: 100},
	{Hue: 120, Saturation: 100, Brightness: 100},
	{Hue: 180, Saturation: 100, Brightness: 100},
	{Hue: 240, Saturation: 100, Brightness: 100},
	{Hue: 300, Saturation: 100, Brightness: 100},
}

// RainbowWaveConfig holds Rainbow Wave parameters.
type RainbowWaveConfig struct {
	// Speed is the time spent on each light, in seconds.
	Speed    float64           `json:"speed"`
	Ordering sequence.Strategy `json:"ordering"`
}

// Validate checks the config.
func (c RainbowWaveConfig) Validate() error {
	if !c.Ordering.Valid() {
		return invalid("unknown ordering %q", c.Ordering)
	}
	return checkInterval("speed", c.Speed)
}

// RainbowWave paints lights in sequence with a seven-hue palette and
// repeats the pass until cancelled.
type RainbowWave struct {
	cfg params[RainbowWaveConfig]
}

// NewRainbowWave creates the show with default parameters.
func NewRainbowWave() *RainbowWave {
	return &RainbowWave{cfg: params[RainbowWaveConfig]{v: RainbowWaveConfig{
		Speed:    1,
		Ordering: sequence.LeftToRight,
	}}}
}

func (s *RainbowWave) Describe() Info {
	return Info{
		ID:          "rainbow-wave",
		Name:        "Rainbow Wave",
		Description: "Cycle through rainbow colors in sequence",
		Icon:        "rainbow",
	}
}

func (s *RainbowWave) Config() RainbowWaveConfig             { return s.cfg.get() }
func (s *RainbowWave) SetConfig(cfg RainbowWaveConfig) error { return s.cfg.set(cfg) }
func (s *RainbowWave) Settings() any                         { return s.cfg.get() }
func (s *RainbowWave) UpdateSettings(data []byte) error      { return s.cfg.merge(data) }

func (s *RainbowWave) OrderingStrategy() sequence.Strategy { return s.cfg.get().Ordering }

func (s *RainbowWave) Sequence(lights []canvas.Light) []string {
	return s.OrderingStrategy().Sequence(lights)
}

func (s *RainbowWave) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return color.HSB{}, false
}

// Run waits for each light's write before holding and moving on.
func (s *RainbowWave) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	order := s.Sequence(lights)
	if len(order) == 0 {
		return nil
	}

	for ctx.Err() == nil {
		for i, id := range order {
			if ctx.Err() != nil {
				return nil
			}
			h := out.emit(id, rainbowPalette[i%len(rainbowPalette)])
			if !await(ctx, h) {
				return nil
			}
			if !sleep(ctx, seconds(s.cfg.get().Speed)) {
				return nil
			}
		}
		if !sleep(ctx, seconds(s.cfg.get().Speed)) {
			return nil
		}
	}
	return nil
}
