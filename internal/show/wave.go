package show

import (
	"context"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
	"github.com/nerrad567/luminary-core/internal/sequence"
)

// waveSettle is the pause after the rest colour is applied.
const waveSettle = 500 * time.Millisecond

// WaveColorConfig holds Wave Color parameters.
type WaveColorConfig struct {
	Wave color.HSB `json:"wave"`
	Rest color.HSB `json:"rest"`

	// DurationPerLight is how long each light holds the wave colour, in seconds.
	DurationPerLight float64           `json:"duration_per_light"`
	Ordering         sequence.Strategy `json:"ordering"`
}

// Validate checks the config.
func (c WaveColorConfig) Validate() error {
	if err := checkColor("wave", c.Wave); err != nil {
		return err
	}
	if err := checkColor("rest", c.Rest); err != nil {
		return err
	}
	if !c.Ordering.Valid() {
		return invalid("unknown ordering %q", c.Ordering)
	}
	return checkInterval("duration_per_light", c.DurationPerLight)
}

// WaveColor moves a single colour through the lights one at a time.
//
// Each Run makes one pass over the sequence and returns. Restarting the
// pass is up to the caller.
type WaveColor struct {
	cfg    params[WaveColorConfig]
	settle time.Duration
}

// NewWaveColor creates the show with default parameters.
func NewWaveColor() *WaveColor {
	return &WaveColor{
		cfg: params[WaveColorConfig]{v: WaveColorConfig{
			Wave:             color.Green,
			Rest:             color.White,
			DurationPerLight: 1,
			Ordering:         sequence.LeftToRight,
		}},
		settle: waveSettle,
	}
}

func (s *WaveColor) Describe() Info {
	return Info{
		ID:          "wave-color",
		Name:        "Wave Color",
		Description: "Wave a color through lights one at a time",
		Icon:        "waveform",
	}
}

func (s *WaveColor) Config() WaveColorConfig             { return s.cfg.get() }
func (s *WaveColor) SetConfig(cfg WaveColorConfig) error { return s.cfg.set(cfg) }
func (s *WaveColor) Settings() any                       { return s.cfg.get() }
func (s *WaveColor) UpdateSettings(data []byte) error    { return s.cfg.merge(data) }

func (s *WaveColor) OrderingStrategy() sequence.Strategy { return s.cfg.get().Ordering }

func (s *WaveColor) Sequence(lights []canvas.Light) []string {
	return s.OrderingStrategy().Sequence(lights)
}

func (s *WaveColor) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return s.cfg.get().Rest, true
}

func (s *WaveColor) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	order := s.Sequence(lights)
	if len(order) == 0 {
		return nil
	}

	rest := s.cfg.get().Rest
	for _, id := range order {
		out.emit(id, rest)
	}
	if !sleep(ctx, s.settle) {
		return nil
	}

	for _, id := range order {
		if ctx.Err() != nil {
			return nil
		}
		cfg := s.cfg.get()
		out.emit(id, cfg.Wave)

		if !sleep(ctx, seconds(cfg.DurationPerLight)) {
			return nil
		}
		out.emit(id, cfg.Rest)
	}
	return nil
}
