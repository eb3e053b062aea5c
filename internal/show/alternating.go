package show

import (
	"context"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
	"github.com/nerrad567/luminary-core/internal/writequeue"
)

// minSwitchInterval is the fastest the partitions may swap.
const minSwitchInterval = 0.1

// AlternatingColorsConfig holds Alternating Colors parameters.
type AlternatingColorsConfig struct {
	Primary   color.HSB `json:"primary"`
	Secondary color.HSB `json:"secondary"`

	// SwitchInterval is the time between swaps, in seconds.
	SwitchInterval float64 `json:"switch_interval"`
}

// Validate checks the config.
func (c AlternatingColorsConfig) Validate() error {
	if err := checkColor("primary", c.Primary); err != nil {
		return err
	}
	if err := checkColor("secondary", c.Secondary); err != nil {
		return err
	}
	return checkInterval("switch_interval", c.SwitchInterval)
}

// AlternatingColors splits lights into even and odd positions and swaps
// their colours periodically.
type AlternatingColors struct {
	cfg params[AlternatingColorsConfig]
}

// NewAlternatingColors creates the show with default parameters.
func NewAlternatingColors() *AlternatingColors {
	return &AlternatingColors{cfg: params[AlternatingColorsConfig]{v: AlternatingColorsConfig{
		Primary:        color.Green,
		Secondary:      color.White,
		SwitchInterval: 2,
	}}}
}

func (s *AlternatingColors) Describe() Info {
	return Info{
		ID:          "alternating-colors",
		Name:        "Alternating Colors",
		Description: "Lights alternate between two colors and swap periodically",
		Icon:        "checkerboard.rectangle",
	}
}

func (s *AlternatingColors) Config() AlternatingColorsConfig             { return s.cfg.get() }
func (s *AlternatingColors) SetConfig(cfg AlternatingColorsConfig) error { return s.cfg.set(cfg) }
func (s *AlternatingColors) Settings() any                               { return s.cfg.get() }
func (s *AlternatingColors) UpdateSettings(data []byte) error            { return s.cfg.merge(data) }

func (s *AlternatingColors) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return color.HSB{}, false
}

func (s *AlternatingColors) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	if len(lights) == 0 {
		return nil
	}

	swapped := false
	handles := make([]*writequeue.Handle, 0, len(lights))
	for ctx.Err() == nil {
		cfg := s.cfg.get()
		even, odd := cfg.Primary, cfg.Secondary
		if swapped {
			even, odd = odd, even
		}

		handles = handles[:0]
		for i, l := range lights {
			c := odd
			if i%2 == 0 {
				c = even
			}
			handles = append(handles, out.emit(l.ID, c))
		}
		if !awaitAll(ctx, handles) {
			return nil
		}

		swapped = !swapped
		if !sleep(ctx, seconds(max(minSwitchInterval, cfg.SwitchInterval))) {
			return nil
		}
	}
	return nil
}
