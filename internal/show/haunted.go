package show

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
	"github.com/nerrad567/luminary-core/internal/writequeue"
)

const (
	hauntedTick             = 150 * time.Millisecond
	hauntedMinPulseInterval = 0.5
	hauntedStrobeEvery      = 5
)

// hauntedStrobe is the pale flash used for spectral strobes.
var hauntedStrobe = color.HSB{Hue: 40, Saturation: 30, Brightness: 100}

// HauntedSpiritsConfig holds Haunted Spirits parameters.
type HauntedSpiritsConfig struct {
	Base   color.HSB `json:"base"`
	Accent color.HSB `json:"accent"`

	FlickerIntensity float64 `json:"flicker_intensity"`

	// PulseInterval is the time between synchronized pulses, in seconds.
	PulseInterval float64 `json:"pulse_interval"`
	StrobeChance  float64 `json:"strobe_chance"`
}

// Validate checks the config.
func (c HauntedSpiritsConfig) Validate() error {
	if err := checkColor("base", c.Base); err != nil {
		return err
	}
	if err := checkColor("accent", c.Accent); err != nil {
		return err
	}
	if err := checkUnit("flicker_intensity", c.FlickerIntensity); err != nil {
		return err
	}
	if err := checkUnit("strobe_chance", c.StrobeChance); err != nil {
		return err
	}
	return checkInterval("pulse_interval", c.PulseInterval)
}

// HauntedSpirits drifts between two colours with ghostly flicker, pulses
// and rare strobes.
type HauntedSpirits struct {
	cfg  params[HauntedSpiritsConfig]
	tick time.Duration
	rand func() *rand.Rand
	now  func() time.Time
}

// NewHauntedSpirits creates the show with default parameters.
func NewHauntedSpirits() *HauntedSpirits {
	return &HauntedSpirits{
		cfg: params[HauntedSpiritsConfig]{v: HauntedSpiritsConfig{
			Base:             color.Purple,
			Accent:           color.Orange,
			FlickerIntensity: 0.6,
			PulseInterval:    3,
			StrobeChance:     0.2,
		}},
		tick: hauntedTick,
		rand: newRand,
		now:  time.Now,
	}
}

func (s *HauntedSpirits) Describe() Info {
	return Info{
		ID:          "haunted-spirits",
		Name:        "Haunted Spirits",
		Description: "Eerie pulses, ghostly flickers, and spectral strobes",
		Icon:        "moon.stars",
	}
}

func (s *HauntedSpirits) Config() HauntedSpiritsConfig             { return s.cfg.get() }
func (s *HauntedSpirits) SetConfig(cfg HauntedSpiritsConfig) error { return s.cfg.set(cfg) }
func (s *HauntedSpirits) Settings() any                            { return s.cfg.get() }
func (s *HauntedSpirits) UpdateSettings(data []byte) error         { return s.cfg.merge(data) }

func (s *HauntedSpirits) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return color.HSB{}, false
}

func (s *HauntedSpirits) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	if len(lights) == 0 {
		return nil
	}

	r := s.rand()
	elapsed := 0.0
	lastPulse := s.now()
	handles := make([]*writequeue.Handle, 0, len(lights))
	for ctx.Err() == nil {
		cfg := s.cfg.get()
		now := s.now()
		pulse := now.Sub(lastPulse) >= seconds(max(hauntedMinPulseInterval, cfg.PulseInterval))
		if pulse {
			lastPulse = now
		}

		handles = handles[:0]
		for i, l := range lights {
			c := spiritColor(cfg, elapsed, i, len(lights))
			if r.Float64() < cfg.FlickerIntensity {
				c = c.WithBrightness(c.Brightness * uniform(r, 0.55, 1))
			}
			switch {
			case pulse && i%2 == 0:
				c = color.HSB{Hue: cfg.Accent.Hue, Saturation: color.MaxSaturation, Brightness: color.MaxBrightness}
			case r.Float64() < cfg.StrobeChance && i%hauntedStrobeEvery == 0:
				c = hauntedStrobe
			}
			handles = append(handles, out.emit(l.ID, c))
		}
		if !awaitAll(ctx, handles) {
			return nil
		}
		if !sleep(ctx, s.tick) {
			return nil
		}
		elapsed += s.tick.Seconds()
	}
	return nil
}

// spiritColor blends base towards accent along a travelling sine wave.
func spiritColor(cfg HauntedSpiritsConfig, elapsed float64, i, n int) color.HSB {
	wave := (math.Sin((elapsed+normalisedIndex(i, n))*2*math.Pi) + 1) / 2
	return color.Blend(cfg.Base, cfg.Accent, wave)
}
