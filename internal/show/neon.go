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
	neonTick          = 120 * time.Millisecond
	neonMinBrightness = 20
)

// NeonPalette names a curated four-colour set.
type NeonPalette string

const (
	PaletteNeon     NeonPalette = "neon"
	PaletteTropical NeonPalette = "tropical"
	PaletteCyber    NeonPalette = "cyber"
)

var neonPalettes = map[NeonPalette][]color.HSB{
	PaletteNeon: {
		{Hue: 300, Saturation: 90, Brightness: 90},
		{Hue: 200, Saturation: 100, Brightness: 85},
		{Hue: 130, Saturation: 90, Brightness: 80},
		{Hue: 50, Saturation: 100, Brightness: 95},
	},
	PaletteTropical: {
		{Hue: 20, Saturation: 90, Brightness: 95},
		{Hue: 45, Saturation: 100, Brightness: 90},
		{Hue: 90, Saturation: 80, Brightness: 85},
		{Hue: 170, Saturation: 80, Brightness: 90},
	},
	PaletteCyber: {
		{Hue: 190, Saturation: 100, Brightness: 95},
		{Hue: 330, Saturation: 90, Brightness: 90},
		{Hue: 130, Saturation: 80, Brightness: 85},
		{Hue: 280, Saturation: 100, Brightness: 88},
	},
}

// Colors returns the palette's colours, or nil for an unknown palette.
func (p NeonPalette) Colors() []color.HSB {
	return neonPalettes[p]
}

// Valid reports whether p is a known palette.
func (p NeonPalette) Valid() bool {
	_, ok := neonPalettes[p]
	return ok
}

// maxNeonSpeed is the fastest palette rotation, in cycles per second.
const maxNeonSpeed = 10.0

// NeonPartyConfig holds Neon Party parameters.
type NeonPartyConfig struct {
	Palette NeonPalette `json:"palette"`

	// Speed is palette cycles per second.
	Speed          float64 `json:"speed"`
	SparkleChance  float64 `json:"sparkle_chance"`
	BaseBrightness float64 `json:"base_brightness"`
}

// Validate checks the config.
func (c NeonPartyConfig) Validate() error {
	if !c.Palette.Valid() {
		return invalid("unknown palette %q", c.Palette)
	}
	if !(c.Speed >= 0 && c.Speed <= maxNeonSpeed) {
		return invalid("speed must be between 0 and %g", maxNeonSpeed)
	}
	if c.BaseBrightness < 0 || c.BaseBrightness > color.MaxBrightness {
		return invalid("base_brightness must be between 0 and 100")
	}
	return checkUnit("sparkle_chance", c.SparkleChance)
}

// NeonParty rotates a neon palette across the lights with a brightness
// wave and random sparkles.
type NeonParty struct {
	cfg  params[NeonPartyConfig]
	tick time.Duration
	rand func() *rand.Rand
}

// NewNeonParty creates the show with default parameters.
func NewNeonParty() *NeonParty {
	return &NeonParty{
		cfg: params[NeonPartyConfig]{v: NeonPartyConfig{
			Palette:        PaletteNeon,
			Speed:          0.35,
			SparkleChance:  0.25,
			BaseBrightness: 70,
		}},
		tick: neonTick,
		rand: newRand,
	}
}

func (s *NeonParty) Describe() Info {
	return Info{
		ID:          "neon-party",
		Name:        "Neon Party",
		Description: "Electric gradients, sparkles, and rotating neon washes",
		Icon:        "sparkles",
	}
}

func (s *NeonParty) Config() NeonPartyConfig             { return s.cfg.get() }
func (s *NeonParty) SetConfig(cfg NeonPartyConfig) error { return s.cfg.set(cfg) }
func (s *NeonParty) Settings() any                       { return s.cfg.get() }
func (s *NeonParty) UpdateSettings(data []byte) error    { return s.cfg.merge(data) }

func (s *NeonParty) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return color.HSB{}, false
}

func (s *NeonParty) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	if len(lights) == 0 {
		return nil
	}

	r := s.rand()
	phase := 0.0
	handles := make([]*writequeue.Handle, 0, len(lights))
	for ctx.Err() == nil {
		cfg := s.cfg.get()
		colors := cfg.Palette.Colors()
		if len(colors) == 0 {
			return nil
		}

		handles = handles[:0]
		for i, l := range lights {
			c := neonColor(colors, cfg.BaseBrightness, phase, i, len(lights))
			if r.Float64() < cfg.SparkleChance {
				c = sparkle(r, c)
			}
			handles = append(handles, out.emit(l.ID, c))
		}
		if !awaitAll(ctx, handles) {
			return nil
		}

		phase = math.Mod(phase+cfg.Speed*s.tick.Seconds(), 1)
		if !sleep(ctx, s.tick) {
			return nil
		}
	}
	return nil
}

// neonColor picks the palette entry for light i and applies the brightness
// wave.
func neonColor(colors []color.HSB, base, phase float64, i, n int) color.HSB {
	k := len(colors)
	c := colors[((int(phase*float64(k))+i)%k+k)%k]
	wave := (math.Sin((phase+normalisedIndex(i, n))*2*math.Pi) + 1) / 2
	brightness := base + (color.MaxBrightness-base)*wave
	return c.WithBrightness(max(neonMinBrightness, brightness))
}

func sparkle(r *rand.Rand, c color.HSB) color.HSB {
	boost := uniform(r, 0.8, 1)
	return color.HSB{
		Hue:        c.Hue,
		Saturation: min(color.MaxSaturation, c.Saturation+uniform(r, 0, 10)),
		Brightness: min(color.MaxBrightness, c.Brightness*boost+10),
	}
}
