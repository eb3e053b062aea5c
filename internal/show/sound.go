package show

import (
	"context"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
)

const soundTick = 50 * time.Millisecond

// Level is one audio analysis sample. Both fields are in [0, 1].
type Level struct {
	Amplitude float64 `json:"amplitude"`
	Frequency float64 `json:"frequency"`
}

// LevelSource supplies the current audio level. It returns false while no
// signal is available.
type LevelSource interface {
	Level() (Level, bool)
}

// SoundTheme selects how audio maps to colour.
type SoundTheme string

const (
	// ThemeSpectrum maps frequency to hue.
	ThemeSpectrum SoundTheme = "spectrum"
	// ThemePulse keeps a fixed hue and maps amplitude to brightness.
	ThemePulse SoundTheme = "pulse"
	// ThemeWave shifts hue along the lights by amplitude.
	ThemeWave SoundTheme = "wave"
	// ThemeEnergy picks hot or cool hue bands by loudness.
	ThemeEnergy SoundTheme = "energy"
)

// Valid reports whether t is a known theme.
func (t SoundTheme) Valid() bool {
	switch t {
	case ThemeSpectrum, ThemePulse, ThemeWave, ThemeEnergy:
		return true
	}
	return false
}

// SoundReactiveConfig holds Sound Reactive parameters.
type SoundReactiveConfig struct {
	Theme       SoundTheme `json:"theme"`
	Sensitivity float64    `json:"sensitivity"`

	// Smoothing is the weight of the previous value in the exponential
	// filter, 0 (none) to just below 1.
	Smoothing float64 `json:"smoothing"`
}

// Validate checks the config.
func (c SoundReactiveConfig) Validate() error {
	if !c.Theme.Valid() {
		return invalid("unknown theme %q", c.Theme)
	}
	if c.Smoothing < 0 || c.Smoothing >= 1 {
		return invalid("smoothing must be in [0, 1)")
	}
	return checkUnit("sensitivity", c.Sensitivity)
}

// SoundReactive colours lights from an external audio level signal.
type SoundReactive struct {
	cfg    params[SoundReactiveConfig]
	source LevelSource
	tick   time.Duration
}

// NewSoundReactive creates the show reading from source, which may be nil
// until SetSource is called.
func NewSoundReactive(source LevelSource) *SoundReactive {
	return &SoundReactive{
		cfg: params[SoundReactiveConfig]{v: SoundReactiveConfig{
			Theme:       ThemeSpectrum,
			Sensitivity: 0.5,
			Smoothing:   0.7,
		}},
		source: source,
		tick:   soundTick,
	}
}

// SetSource replaces the audio level source. Call it before Run.
func (s *SoundReactive) SetSource(source LevelSource) {
	s.source = source
}

func (s *SoundReactive) Describe() Info {
	return Info{
		ID:          "sound-reactive",
		Name:        "Sound Reactive",
		Description: "Lights respond to music and sound",
		Icon:        "waveform",
	}
}

func (s *SoundReactive) Config() SoundReactiveConfig             { return s.cfg.get() }
func (s *SoundReactive) SetConfig(cfg SoundReactiveConfig) error { return s.cfg.set(cfg) }
func (s *SoundReactive) Settings() any                           { return s.cfg.get() }
func (s *SoundReactive) UpdateSettings(data []byte) error        { return s.cfg.merge(data) }

func (s *SoundReactive) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return color.HSB{}, false
}

// Run fails with ErrNoLevelSource when no source is set. While the source
// has no signal the show idles without writing.
func (s *SoundReactive) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	if len(lights) == 0 {
		return nil
	}
	if s.source == nil {
		return ErrNoLevelSource
	}

	var amplitude, frequency float64
	for ctx.Err() == nil {
		level, ok := s.source.Level()
		if ok {
			cfg := s.cfg.get()
			amplitude = amplitude*cfg.Smoothing + level.Amplitude*(1-cfg.Smoothing)
			frequency = frequency*cfg.Smoothing + level.Frequency*(1-cfg.Smoothing)
			scaled := min(1, amplitude*cfg.Sensitivity*2)

			for i, l := range lights {
				if ctx.Err() != nil {
					return nil
				}
				out.emit(l.ID, themeColor(cfg.Theme, scaled, frequency, i, len(lights)))
			}
		}
		if !sleep(ctx, s.tick) {
			return nil
		}
	}
	return nil
}

// themeColor maps a smoothed, scaled audio level to a colour for light i
// of n. It is deterministic.
func themeColor(theme SoundTheme, amplitude, frequency float64, i, n int) color.HSB {
	switch theme {
	case ThemePulse:
		return color.New(280, 80, max(10, amplitude*100))
	case ThemeWave:
		hue := color.WrapHue((normalisedIndex(i, n) + amplitude) * 360)
		return color.New(hue, 100, max(30, 50+amplitude*50))
	case ThemeEnergy:
		return color.New(energyHue(amplitude), 100, max(20, amplitude*100))
	default:
		return color.New(frequency*300, 90, max(20, amplitude*100))
	}
}

// energyHue picks a hue band by loudness. Within the loud and medium bands
// the hue slides towards red as amplitude rises.
func energyHue(amplitude float64) float64 {
	switch {
	case amplitude > 0.7:
		return 30 * (1 - (amplitude-0.7)/0.3)
	case amplitude > 0.4:
		return 60 - 30*(amplitude-0.4)/0.3
	default:
		return 240
	}
}
