package show

import (
	"context"
	"math"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
)

// Ocean wave shape.
const (
	oceanSteps          = 20
	oceanPhaseStep      = 0.05
	oceanBaseHue        = 180
	oceanHueSwing       = 20
	oceanSaturation     = 85
	oceanBaseBrightness = 40
)

// OceanWavesConfig holds Ocean Waves parameters.
type OceanWavesConfig struct {
	// Speed is the time for one wave, in seconds.
	Speed float64 `json:"speed"`

	// WaveIntensity scales the brightness swing, 0 to 1.
	WaveIntensity float64 `json:"wave_intensity"`
}

// Validate checks the config.
func (c OceanWavesConfig) Validate() error {
	if err := checkUnit("wave_intensity", c.WaveIntensity); err != nil {
		return err
	}
	return checkInterval("speed", c.Speed)
}

// OceanWaves rolls blue and teal waves down the canvas.
type OceanWaves struct {
	cfg params[OceanWavesConfig]
}

// NewOceanWaves creates the show with default parameters.
func NewOceanWaves() *OceanWaves {
	return &OceanWaves{cfg: params[OceanWavesConfig]{v: OceanWavesConfig{
		Speed:         2,
		WaveIntensity: 0.7,
	}}}
}

func (s *OceanWaves) Describe() Info {
	return Info{
		ID:          "ocean-waves",
		Name:        "Ocean Waves",
		Description: "Blue/teal colors undulate smoothly",
		Icon:        "water.waves",
	}
}

func (s *OceanWaves) Config() OceanWavesConfig             { return s.cfg.get() }
func (s *OceanWaves) SetConfig(cfg OceanWavesConfig) error { return s.cfg.set(cfg) }
func (s *OceanWaves) Settings() any                        { return s.cfg.get() }
func (s *OceanWaves) UpdateSettings(data []byte) error     { return s.cfg.merge(data) }

func (s *OceanWaves) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return color.HSB{}, false
}

func (s *OceanWaves) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	if len(lights) == 0 {
		return nil
	}

	bounds := canvas.BoundsOf(lights)
	wavePhase := 0.0
	for ctx.Err() == nil {
		cfg := s.cfg.get()
		for _, l := range lights {
			if ctx.Err() != nil {
				return nil
			}
			out.emit(l.ID, oceanColor(wavePhase, bounds.NormY(l.Position.Y), cfg.WaveIntensity))
		}
		wavePhase += oceanPhaseStep
		if !sleep(ctx, seconds(cfg.Speed/oceanSteps)) {
			return nil
		}
	}
	return nil
}

func oceanColor(wavePhase, normY, intensity float64) color.HSB {
	wave := math.Sin((wavePhase + normY) * 2 * math.Pi)
	return color.New(
		oceanBaseHue+wave*oceanHueSwing,
		oceanSaturation,
		oceanBaseBrightness+wave*oceanBaseBrightness*intensity,
	)
}
