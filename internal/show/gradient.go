package show

import (
	"context"
	"math"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
)

// gradientSteps is the number of ticks per full gradient cycle.
const gradientSteps = 20

// GradientDirection selects the axis a gradient flows along.
type GradientDirection string

const (
	GradientHorizontal GradientDirection = "horizontal"
	GradientVertical   GradientDirection = "vertical"
	GradientRadial     GradientDirection = "radial"
)

// Valid reports whether d is a known direction.
func (d GradientDirection) Valid() bool {
	switch d {
	case GradientHorizontal, GradientVertical, GradientRadial:
		return true
	}
	return false
}

// GradientFlowConfig holds Gradient Flow parameters.
type GradientFlowConfig struct {
	Start color.HSB `json:"start"`
	End   color.HSB `json:"end"`

	// Speed is the time for one full cycle, in seconds.
	Speed     float64           `json:"speed"`
	Direction GradientDirection `json:"direction"`
}

// Validate checks the config.
func (c GradientFlowConfig) Validate() error {
	if err := checkColor("start", c.Start); err != nil {
		return err
	}
	if err := checkColor("end", c.End); err != nil {
		return err
	}
	if !c.Direction.Valid() {
		return invalid("unknown direction %q", c.Direction)
	}
	return checkInterval("speed", c.Speed)
}

// GradientFlow scrolls a two-colour gradient across the canvas.
type GradientFlow struct {
	cfg params[GradientFlowConfig]
}

// NewGradientFlow creates the show with default parameters.
func NewGradientFlow() *GradientFlow {
	return &GradientFlow{cfg: params[GradientFlowConfig]{v: GradientFlowConfig{
		Start:     color.Blue,
		End:       color.Red,
		Speed:     2,
		Direction: GradientHorizontal,
	}}}
}

func (s *GradientFlow) Describe() Info {
	return Info{
		ID:          "gradient-flow",
		Name:        "Gradient Flow",
		Description: "Smooth color gradient flows across spatial layout",
		Icon:        "chart.line.uptrend.xyaxis",
	}
}

func (s *GradientFlow) Config() GradientFlowConfig             { return s.cfg.get() }
func (s *GradientFlow) SetConfig(cfg GradientFlowConfig) error { return s.cfg.set(cfg) }
func (s *GradientFlow) Settings() any                          { return s.cfg.get() }
func (s *GradientFlow) UpdateSettings(data []byte) error       { return s.cfg.merge(data) }

func (s *GradientFlow) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return color.HSB{}, false
}

func (s *GradientFlow) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	if len(lights) == 0 {
		return nil
	}

	bounds := canvas.BoundsOf(lights)
	for ctx.Err() == nil {
		for step := 0; step < gradientSteps; step++ {
			if ctx.Err() != nil {
				return nil
			}
			cfg := s.cfg.get()
			phase := float64(step) / gradientSteps
			for _, l := range lights {
				out.emit(l.ID, gradientColor(cfg, bounds, l.Position, phase))
			}
			if !sleep(ctx, seconds(cfg.Speed/gradientSteps)) {
				return nil
			}
		}
	}
	return nil
}

// gradientColor returns the colour at pos for the given phase in [0, 1).
func gradientColor(cfg GradientFlowConfig, b canvas.Bounds, pos canvas.Point, phase float64) color.HSB {
	var v float64
	switch cfg.Direction {
	case GradientVertical:
		v = b.NormY(pos.Y)
	case GradientRadial:
		v = b.NormRadial(pos)
	default:
		v = b.NormX(pos.X)
	}
	return color.Lerp(cfg.Start, cfg.End, math.Mod(v+phase, 1))
}
