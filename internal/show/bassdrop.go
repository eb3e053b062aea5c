package show

import (
	"context"
	"math"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
	"github.com/nerrad567/luminary-core/internal/writequeue"
)

const (
	bassTick            = 100 * time.Millisecond
	bassMinBrightness   = 15
	bassBuildSwing      = 40
	bassShimmerSwing    = 30
	bassShimmerRate     = 12
	bassHighlightBoost  = 10
	bassFlashSaturation = 10
)

// BassDropConfig holds Bass Drop parameters. Durations are in seconds.
type BassDropConfig struct {
	Primary color.HSB `json:"primary"`
	Accent  color.HSB `json:"accent"`

	DropInterval    float64 `json:"drop_interval"`
	BuildUpDuration float64 `json:"build_up_duration"`
	FlashDuration   float64 `json:"flash_duration"`
	ShimmerAmount   float64 `json:"shimmer_amount"`
}

// Validate checks the config.
func (c BassDropConfig) Validate() error {
	if err := checkColor("primary", c.Primary); err != nil {
		return err
	}
	if err := checkColor("accent", c.Accent); err != nil {
		return err
	}
	if err := checkInterval("drop_interval", c.DropInterval); err != nil {
		return err
	}
	if err := checkInterval("build_up_duration", c.BuildUpDuration); err != nil {
		return err
	}
	if err := checkInterval("flash_duration", c.FlashDuration); err != nil {
		return err
	}
	return checkUnit("shimmer_amount", c.ShimmerAmount)
}

// BassDrop builds brightness up to a periodic accent-colour flash.
type BassDrop struct {
	cfg  params[BassDropConfig]
	tick time.Duration
}

// NewBassDrop creates the show with default parameters.
func NewBassDrop() *BassDrop {
	return &BassDrop{
		cfg: params[BassDropConfig]{v: BassDropConfig{
			Primary:         color.Blue,
			Accent:          color.Pink,
			DropInterval:    6,
			BuildUpDuration: 3,
			FlashDuration:   0.8,
			ShimmerAmount:   0.3,
		}},
		tick: bassTick,
	}
}

func (s *BassDrop) Describe() Info {
	return Info{
		ID:          "bass-drop",
		Name:        "Bass Drop",
		Description: "Build-up pulses and explosive drops for dance floors",
		Icon:        "speaker.wave.3",
	}
}

func (s *BassDrop) Config() BassDropConfig             { return s.cfg.get() }
func (s *BassDrop) SetConfig(cfg BassDropConfig) error { return s.cfg.set(cfg) }
func (s *BassDrop) Settings() any                      { return s.cfg.get() }
func (s *BassDrop) UpdateSettings(data []byte) error   { return s.cfg.merge(data) }

func (s *BassDrop) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return color.HSB{}, false
}

func (s *BassDrop) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	if len(lights) == 0 {
		return nil
	}

	// Simulated time advances by the nominal tick, not wall time.
	step := s.tick.Seconds()
	var state bassState
	handles := make([]*writequeue.Handle, 0, len(lights))
	for ctx.Err() == nil {
		cfg := s.cfg.get()
		state.advance(cfg, step)

		handles = handles[:0]
		for i, l := range lights {
			handles = append(handles, out.emit(l.ID, state.color(cfg, i, len(lights))))
		}
		if !awaitAll(ctx, handles) {
			return nil
		}
		if !sleep(ctx, s.tick) {
			return nil
		}
	}
	return nil
}

// bassState tracks time since the last drop and how much flash remains.
type bassState struct {
	sinceDrop float64
	flashLeft float64
}

func (b *bassState) advance(cfg BassDropConfig, step float64) {
	b.sinceDrop += step
	b.flashLeft -= step
	if b.sinceDrop >= cfg.DropInterval {
		b.sinceDrop = 0
		b.flashLeft = cfg.FlashDuration
	}
}

func (b *bassState) color(cfg BassDropConfig, i, n int) color.HSB {
	if b.flashLeft > 0 {
		fade := max(0, b.flashLeft/cfg.FlashDuration)
		return color.HSB{
			Hue:        cfg.Accent.Hue,
			Saturation: min(color.MaxSaturation, cfg.Accent.Saturation+bassFlashSaturation),
			Brightness: min(color.MaxBrightness, color.MaxBrightness*fade),
		}
	}

	progress := min(1, b.sinceDrop/cfg.BuildUpDuration)
	wave := (math.Sin(progress*2*math.Pi) + 1) / 2
	shimmer := (math.Sin((b.sinceDrop+normalisedIndex(i, n))*bassShimmerRate) + 1) / 2
	boost := wave*bassBuildSwing + shimmer*cfg.ShimmerAmount*bassShimmerSwing
	brightness := min(color.MaxBrightness, max(bassMinBrightness, cfg.Primary.Brightness+boost))

	if i%3 == 0 {
		return color.HSB{
			Hue:        cfg.Accent.Hue,
			Saturation: cfg.Accent.Saturation,
			Brightness: min(color.MaxBrightness, brightness+bassHighlightBoost),
		}
	}
	return cfg.Primary.WithBrightness(brightness)
}
