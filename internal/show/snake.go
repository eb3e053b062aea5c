package show

import (
	"context"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/color"
	"github.com/nerrad567/luminary-core/internal/sequence"
	"github.com/nerrad567/luminary-core/internal/writequeue"
)

// Snake movement.
const (
	snakeSettle        = 500 * time.Millisecond
	snakeMinDelay      = 0.05
	snakeTurnEvery     = 12
	snakeMinFade       = 0.05
	snakeMinBrightness = 10
)

// SnakeConfig holds Snake parameters.
type SnakeConfig struct {
	Snake      color.HSB `json:"snake"`
	Background color.HSB `json:"background"`

	// Speed is the time per move, in seconds.
	Speed      float64           `json:"speed"`
	TailLength int               `json:"tail_length"`
	Ordering   sequence.Strategy `json:"ordering"`
}

// Validate checks the config.
func (c SnakeConfig) Validate() error {
	if err := checkColor("snake", c.Snake); err != nil {
		return err
	}
	if err := checkColor("background", c.Background); err != nil {
		return err
	}
	if c.TailLength < 1 {
		return invalid("tail_length must be at least 1")
	}
	if !c.Ordering.Valid() {
		return invalid("unknown ordering %q", c.Ordering)
	}
	return checkInterval("speed", c.Speed)
}

// Snake moves a fading segment of lights back and forth along the
// sequence, changing direction at random.
type Snake struct {
	cfg    params[SnakeConfig]
	settle time.Duration
	rand   func() *rand.Rand
}

// NewSnake creates the show with default parameters.
func NewSnake() *Snake {
	return &Snake{
		cfg: params[SnakeConfig]{v: SnakeConfig{
			Snake:      color.Green,
			Background: color.Black,
			Speed:      0.5,
			TailLength: 5,
			Ordering:   sequence.NearestNeighbor,
		}},
		settle: snakeSettle,
		rand:   newRand,
	}
}

func (s *Snake) Describe() Info {
	return Info{
		ID:          "snake",
		Name:        "Snake",
		Description: "A colorful snake slithers across your lights",
		Icon:        "arrow.turn.up.right",
	}
}

func (s *Snake) Config() SnakeConfig              { return s.cfg.get() }
func (s *Snake) SetConfig(cfg SnakeConfig) error  { return s.cfg.set(cfg) }
func (s *Snake) Settings() any                    { return s.cfg.get() }
func (s *Snake) UpdateSettings(data []byte) error { return s.cfg.merge(data) }

func (s *Snake) OrderingStrategy() sequence.Strategy { return s.cfg.get().Ordering }

func (s *Snake) Sequence(lights []canvas.Light) []string {
	return s.OrderingStrategy().Sequence(lights)
}

func (s *Snake) PreviewColor(string, canvas.Point, time.Duration) (color.HSB, bool) {
	return color.HSB{}, false
}

func (s *Snake) Run(ctx context.Context, lights []canvas.Light, out Output) error {
	if err := out.prepare(); err != nil {
		return err
	}
	order := s.Sequence(lights)
	if len(order) == 0 {
		return nil
	}

	initial := make([]*writequeue.Handle, len(order))
	background := s.cfg.get().Background
	for i, id := range order {
		initial[i] = out.emit(id, background)
	}
	if !awaitAll(ctx, initial) || !sleep(ctx, s.settle) {
		return nil
	}

	body := &snakeBody{n: len(order), segments: []int{0}, forward: true}
	r := s.rand()
	for ctx.Err() == nil {
		cfg := s.cfg.get()
		limit := min(max(1, cfg.TailLength), len(order))

		body.advance(r)
		for _, idx := range body.trim(limit) {
			if !await(ctx, out.emit(order[idx], cfg.Background)) {
				return nil
			}
		}

		handles := make([]*writequeue.Handle, 0, len(body.segments))
		for offset, idx := range body.segments {
			handles = append(handles, out.emit(order[idx], segmentColor(cfg.Snake, offset, limit)))
		}
		if !awaitAll(ctx, handles) {
			return nil
		}

		if !sleep(ctx, seconds(max(snakeMinDelay, cfg.Speed))) {
			return nil
		}
	}
	return nil
}

// snakeBody tracks which sequence positions the snake occupies, head first.
// An index appears at most once.
type snakeBody struct {
	n        int
	head     int
	segments []int
	moves    int
	forward  bool
}

// advance moves the head one step. Every snakeTurnEvery moves the direction
// is re-rolled.
func (b *snakeBody) advance(r *rand.Rand) {
	b.moves++
	if b.n <= 1 {
		return
	}
	if b.moves%snakeTurnEvery == 0 {
		b.forward = r.IntN(2) == 0
	}
	step := 1
	if !b.forward {
		step = -1
	}
	b.head = (b.head + step + b.n) % b.n

	if i := slices.Index(b.segments, b.head); i >= 0 {
		b.segments = slices.Delete(b.segments, i, i+1)
	}
	b.segments = slices.Insert(b.segments, 0, b.head)
}

// trim drops tail segments beyond limit and returns them, nearest the tail
// last.
func (b *snakeBody) trim(limit int) []int {
	var dropped []int
	for len(b.segments) > limit {
		last := len(b.segments) - 1
		dropped = append(dropped, b.segments[last])
		b.segments = b.segments[:last]
	}
	return dropped
}

// segmentColor fades the snake colour from the head towards the tail.
func segmentColor(c color.HSB, offset, limit int) color.HSB {
	fade := max(snakeMinFade, 1-float64(offset)/float64(limit))
	return c.WithBrightness(max(snakeMinBrightness, c.Brightness*fade))
}
