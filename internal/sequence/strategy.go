// Package sequence orders light endpoints for shows whose effect travels
// across the canvas.
//
// Linear strategies are stable sorts on one axis, so lights sharing a
// coordinate keep their input order. NearestNeighbor is a greedy tour: a
// heuristic, not a shortest-path solver. Every strategy returns each input
// id exactly once.
package sequence

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nerrad567/luminary-core/internal/canvas"
)

// ErrUnknownStrategy is returned when a strategy name is not recognised.
var ErrUnknownStrategy = errors.New("sequence: unknown strategy")

// Strategy names an ordering over lights.
type Strategy string

const (
	LeftToRight     Strategy = "left-to-right"
	RightToLeft     Strategy = "right-to-left"
	TopToBottom     Strategy = "top-to-bottom"
	BottomToTop     Strategy = "bottom-to-top"
	NearestNeighbor Strategy = "nearest-neighbor"

	// Custom returns lights in the order supplied by the caller. No saved
	// ordering is kept here; callers wanting a hand-made order pass the
	// lights already arranged.
	Custom Strategy = "custom"
)

// All lists every strategy in display order.
var All = []Strategy{LeftToRight, RightToLeft, TopToBottom, BottomToTop, NearestNeighbor, Custom}

type strategyInfo struct {
	label       string
	description string
}

var catalogue = map[Strategy]strategyInfo{
	LeftToRight:     {"Left to Right", "Lights ordered from left to right by X position"},
	RightToLeft:     {"Right to Left", "Lights ordered from right to left by X position"},
	TopToBottom:     {"Top to Bottom", "Lights ordered from top to bottom by Y position"},
	BottomToTop:     {"Bottom to Top", "Lights ordered from bottom to top by Y position"},
	NearestNeighbor: {"Nearest Neighbor", "Each light travels to its nearest neighbor"},
	Custom:          {"Custom Order", "Lights keep the order they were supplied in"},
}

// ParseStrategy resolves a strategy from its id or its display label.
func ParseStrategy(s string) (Strategy, error) {
	key := strings.TrimSpace(s)
	if _, ok := catalogue[Strategy(key)]; ok {
		return Strategy(key), nil
	}
	for st, info := range catalogue {
		if strings.EqualFold(info.label, key) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	_, ok := catalogue[s]
	return ok
}

// Label returns the human-readable name.
func (s Strategy) Label() string { return catalogue[s].label }

// Description returns a one-line explanation of the ordering.
func (s Strategy) Description() string { return catalogue[s].description }

// Sequence returns the light ids in the order this strategy visits them.
// An unknown strategy behaves like Custom.
func (s Strategy) Sequence(lights []canvas.Light) []string {
	switch s {
	case LeftToRight:
		return sortedIDs(lights, func(a, b canvas.Light) int { return cmpFloat(a.Position.X, b.Position.X) })
	case RightToLeft:
		return sortedIDs(lights, func(a, b canvas.Light) int { return cmpFloat(b.Position.X, a.Position.X) })
	case TopToBottom:
		return sortedIDs(lights, func(a, b canvas.Light) int { return cmpFloat(a.Position.Y, b.Position.Y) })
	case BottomToTop:
		return sortedIDs(lights, func(a, b canvas.Light) int { return cmpFloat(b.Position.Y, a.Position.Y) })
	case NearestNeighbor:
		return nearestNeighbor(lights)
	default:
		return canvas.IDs(lights)
	}
}

func sortedIDs(lights []canvas.Light, cmp func(a, b canvas.Light) int) []string {
	sorted := slices.Clone(lights)
	slices.SortStableFunc(sorted, cmp)
	return canvas.IDs(sorted)
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// nearestNeighbor starts at the leftmost light and repeatedly hops to the
// closest unvisited one. Ties go to the earlier input.
func nearestNeighbor(lights []canvas.Light) []string {
	if len(lights) == 0 {
		return []string{}
	}

	visited := make([]bool, len(lights))
	order := make([]string, 0, len(lights))

	current := 0
	for i := 1; i < len(lights); i++ {
		if lights[i].Position.X < lights[current].Position.X {
			current = i
		}
	}

	for {
		visited[current] = true
		order = append(order, lights[current].ID)
		if len(order) == len(lights) {
			return order
		}

		from := lights[current].Position
		next := -1
		best := 0.0
		for i, l := range lights {
			if visited[i] {
				continue
			}
			d := from.Distance(l.Position)
			if next == -1 || d < best {
				next, best = i, d
			}
		}
		current = next
	}
}
