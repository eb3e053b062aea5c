// Package canvas holds the 2-D placement model for light endpoints.
//
// Positions are supplied by the caller for each session; this package does
// not persist or discover them.
package canvas

import "math"

// Point is a position on the canvas.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Light is an addressable light endpoint at a canvas position.
type Light struct {
	ID       string `json:"id"`
	Position Point  `json:"position"`
}

// Bounds is the axis-aligned bounding box of a set of lights.
type Bounds struct {
	Min Point
	Max Point
}

// BoundsOf computes the bounding box of lights. An empty set yields the
// zero Bounds.
func BoundsOf(lights []Light) Bounds {
	if len(lights) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: lights[0].Position, Max: lights[0].Position}
	for _, l := range lights[1:] {
		b.Min.X = math.Min(b.Min.X, l.Position.X)
		b.Min.Y = math.Min(b.Min.Y, l.Position.Y)
		b.Max.X = math.Max(b.Max.X, l.Position.X)
		b.Max.Y = math.Max(b.Max.Y, l.Position.Y)
	}
	return b
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

// Center returns the midpoint of the box.
func (b Bounds) Center() Point {
	return Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

// NormX maps x into [0, 1] across the box. A zero-width box maps to 0.
func (b Bounds) NormX(x float64) float64 {
	return normalise(x, b.Min.X, b.Width())
}

// NormY maps y into [0, 1] across the box. A zero-height box maps to 0.
func (b Bounds) NormY(y float64) float64 {
	return normalise(y, b.Min.Y, b.Height())
}

// NormRadial returns the distance of p from the box centre divided by the
// half-diagonal, so corners map to 1. A degenerate box maps to 0.
func (b Bounds) NormRadial(p Point) float64 {
	half := math.Hypot(b.Width(), b.Height()) / 2
	if half <= 0 {
		return 0
	}
	return math.Min(1, p.Distance(b.Center())/half)
}

func normalise(v, lo, span float64) float64 {
	if span <= 0 {
		return 0
	}
	return (v - lo) / span
}

// IDs returns the light ids in input order.
func IDs(lights []Light) []string {
	ids := make([]string, len(lights))
	for i, l := range lights {
		ids[i] = l.ID
	}
	return ids
}
