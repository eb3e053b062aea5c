package canvas

import (
	"math"
	"testing"
)

func TestBoundsOf(t *testing.T) {
	lights := []Light{
		{ID: "a", Position: Point{X: 10, Y: 40}},
		{ID: "b", Position: Point{X: -5, Y: 20}},
		{ID: "c", Position: Point{X: 30, Y: 0}},
	}

	b := BoundsOf(lights)
	if b.Min != (Point{X: -5, Y: 0}) {
		t.Errorf("Min = %+v, want {-5 0}", b.Min)
	}
	if b.Max != (Point{X: 30, Y: 40}) {
		t.Errorf("Max = %+v, want {30 40}", b.Max)
	}
	if b.Width() != 35 || b.Height() != 40 {
		t.Errorf("size = %vx%v, want 35x40", b.Width(), b.Height())
	}
}

func TestBounds_Normalisation(t *testing.T) {
	b := Bounds{Min: Point{X: 0, Y: 0}, Max: Point{X: 100, Y: 50}}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"x min", b.NormX(0), 0},
		{"x mid", b.NormX(50), 0.5},
		{"x max", b.NormX(100), 1},
		{"y quarter", b.NormY(12.5), 0.25},
		{"radial centre", b.NormRadial(Point{X: 50, Y: 25}), 0},
		{"radial corner", b.NormRadial(Point{X: 100, Y: 50}), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestBounds_DegenerateAxis(t *testing.T) {
	lights := []Light{
		{ID: "a", Position: Point{X: 5, Y: 10}},
		{ID: "b", Position: Point{X: 5, Y: 20}},
	}
	b := BoundsOf(lights)

	if got := b.NormX(5); got != 0 {
		t.Errorf("NormX on zero-width box = %v, want 0", got)
	}
	if got := b.NormY(20); got != 1 {
		t.Errorf("NormY = %v, want 1", got)
	}

	single := BoundsOf(lights[:1])
	if got := single.NormRadial(Point{X: 5, Y: 10}); got != 0 {
		t.Errorf("NormRadial on point box = %v, want 0", got)
	}
}

func TestBoundsOf_Empty(t *testing.T) {
	if b := BoundsOf(nil); b != (Bounds{}) {
		t.Errorf("BoundsOf(nil) = %+v, want zero", b)
	}
}
