// Package color provides the HSB colour model used by light shows.
//
// Hue is expressed in degrees [0, 360), saturation and brightness as
// percentages [0, 100]. These are the units the light controllers accept,
// so no conversion happens between a show and the device boundary.
//
// Values are clamped (never wrapped) when a colour is produced with New or
// Clamp. Hue wrapping is only applied explicitly via WrapHue, by effects that
// compute a hue from a rotating phase.
package color

import "math"

// Range limits for HSB components.
const (
	MaxHue        = 360.0
	MaxSaturation = 100.0
	MaxBrightness = 100.0
)

// maxHueInclusive is the largest representable hue strictly below 360.
var maxHueInclusive = math.Nextafter(MaxHue, 0)

// HSB is a colour in hue/saturation/brightness form.
type HSB struct {
	Hue        float64 `json:"hue" yaml:"hue"`
	Saturation float64 `json:"saturation" yaml:"saturation"`
	Brightness float64 `json:"brightness" yaml:"brightness"`
}

// Common colours used as show defaults.
var (
	White  = HSB{Hue: 0, Saturation: 0, Brightness: 100}
	Black  = HSB{Hue: 0, Saturation: 0, Brightness: 0}
	Red    = HSB{Hue: 0, Saturation: 100, Brightness: 100}
	Orange = HSB{Hue: 35, Saturation: 100, Brightness: 100}
	Yellow = HSB{Hue: 55, Saturation: 100, Brightness: 100}
	Green  = HSB{Hue: 120, Saturation: 100, Brightness: 100}
	Blue   = HSB{Hue: 220, Saturation: 100, Brightness: 100}
	Purple = HSB{Hue: 280, Saturation: 65, Brightness: 90}
	Pink   = HSB{Hue: 340, Saturation: 75, Brightness: 100}
)

// New returns a clamped colour.
func New(hue, saturation, brightness float64) HSB {
	return HSB{Hue: hue, Saturation: saturation, Brightness: brightness}.Clamp()
}

// Clamp returns c with every component forced into its valid range.
// NaN components become 0.
func (c HSB) Clamp() HSB {
	return HSB{
		Hue:        clamp(c.Hue, 0, maxHueInclusive),
		Saturation: clamp(c.Saturation, 0, MaxSaturation),
		Brightness: clamp(c.Brightness, 0, MaxBrightness),
	}
}

// Valid reports whether every component is inside its range.
func (c HSB) Valid() bool {
	return c.Hue >= 0 && c.Hue < MaxHue &&
		c.Saturation >= 0 && c.Saturation <= MaxSaturation &&
		c.Brightness >= 0 && c.Brightness <= MaxBrightness
}

// WithBrightness returns a copy of c with a new (clamped) brightness.
func (c HSB) WithBrightness(brightness float64) HSB {
	c.Brightness = clamp(brightness, 0, MaxBrightness)
	return c
}

// WithSaturation returns a copy of c with a new (clamped) saturation.
func (c HSB) WithSaturation(saturation float64) HSB {
	c.Saturation = clamp(saturation, 0, MaxSaturation)
	return c
}

// WrapHue maps any angle in degrees into [0, 360).
func WrapHue(hue float64) float64 {
	if math.IsNaN(hue) || math.IsInf(hue, 0) {
		return 0
	}
	h := math.Mod(hue, MaxHue)
	if h < 0 {
		h += MaxHue
	}
	if h >= MaxHue {
		h = 0
	}
	return h
}

// Lerp linearly interpolates every component from a to b.
//
// Hue is interpolated numerically rather than around the colour wheel, so
// a red→blue gradient passes through green. t outside [0, 1] extrapolates;
// the result is clamped.
func Lerp(a, b HSB, t float64) HSB {
	return HSB{
		Hue:        a.Hue + (b.Hue-a.Hue)*t,
		Saturation: a.Saturation + (b.Saturation-a.Saturation)*t,
		Brightness: a.Brightness + (b.Brightness-a.Brightness)*t,
	}.Clamp()
}

// Blend mixes base towards accent by factor, which is clamped to [0, 1].
func Blend(base, accent HSB, factor float64) HSB {
	return Lerp(base, accent, clamp(factor, 0, 1))
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
