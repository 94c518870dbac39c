// Package color provides colorimetry helpers shared by the processing passes.
package color

import "math"

// Epsilon is the floor applied to divisors so that a zero denominator
// never produces Inf or NaN in pass math.
const Epsilon = 1e-6

// SRGBToLinear converts a single sRGB-encoded channel value to linear light.
func SRGBToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow((float64(v)+0.055)/1.055, 2.4))
}

// LinearToSRGB converts a single linear-light channel value to sRGB encoding.
// The input is clamped to [0, 1] first.
func LinearToSRGB(v float32) float32 {
	v = Clamp01(v)
	if v <= 0.0031308 {
		return v * 12.92
	}
	return float32(1.055*math.Pow(float64(v), 1.0/2.4) - 0.055)
}

// Luminance returns the Rec.709 relative luminance of a linear RGB triple.
func Luminance(r, g, b float32) float32 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// Clamp01 clamps v to [0, 1], mapping NaN to 0.
func Clamp01(v float32) float32 {
	if v != v { // NaN
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampFinite maps NaN and -Inf to 0 and +Inf to MaxFloat32, and floors
// negative values at 0. Linear-light channel values are never negative.
func ClampFinite(v float32) float32 {
	if v != v { // NaN
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > math.MaxFloat32 {
		return math.MaxFloat32
	}
	return v
}

// SafeDiv divides a by b with an epsilon floor on the divisor magnitude.
func SafeDiv(a, b float32) float32 {
	if b >= 0 && b < Epsilon {
		b = Epsilon
	} else if b < 0 && b > -Epsilon {
		b = -Epsilon
	}
	return a / b
}
