package color

import "math"

// ReferenceKelvin is the white point at which white balance is an identity.
const ReferenceKelvin = 6500.0

// KelvinToRGB approximates the linear RGB chromaticity of a blackbody
// radiator at the given correlated color temperature. The result is
// normalized so that the maximum channel is 1.0.
//
// The approximation is the piecewise fit by Tanner Helland, valid for
// roughly 1000K to 40000K. Inputs are clamped to that range.
func KelvinToRGB(kelvin float64) (r, g, b float32) {
	if kelvin < 1000 {
		kelvin = 1000
	}
	if kelvin > 40000 {
		kelvin = 40000
	}
	t := kelvin / 100

	var rf, gf, bf float64

	if t <= 66 {
		rf = 255
	} else {
		rf = 329.698727446 * math.Pow(t-60, -0.1332047592)
	}

	if t <= 66 {
		gf = 99.4708025861*math.Log(t) - 161.1195681661
	} else {
		gf = 288.1221695283 * math.Pow(t-60, -0.0755148492)
	}

	switch {
	case t >= 66:
		bf = 255
	case t <= 19:
		bf = 0
	default:
		bf = 138.5177312231*math.Log(t-10) - 305.0447927307
	}

	rf = clamp255(rf) / 255
	gf = clamp255(gf) / 255
	bf = clamp255(bf) / 255

	// Normalize against the maximum channel so a pure white stays white
	// at the chosen temperature.
	maxc := math.Max(rf, math.Max(gf, bf))
	if maxc < Epsilon {
		maxc = Epsilon
	}
	return float32(rf / maxc), float32(gf / maxc), float32(bf / maxc)
}

// WhiteBalanceGains returns per-channel linear gains that neutralize a
// capture illuminant at the given temperature, relative to the 6500K
// reference white. Tint in [-1, 1] shifts along the green-magenta axis.
func WhiteBalanceGains(kelvin, tint float64) (r, g, b float32) {
	sr, sg, sb := KelvinToRGB(kelvin)
	nr, ng, nb := KelvinToRGB(ReferenceKelvin)

	r = SafeDiv(nr, sr)
	g = SafeDiv(ng, sg)
	b = SafeDiv(nb, sb)

	// Positive tint pushes green down (toward magenta), negative pushes up.
	g *= float32(1 - 0.25*tint)

	// Renormalize so overall luminance is preserved.
	lum := Luminance(r, g, b)
	inv := SafeDiv(1, lum)
	return r * inv, g * inv, b * inv
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
