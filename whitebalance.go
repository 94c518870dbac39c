package darkroom

import "github.com/gogpu/darkroom/internal/color"

// WhiteBalancePass applies per-channel gains derived from a correlated
// color temperature and a green-magenta tint. The reference temperature
// with zero tint is identity.
type WhiteBalancePass struct {
	linearPass
	enabledFlag

	kelvin float64
	tint   float64
}

// NewWhiteBalancePass creates a white balance pass at the reference
// temperature.
func NewWhiteBalancePass() *WhiteBalancePass {
	return &WhiteBalancePass{kelvin: color.ReferenceKelvin}
}

func (p *WhiteBalancePass) Name() string { return PassWhiteBalance }

// Temperature returns the current correlated color temperature in kelvin.
func (p *WhiteBalancePass) Temperature() float64 { return p.kelvin }

// Tint returns the green-magenta tint, negative toward green.
func (p *WhiteBalancePass) Tint() float64 { return p.tint }

// SetTemperature sets the correlated color temperature in kelvin.
func (p *WhiteBalancePass) SetTemperature(kelvin float64) { p.kelvin = kelvin }

// SetTint sets the green-magenta tint in [-1, 1].
func (p *WhiteBalancePass) SetTint(tint float64) { p.tint = tint }

func (p *WhiteBalancePass) IsIdentity() bool {
	return p.kelvin == color.ReferenceKelvin && p.tint == 0
}

func (p *WhiteBalancePass) ShaderIncludes() []string { return []string{"colorspace"} }

func (p *WhiteBalancePass) FragmentSource() string {
	return `struct WhiteBalanceParams {
    gains: vec3<f32>,
}
@group(1) @binding(0) var<uniform> wb: WhiteBalanceParams;

fn apply_white_balance(rgb: vec3<f32>) -> vec3<f32> {
    return rgb * wb.gains;
}
`
}

func (p *WhiteBalancePass) Apply(dst, src *ImageBuffer) error {
	gr, gg, gb := color.WhiteBalanceGains(p.kelvin, p.tint)
	for i := 0; i < len(src.Pix); i += 4 {
		dst.Pix[i+0] = color.ClampFinite(src.Pix[i+0] * gr)
		dst.Pix[i+1] = color.ClampFinite(src.Pix[i+1] * gg)
		dst.Pix[i+2] = color.ClampFinite(src.Pix[i+2] * gb)
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return nil
}
