package darkroom

import (
	"math"

	"github.com/gogpu/darkroom/internal/color"
)

// ExposurePass scales linear light by 2^EV. EV 0 is identity.
type ExposurePass struct {
	linearPass
	enabledFlag

	ev float64
}

// NewExposurePass creates an exposure pass at EV 0.
func NewExposurePass() *ExposurePass { return &ExposurePass{} }

func (p *ExposurePass) Name() string { return PassExposure }

// EV returns the current exposure value in stops.
func (p *ExposurePass) EV() float64 { return p.ev }

// SetEV sets the exposure in stops.
func (p *ExposurePass) SetEV(ev float64) { p.ev = ev }

func (p *ExposurePass) IsIdentity() bool { return p.ev == 0 }

func (p *ExposurePass) ShaderIncludes() []string { return nil }

func (p *ExposurePass) FragmentSource() string {
	return `struct ExposureParams {
    gain: f32,
}
@group(1) @binding(0) var<uniform> exposure: ExposureParams;

fn apply_exposure(rgb: vec3<f32>) -> vec3<f32> {
    return rgb * exposure.gain;
}
`
}

func (p *ExposurePass) Apply(dst, src *ImageBuffer) error {
	gain := float32(math.Exp2(p.ev))
	for i := 0; i < len(src.Pix); i += 4 {
		dst.Pix[i+0] = color.ClampFinite(src.Pix[i+0] * gain)
		dst.Pix[i+1] = color.ClampFinite(src.Pix[i+1] * gain)
		dst.Pix[i+2] = color.ClampFinite(src.Pix[i+2] * gain)
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return nil
}
