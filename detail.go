package darkroom

import (
	"github.com/gogpu/darkroom/internal/color"
	"github.com/gogpu/darkroom/internal/filter"
)

// DetailPass sharpens with an unsharp mask: the difference between the
// image and its Gaussian blur, scaled by amount, is added back. Amount 0
// is identity.
type DetailPass struct {
	linearPass
	enabledFlag

	amount float64
	radius float64
}

// NewDetailPass creates a detail pass with amount 0 and a 2 pixel
// radius.
func NewDetailPass() *DetailPass { return &DetailPass{radius: 2} }

func (p *DetailPass) Name() string { return PassDetail }

// Amount returns the sharpening strength.
func (p *DetailPass) Amount() float64 { return p.amount }

// Radius returns the blur radius in pixels.
func (p *DetailPass) Radius() float64 { return p.radius }

// SetAmount sets the sharpening strength; 0 disables sharpening.
func (p *DetailPass) SetAmount(amount float64) { p.amount = amount }

// SetRadius sets the blur radius in pixels.
func (p *DetailPass) SetRadius(radius float64) { p.radius = radius }

func (p *DetailPass) IsIdentity() bool { return p.amount == 0 || p.radius <= 0 }

func (p *DetailPass) ShaderIncludes() []string { return nil }

func (p *DetailPass) FragmentSource() string {
	return `struct DetailParams {
    amount: f32,
    radius: f32,
}
@group(1) @binding(0) var<uniform> detail: DetailParams;
@group(1) @binding(1) var blurred: texture_2d<f32>;
@group(1) @binding(2) var blurred_sampler: sampler;

fn apply_detail(rgb: vec3<f32>, uv: vec2<f32>) -> vec3<f32> {
    let soft = textureSample(blurred, blurred_sampler, uv).rgb;
    return rgb + (rgb - soft) * detail.amount;
}
`
}

func (p *DetailPass) Apply(dst, src *ImageBuffer) error {
	blurred := filter.GaussianBlurRGBA(src.Pix, src.Width, src.Height, p.radius)
	amount := float32(p.amount)

	for i := 0; i < len(src.Pix); i += 4 {
		dst.Pix[i+0] = color.ClampFinite(src.Pix[i+0] + (src.Pix[i+0]-blurred[i+0])*amount)
		dst.Pix[i+1] = color.ClampFinite(src.Pix[i+1] + (src.Pix[i+1]-blurred[i+1])*amount)
		dst.Pix[i+2] = color.ClampFinite(src.Pix[i+2] + (src.Pix[i+2]-blurred[i+2])*amount)
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return nil
}
