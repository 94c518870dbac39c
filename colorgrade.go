package darkroom

import "github.com/gogpu/darkroom/internal/color"

// gradePivot is the linear-light gray the contrast curve rotates
// around. Mid-gray rather than 0.5: contrast on linear data pivoting at
// 0.5 crushes shadows.
const gradePivot = 0.18

// ColorGradePass applies contrast around mid-gray and saturation toward
// or away from luminance. Contrast 1 and saturation 1 is identity.
type ColorGradePass struct {
	linearPass
	enabledFlag

	contrast   float64
	saturation float64
}

// NewColorGradePass creates a neutral color grade pass.
func NewColorGradePass() *ColorGradePass {
	return &ColorGradePass{contrast: 1, saturation: 1}
}

func (p *ColorGradePass) Name() string { return PassColorGrade }

// Contrast returns the contrast multiplier.
func (p *ColorGradePass) Contrast() float64 { return p.contrast }

// Saturation returns the saturation multiplier.
func (p *ColorGradePass) Saturation() float64 { return p.saturation }

// SetContrast sets the contrast multiplier; 1 is neutral.
func (p *ColorGradePass) SetContrast(c float64) { p.contrast = c }

// SetSaturation sets the saturation multiplier; 1 is neutral, 0 is
// grayscale.
func (p *ColorGradePass) SetSaturation(s float64) { p.saturation = s }

func (p *ColorGradePass) IsIdentity() bool {
	return p.contrast == 1 && p.saturation == 1
}

func (p *ColorGradePass) ShaderIncludes() []string { return []string{"colorspace"} }

func (p *ColorGradePass) FragmentSource() string {
	return `struct GradeParams {
    contrast: f32,
    saturation: f32,
}
@group(1) @binding(0) var<uniform> grade: GradeParams;

fn apply_grade(rgb: vec3<f32>) -> vec3<f32> {
    let pivot = 0.18;
    let contrasted = (rgb - vec3<f32>(pivot)) * grade.contrast + vec3<f32>(pivot);
    let luma = vec3<f32>(luminance(contrasted));
    return mix(luma, contrasted, grade.saturation);
}
`
}

func (p *ColorGradePass) Apply(dst, src *ImageBuffer) error {
	contrast := float32(p.contrast)
	saturation := float32(p.saturation)

	for i := 0; i < len(src.Pix); i += 4 {
		r := (src.Pix[i+0]-gradePivot)*contrast + gradePivot
		g := (src.Pix[i+1]-gradePivot)*contrast + gradePivot
		b := (src.Pix[i+2]-gradePivot)*contrast + gradePivot

		luma := color.Luminance(r, g, b)
		r = luma + (r-luma)*saturation
		g = luma + (g-luma)*saturation
		b = luma + (b-luma)*saturation

		dst.Pix[i+0] = color.ClampFinite(r)
		dst.Pix[i+1] = color.ClampFinite(g)
		dst.Pix[i+2] = color.ClampFinite(b)
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return nil
}
