package darkroom

import "github.com/gogpu/darkroom/internal/color"

// ToneMapOperator selects the HDR-to-display transform.
type ToneMapOperator uint8

const (
	// ToneMapOff passes linear values through unchanged.
	ToneMapOff ToneMapOperator = iota
	// ToneMapReinhard is the classic v/(1+v) curve.
	ToneMapReinhard
	// ToneMapACES is the ACES filmic fit.
	ToneMapACES
)

func (op ToneMapOperator) String() string {
	switch op {
	case ToneMapOff:
		return "off"
	case ToneMapReinhard:
		return "reinhard"
	case ToneMapACES:
		return "aces"
	default:
		return "unknown"
	}
}

// ToneMapPass compresses scene-referred linear light into display
// range. The off operator is identity.
type ToneMapPass struct {
	enabledFlag

	operator ToneMapOperator
}

// NewToneMapPass creates a tone mapping pass with the operator off.
func NewToneMapPass() *ToneMapPass { return &ToneMapPass{} }

func (p *ToneMapPass) Name() string { return PassToneMap }

// Operator returns the active transform.
func (p *ToneMapPass) Operator() ToneMapOperator { return p.operator }

// SetOperator selects the transform.
func (p *ToneMapPass) SetOperator(op ToneMapOperator) { p.operator = op }

func (p *ToneMapPass) IsIdentity() bool { return p.operator == ToneMapOff }

func (p *ToneMapPass) InputSpace() ColorSpace  { return ColorSpaceLinear }
func (p *ToneMapPass) OutputSpace() ColorSpace { return ColorSpaceDisplay }

func (p *ToneMapPass) ShaderIncludes() []string { return []string{"tonemap"} }

func (p *ToneMapPass) FragmentSource() string {
	return `struct ToneMapParams {
    operator: u32,
}
@group(1) @binding(0) var<uniform> tm: ToneMapParams;

fn apply_tonemap(rgb: vec3<f32>) -> vec3<f32> {
    if (tm.operator == 1u) {
        return tonemap_reinhard(rgb);
    }
    if (tm.operator == 2u) {
        return tonemap_aces(rgb);
    }
    return rgb;
}
`
}

func (p *ToneMapPass) Apply(dst, src *ImageBuffer) error {
	var curve func(float32) float32
	switch p.operator {
	case ToneMapReinhard:
		curve = reinhard
	case ToneMapACES:
		curve = acesFit
	default:
		copy(dst.Pix, src.Pix)
		return nil
	}

	for i := 0; i < len(src.Pix); i += 4 {
		dst.Pix[i+0] = curve(src.Pix[i+0])
		dst.Pix[i+1] = curve(src.Pix[i+1])
		dst.Pix[i+2] = curve(src.Pix[i+2])
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return nil
}

func reinhard(v float32) float32 {
	v = color.ClampFinite(v)
	return v / (1 + v)
}

// acesFit is the Narkowicz polynomial approximation of the ACES RRT+ODT.
func acesFit(v float32) float32 {
	v = color.ClampFinite(v)
	num := v * (2.51*v + 0.03)
	den := v*(2.43*v+0.59) + 0.14
	return color.Clamp01(color.SafeDiv(num, den))
}
