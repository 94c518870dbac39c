package darkroom

import "github.com/gogpu/darkroom/internal/color"

// GamutMode selects how out-of-range values are brought back into the
// displayable [0, 1] cube.
type GamutMode uint8

const (
	// GamutOff leaves values untouched.
	GamutOff GamutMode = iota
	// GamutClip clamps each channel independently. Cheap, hue-shifting.
	GamutClip
	// GamutCompress desaturates out-of-range colors toward their
	// luminance until they fit. Hue-preserving.
	GamutCompress
)

func (m GamutMode) String() string {
	switch m {
	case GamutOff:
		return "off"
	case GamutClip:
		return "clip"
	case GamutCompress:
		return "compress"
	default:
		return "unknown"
	}
}

// GamutPass maps out-of-range colors into the display cube. Off is
// identity.
type GamutPass struct {
	enabledFlag

	mode GamutMode
}

// NewGamutPass creates a gamut mapping pass in clip mode.
func NewGamutPass() *GamutPass { return &GamutPass{mode: GamutClip} }

func (p *GamutPass) Name() string { return PassGamut }

// Mode returns the active mapping mode.
func (p *GamutPass) Mode() GamutMode { return p.mode }

// SetMode selects the mapping mode.
func (p *GamutPass) SetMode(mode GamutMode) { p.mode = mode }

func (p *GamutPass) IsIdentity() bool { return p.mode == GamutOff }

func (p *GamutPass) InputSpace() ColorSpace  { return ColorSpaceDisplay }
func (p *GamutPass) OutputSpace() ColorSpace { return ColorSpaceDisplay }

func (p *GamutPass) ShaderIncludes() []string { return []string{"gamut"} }

func (p *GamutPass) FragmentSource() string {
	return `struct GamutParams {
    mode: u32,
}
@group(1) @binding(0) var<uniform> gm: GamutParams;

fn apply_gamut(rgb: vec3<f32>) -> vec3<f32> {
    if (gm.mode == 1u) {
        return gamut_clip(rgb);
    }
    if (gm.mode == 2u) {
        return gamut_compress(rgb);
    }
    return rgb;
}
`
}

func (p *GamutPass) Apply(dst, src *ImageBuffer) error {
	switch p.mode {
	case GamutClip:
		for i := 0; i < len(src.Pix); i += 4 {
			dst.Pix[i+0] = color.Clamp01(src.Pix[i+0])
			dst.Pix[i+1] = color.Clamp01(src.Pix[i+1])
			dst.Pix[i+2] = color.Clamp01(src.Pix[i+2])
			dst.Pix[i+3] = src.Pix[i+3]
		}
	case GamutCompress:
		for i := 0; i < len(src.Pix); i += 4 {
			r, g, b := compressPixel(src.Pix[i+0], src.Pix[i+1], src.Pix[i+2])
			dst.Pix[i+0] = r
			dst.Pix[i+1] = g
			dst.Pix[i+2] = b
			dst.Pix[i+3] = src.Pix[i+3]
		}
	default:
		copy(dst.Pix, src.Pix)
	}
	return nil
}

// compressPixel desaturates toward luminance just enough to bring every
// channel inside [0, 1], then clips what remains (achromatic overflow).
func compressPixel(r, g, b float32) (float32, float32, float32) {
	r, g, b = color.ClampFinite(r), color.ClampFinite(g), color.ClampFinite(b)
	luma := color.Luminance(r, g, b)

	// Scale factor t in [0, 1] pulling each channel toward luma.
	t := float32(1)
	for _, v := range [3]float32{r, g, b} {
		if v > 1 && v > luma {
			if s := (1 - luma) / (v - luma); s < t {
				t = s
			}
		}
		if v < 0 && v < luma {
			if s := luma / (luma - v); s < t {
				t = s
			}
		}
	}

	r = luma + (r-luma)*t
	g = luma + (g-luma)*t
	b = luma + (b-luma)*t
	return color.Clamp01(r), color.Clamp01(g), color.Clamp01(b)
}
