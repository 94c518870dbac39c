package darkroom

import "github.com/gogpu/darkroom/internal/color"

// EffectsPass applies stylistic finishing: a radial vignette and film
// grain. Both at zero strength is identity.
type EffectsPass struct {
	enabledFlag

	vignette float64
	grain    float64
	seed     uint32
}

// NewEffectsPass creates an effects pass with no vignette or grain.
func NewEffectsPass() *EffectsPass { return &EffectsPass{seed: 1} }

func (p *EffectsPass) Name() string { return PassEffects }

// Vignette returns the vignette strength in [0, 1].
func (p *EffectsPass) Vignette() float64 { return p.vignette }

// Grain returns the grain strength in [0, 1].
func (p *EffectsPass) Grain() float64 { return p.grain }

// SetVignette sets the vignette strength; 0 disables it.
func (p *EffectsPass) SetVignette(v float64) { p.vignette = v }

// SetGrain sets the grain strength; 0 disables it.
func (p *EffectsPass) SetGrain(g float64) { p.grain = g }

// SetSeed reseeds the grain hash so successive frames decorrelate.
func (p *EffectsPass) SetSeed(seed uint32) { p.seed = seed }

func (p *EffectsPass) IsIdentity() bool { return p.vignette == 0 && p.grain == 0 }

func (p *EffectsPass) InputSpace() ColorSpace  { return ColorSpaceDisplay }
func (p *EffectsPass) OutputSpace() ColorSpace { return ColorSpaceDisplay }

func (p *EffectsPass) ShaderIncludes() []string { return []string{"noise"} }

func (p *EffectsPass) FragmentSource() string {
	return `struct EffectsParams {
    vignette: f32,
    grain_strength: f32,
    seed: u32,
}
@group(1) @binding(0) var<uniform> fx: EffectsParams;

fn apply_effects(rgb: vec3<f32>, uv: vec2<f32>) -> vec3<f32> {
    let centered = uv - vec2<f32>(0.5);
    let falloff = 1.0 - fx.vignette * dot(centered, centered) * 4.0;
    let shaded = rgb * max(falloff, 0.0);
    let n = grain(uv, fx.seed) * fx.grain_strength;
    return shaded + vec3<f32>(n);
}
`
}

func (p *EffectsPass) Apply(dst, src *ImageBuffer) error {
	vignette := float32(p.vignette)
	grain := float32(p.grain)
	w, h := src.Width, src.Height

	cx := float32(w-1) / 2
	cy := float32(h-1) / 2
	// Normalize so a corner pixel sits at distance 1.
	invR2 := float32(1) / (cx*cx + cy*cy + 1)

	for y := 0; y < h; y++ {
		dy := float32(y) - cy
		for x := 0; x < w; x++ {
			dx := float32(x) - cx
			i := (y*w + x) * 4

			falloff := float32(1)
			if vignette != 0 {
				falloff = 1 - vignette*(dx*dx+dy*dy)*invR2
				if falloff < 0 {
					falloff = 0
				}
			}

			var n float32
			if grain != 0 {
				// Signed hash noise in [-0.5, 0.5], scaled down so
				// full strength stays subtle.
				n = (hashNoise(uint32(x), uint32(y), p.seed) - 0.5) * grain * 0.12
			}

			dst.Pix[i+0] = color.Clamp01(src.Pix[i+0]*falloff + n)
			dst.Pix[i+1] = color.Clamp01(src.Pix[i+1]*falloff + n)
			dst.Pix[i+2] = color.Clamp01(src.Pix[i+2]*falloff + n)
			dst.Pix[i+3] = src.Pix[i+3]
		}
	}
	return nil
}

// hashNoise is a PCG-style integer hash mapped to [0, 1).
func hashNoise(x, y, seed uint32) float32 {
	h := x*374761393 + y*668265263 + seed*2246822519
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return float32(h) / float32(1<<32)
}
