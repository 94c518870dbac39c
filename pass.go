package darkroom

// Pass names in fixed pipeline order. Registration in this order keeps
// color math correct: scene-referred adjustments run before display
// transforms, spatial and stylistic effects run last.
const (
	PassWhiteBalance = "whitebalance"
	PassExposure     = "exposure"
	PassColorGrade   = "colorgrade"
	PassToneMap      = "tonemap"
	PassGamut        = "gamut"
	PassDetail       = "detail"
	PassEffects      = "effects"
)

// ColorSpace describes the encoding a pass expects or produces.
type ColorSpace uint8

const (
	// ColorSpaceLinear is scene-referred linear light.
	ColorSpaceLinear ColorSpace = iota
	// ColorSpaceDisplay is display-referred, produced by tone mapping.
	ColorSpaceDisplay
)

// Pass is one pipeline stage. A pass owns its parameters; the executor
// owns ordering, skipping, and intermediate buffers.
//
// Implementations are not safe for concurrent use; the engine serializes
// parameter changes and execution.
type Pass interface {
	// Name is the unique pipeline identifier for this pass.
	Name() string

	// Enabled reports whether the pass participates in execution.
	Enabled() bool
	// SetEnabled toggles participation. The engine marks the pass dirty.
	SetEnabled(enabled bool)

	// IsIdentity reports whether the current parameters make the pass a
	// no-op. Identity passes are skipped without touching pixels.
	IsIdentity() bool

	// InputSpace and OutputSpace describe the pass's color encoding
	// contract.
	InputSpace() ColorSpace
	OutputSpace() ColorSpace

	// ShaderIncludes names the library modules the fragment source
	// depends on.
	ShaderIncludes() []string
	// FragmentSource is the pass's WGSL fragment body.
	FragmentSource() string

	// Apply runs the pass on the CPU reference path, reading src and
	// writing dst. Buffers have identical dimensions and never alias.
	Apply(dst, src *ImageBuffer) error
}

// linearPass provides the common ColorSpace contract for passes that
// stay in scene-referred linear light.
type linearPass struct{}

func (linearPass) InputSpace() ColorSpace  { return ColorSpaceLinear }
func (linearPass) OutputSpace() ColorSpace { return ColorSpaceLinear }

// enabledFlag provides the Enabled/SetEnabled pair.
type enabledFlag struct {
	disabled bool
}

func (f *enabledFlag) Enabled() bool           { return !f.disabled }
func (f *enabledFlag) SetEnabled(enabled bool) { f.disabled = !enabled }
