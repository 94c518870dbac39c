package darkroom

import (
	"fmt"
	"time"

	"github.com/gogpu/darkroom/internal/gpu"
	"github.com/gogpu/darkroom/profile"
	"github.com/gogpu/darkroom/shader"
)

// passSlot is one arena entry in the executor. Slots are indexed by
// registration order; that order is the pipeline order.
type passSlot struct {
	pass      Pass
	profileID profile.PassID

	dirty bool

	// output is the slot's cached result. When the pass was skipped it
	// aliases the previous slot's output, tracked by owned.
	output *ImageBuffer
	owned  bool

	// program is the composed shader for this pass, built lazily and
	// kept until the composer's library changes.
	program string
}

// Executor runs registered passes over a source buffer in registration
// order. It re-executes only from the first dirty pass: clean prefixes
// reuse their cached outputs, disabled and identity passes forward
// their input untouched.
//
// Executor is not safe for concurrent use.
type Executor struct {
	composer *shader.Composer
	textures *gpu.TextureCache
	profiler *profile.Profiler
	validate bool

	slots []*passSlot
	index map[string]int

	source      *ImageBuffer
	sourceDirty bool
	final       *ImageBuffer
}

// NewExecutor creates an executor. textures may be nil to skip GPU
// uploads; profiler may be nil to skip telemetry.
func NewExecutor(composer *shader.Composer, textures *gpu.TextureCache, profiler *profile.Profiler, validate bool) *Executor {
	return &Executor{
		composer: composer,
		textures: textures,
		profiler: profiler,
		validate: validate,
		index:    make(map[string]int),
	}
}

// Register appends a pass to the pipeline. Pipeline order is
// registration order and cannot be changed afterward.
func (e *Executor) Register(p Pass) error {
	if p == nil {
		return ErrNilPass
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrNilPass)
	}
	if _, exists := e.index[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePass, name)
	}

	slot := &passSlot{pass: p, dirty: true}
	if e.profiler != nil {
		slot.profileID = e.profiler.RegisterPass(name)
	}
	e.index[name] = len(e.slots)
	e.slots = append(e.slots, slot)
	return nil
}

// Pass returns the registered pass by name.
func (e *Executor) Pass(name string) (Pass, error) {
	i, ok := e.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPassNotFound, name)
	}
	return e.slots[i].pass, nil
}

// PassNames returns the pipeline order.
func (e *Executor) PassNames() []string {
	names := make([]string, len(e.slots))
	for i, slot := range e.slots {
		names[i] = slot.pass.Name()
	}
	return names
}

// SetSource replaces the input buffer and invalidates the whole
// pipeline.
func (e *Executor) SetSource(buf *ImageBuffer) {
	e.source = buf
	e.sourceDirty = true
}

// MarkDirty flags a pass for re-execution. Everything downstream of it
// re-runs on the next Execute.
func (e *Executor) MarkDirty(name string) error {
	i, ok := e.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPassNotFound, name)
	}
	e.slots[i].dirty = true
	return nil
}

// InvalidateAll flags every pass and drops composed programs. Call
// after changing the composer's module library.
func (e *Executor) InvalidateAll() {
	for _, slot := range e.slots {
		slot.dirty = true
		slot.program = ""
	}
}

// Execute runs the pipeline and returns the final buffer. The returned
// buffer is owned by the executor; callers must Clone before mutating.
//
// When no pass is dirty the cached result is returned unchanged and the
// frame is counted as a redundant render.
func (e *Executor) Execute() (*ImageBuffer, error) {
	if e.source == nil {
		return nil, ErrNoImage
	}

	first := e.firstDirty()
	if first == len(e.slots) && e.final != nil {
		if e.profiler != nil {
			e.profiler.RecordRedundantRender()
		}
		return e.final, nil
	}

	frameStart := time.Now()

	input := e.source
	if first > 0 {
		input = e.slots[first-1].output
	}

	for i := first; i < len(e.slots); i++ {
		slot := e.slots[i]
		name := slot.pass.Name()
		start := time.Now()

		if !slot.pass.Enabled() || slot.pass.IsIdentity() {
			slot.output = input
			slot.owned = false
			slot.dirty = false
			if e.profiler != nil {
				e.profiler.EndPass(slot.profileID, start, true)
			}
			input = slot.output
			continue
		}

		if err := e.ensureProgram(slot); err != nil {
			return nil, err
		}

		// Never write into the buffer callers may still hold as the
		// last result: a failing pass must not corrupt it.
		out := slot.output
		if !slot.owned || out == nil || out == e.final || out.Width != input.Width || out.Height != input.Height {
			var err error
			out, err = NewImageBuffer(input.Width, input.Height)
			if err != nil {
				return nil, err
			}
		}

		if err := slot.pass.Apply(out, input); err != nil {
			return nil, fmt.Errorf("darkroom: pass %s: %w", name, err)
		}
		e.uploadResult(name, out)

		slot.output = out
		slot.owned = true
		slot.dirty = false
		if e.profiler != nil {
			e.profiler.EndPass(slot.profileID, start, false)
		}
		input = slot.output
	}

	e.sourceDirty = false
	e.final = input
	if e.profiler != nil {
		e.profiler.EndFrame(frameStart)
	}
	return e.final, nil
}

// firstDirty returns the index of the first pass that must re-run, or
// len(slots) when the cached result is current.
func (e *Executor) firstDirty() int {
	if e.sourceDirty || e.final == nil {
		return 0
	}
	for i, slot := range e.slots {
		if slot.dirty {
			return i
		}
	}
	return len(e.slots)
}

// ensureProgram composes and optionally validates the slot's shader.
func (e *Executor) ensureProgram(slot *passSlot) error {
	if slot.program != "" || e.composer == nil {
		return nil
	}
	name := slot.pass.Name()

	program, err := e.composer.CreateShader(slot.pass.FragmentSource(), slot.pass.ShaderIncludes()...)
	if err != nil {
		return fmt.Errorf("darkroom: compose shader for %s: %w", name, err)
	}
	if e.validate {
		if err := e.composer.Validate(program); err != nil {
			return fmt.Errorf("darkroom: validate shader for %s: %w", name, err)
		}
	}
	slot.program = program
	return nil
}

// Program returns the composed shader for a pass, building it on
// demand.
func (e *Executor) Program(name string) (string, error) {
	i, ok := e.index[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrPassNotFound, name)
	}
	slot := e.slots[i]
	if err := e.ensureProgram(slot); err != nil {
		return "", err
	}
	return slot.program, nil
}

// uploadResult mirrors a pass output into the texture cache. Failures
// are logged, not fatal: the CPU result is still valid.
func (e *Executor) uploadResult(name string, out *ImageBuffer) {
	if e.textures == nil {
		return
	}
	tex, err := e.textures.GetCached("pass:"+name, out.Width, out.Height)
	if err != nil {
		slogger().Warn("texture cache lookup failed", "pass", name, "error", err)
		return
	}
	if err := e.textures.UpdateFromPixels(tex, out.Bytes()); err != nil {
		slogger().Warn("texture upload failed", "pass", name, "error", err)
	}
}
