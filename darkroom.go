// Package darkroom is a photo-processing pipeline engine. It turns a
// loaded image into an edited one through a fixed sequence of passes
// (white balance, exposure, color grade, tone map, gamut, detail,
// effects), re-executing only the passes whose parameters changed.
//
// Shader sources for the GPU path are assembled by the shader
// sub-package; intermediate results live in a budget-bounded texture
// cache; heavy analysis (histograms, exports, thumbnails) runs on a
// background worker pool. The profile sub-package observes all of it.
//
// Engine is not safe for concurrent use. Create one Engine per editing
// session, or use external synchronization.
package darkroom

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/darkroom/internal/gpu"
	"github.com/gogpu/darkroom/profile"
	"github.com/gogpu/darkroom/shader"
	"github.com/gogpu/darkroom/worker"
)

// Engine owns the full processing stack: pass pipeline, shader
// composer, texture cache, worker pool, and profiler.
type Engine struct {
	opts Options

	composer *shader.Composer
	backend  *gpu.Backend
	textures *gpu.TextureCache
	profiler *profile.Profiler
	pool     *worker.Pool
	executor *Executor

	provider gpucontext.DeviceProvider

	whiteBalance *WhiteBalancePass
	exposure     *ExposurePass
	colorGrade   *ColorGradePass
	toneMap      *ToneMapPass
	gamut        *GamutPass
	detail       *DetailPass
	effects      *EffectsPass

	closed bool
}

// New creates an engine with the default pass pipeline.
func New(opts ...Option) (*Engine, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	profiler := profile.New(profile.Config{
		SampleWindow: o.SampleWindow,
		TargetFPS:    o.TargetFPS,
	})

	composerOpts := []shader.Option{}
	if o.DebugShaderComments {
		composerOpts = append(composerOpts, shader.WithDebugComments())
	}
	composer := shader.NewComposer(composerOpts...)

	backend := gpu.NewBackend()
	if o.InitGPU {
		if err := backend.Init(); err != nil {
			return nil, fmt.Errorf("darkroom: gpu init: %w", err)
		}
		if info := backend.Info(); info != nil {
			slogger().Info("gpu adapter selected", "adapter", info.String())
		}
	}

	textures := gpu.NewTextureCache(backend, gpu.CacheConfig{
		BudgetMB: o.TextureBudgetMB,
		Format:   gpu.FormatRGBA32F,
		Recorder: profiler,
	})

	pool := worker.NewPool(worker.Config{
		Workers:     o.WorkerCount,
		QueueSize:   o.QueueSize,
		TaskTimeout: o.TaskTimeout,
	})

	e := &Engine{
		opts:     o,
		composer: composer,
		backend:  backend,
		textures: textures,
		profiler: profiler,
		pool:     pool,
		executor: NewExecutor(composer, textures, profiler, o.ValidateShaders),

		whiteBalance: NewWhiteBalancePass(),
		exposure:     NewExposurePass(),
		colorGrade:   NewColorGradePass(),
		toneMap:      NewToneMapPass(),
		gamut:        NewGamutPass(),
		detail:       NewDetailPass(),
		effects:      NewEffectsPass(),
	}

	for _, p := range []Pass{
		e.whiteBalance, e.exposure, e.colorGrade,
		e.toneMap, e.gamut, e.detail, e.effects,
	} {
		if err := e.executor.Register(p); err != nil {
			pool.Dispose()
			return nil, err
		}
	}
	return e, nil
}

// SetDeviceProvider shares an externally owned GPU device with the
// engine, typically from a window system. The engine stops managing its
// own adapter.
func (e *Engine) SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	if provider == nil {
		return ErrNilProvider
	}
	if e.closed {
		return ErrEngineClosed
	}
	e.provider = provider
	slogger().Info("using shared gpu device", "surface_format", provider.SurfaceFormat())
	return nil
}

// Load decodes img into the working buffer and invalidates the
// pipeline.
func (e *Engine) Load(img image.Image) error {
	if e.closed {
		return ErrEngineClosed
	}
	buf, err := FromImage(img)
	if err != nil {
		return err
	}
	e.executor.SetSource(buf)
	return nil
}

// LoadBuffer installs an already-decoded working buffer. The engine
// takes ownership.
func (e *Engine) LoadBuffer(buf *ImageBuffer) error {
	if e.closed {
		return ErrEngineClosed
	}
	if buf == nil || buf.Width <= 0 || buf.Height <= 0 {
		return ErrInvalidDimensions
	}
	e.executor.SetSource(buf)
	return nil
}

// Process runs the pipeline and returns the result buffer. The buffer
// is owned by the engine; Clone before mutating.
func (e *Engine) Process() (*ImageBuffer, error) {
	if e.closed {
		return nil, ErrEngineClosed
	}
	return e.executor.Execute()
}

// Render processes and encodes the result to an 8-bit sRGB image.
func (e *Engine) Render() (*image.RGBA, error) {
	out, err := e.Process()
	if err != nil {
		return nil, err
	}
	return out.ToRGBA(), nil
}

// Histogram processes the image and computes channel histograms on the
// worker pool. bins <= 0 selects the default resolution.
func (e *Engine) Histogram(ctx context.Context, bins int) (*worker.Histogram, error) {
	out, err := e.Process()
	if err != nil {
		return nil, err
	}
	task := worker.NewHistogramTask(snapshotPix(out), out.Width, out.Height, bins)
	result, err := e.submitAndWait(ctx, task)
	if err != nil {
		return nil, err
	}
	return result.(*worker.Histogram), nil
}

// Export processes the image and encodes it on the worker pool.
func (e *Engine) Export(ctx context.Context, format string) (*worker.Export, error) {
	out, err := e.Process()
	if err != nil {
		return nil, err
	}
	task := worker.NewExportTask(snapshotPix(out), out.Width, out.Height, format)
	result, err := e.submitAndWait(ctx, task)
	if err != nil {
		return nil, err
	}
	return result.(*worker.Export), nil
}

// Thumbnail processes the image and scales it on the worker pool so the
// longer edge is at most maxEdge.
func (e *Engine) Thumbnail(ctx context.Context, maxEdge int) (*image.RGBA, error) {
	out, err := e.Process()
	if err != nil {
		return nil, err
	}
	task := worker.NewThumbnailTask(snapshotPix(out), out.Width, out.Height, maxEdge)
	result, err := e.submitAndWait(ctx, task)
	if err != nil {
		return nil, err
	}
	return result.(*image.RGBA), nil
}

func (e *Engine) submitAndWait(ctx context.Context, task worker.Task) (any, error) {
	pending, err := e.pool.Submit(task)
	if err != nil {
		return nil, err
	}
	return pending.Wait(ctx)
}

// snapshotPix copies pixel data out of an engine-owned buffer so a
// background task never races the executor.
func snapshotPix(buf *ImageBuffer) []float32 {
	pix := make([]float32, len(buf.Pix))
	copy(pix, buf.Pix)
	return pix
}

// Pipeline returns the pass names in execution order.
func (e *Engine) Pipeline() []string { return e.executor.PassNames() }

// SetPassEnabled toggles a pass by name.
func (e *Engine) SetPassEnabled(name string, enabled bool) error {
	p, err := e.executor.Pass(name)
	if err != nil {
		return err
	}
	p.SetEnabled(enabled)
	return e.executor.MarkDirty(name)
}

// SetExposure sets the exposure in stops.
func (e *Engine) SetExposure(ev float64) {
	e.exposure.SetEV(ev)
	e.markDirty(PassExposure)
}

// SetWhiteBalance sets color temperature in kelvin and green-magenta
// tint.
func (e *Engine) SetWhiteBalance(kelvin, tint float64) {
	e.whiteBalance.SetTemperature(kelvin)
	e.whiteBalance.SetTint(tint)
	e.markDirty(PassWhiteBalance)
}

// SetContrast sets the contrast multiplier; 1 is neutral.
func (e *Engine) SetContrast(c float64) {
	e.colorGrade.SetContrast(c)
	e.markDirty(PassColorGrade)
}

// SetSaturation sets the saturation multiplier; 1 is neutral.
func (e *Engine) SetSaturation(s float64) {
	e.colorGrade.SetSaturation(s)
	e.markDirty(PassColorGrade)
}

// SetToneMapOperator selects the HDR-to-display transform.
func (e *Engine) SetToneMapOperator(op ToneMapOperator) {
	e.toneMap.SetOperator(op)
	e.markDirty(PassToneMap)
}

// SetGamutMode selects how out-of-range colors are mapped.
func (e *Engine) SetGamutMode(mode GamutMode) {
	e.gamut.SetMode(mode)
	e.markDirty(PassGamut)
}

// SetDetail sets unsharp mask strength and radius.
func (e *Engine) SetDetail(amount, radius float64) {
	e.detail.SetAmount(amount)
	e.detail.SetRadius(radius)
	e.markDirty(PassDetail)
}

// SetVignette sets the vignette strength in [0, 1].
func (e *Engine) SetVignette(v float64) {
	e.effects.SetVignette(v)
	e.markDirty(PassEffects)
}

// SetGrain sets the film grain strength in [0, 1].
func (e *Engine) SetGrain(g float64) {
	e.effects.SetGrain(g)
	e.markDirty(PassEffects)
}

func (e *Engine) markDirty(name string) {
	// Registered at construction; lookup cannot fail.
	_ = e.executor.MarkDirty(name)
}

// Profile returns a point-in-time performance snapshot.
func (e *Engine) Profile() profile.Snapshot { return e.profiler.Profile() }

// Recommendations analyzes the current profile for tuning suggestions.
func (e *Engine) Recommendations() []profile.Recommendation {
	return e.profiler.Recommendations()
}

// SetProfilingEnabled toggles telemetry recording.
func (e *Engine) SetProfilingEnabled(enabled bool) { e.profiler.SetEnabled(enabled) }

// Composer exposes the shader composer for registering custom library
// modules. Call InvalidatePrograms after changing the library.
func (e *Engine) Composer() *shader.Composer { return e.composer }

// InvalidatePrograms drops composed pass shaders and re-runs everything
// on the next Process.
func (e *Engine) InvalidatePrograms() { e.executor.InvalidateAll() }

// TextureStats returns texture cache occupancy.
func (e *Engine) TextureStats() gpu.CacheStats { return e.textures.Stats() }

// WorkerStats returns worker pool occupancy.
func (e *Engine) WorkerStats() worker.Stats { return e.pool.Stats() }

// Close releases the worker pool, texture cache, and GPU resources.
// Close is safe to call multiple times.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true

	e.pool.Dispose()
	e.textures.Dispose()
	e.backend.Close()
}
