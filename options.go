package darkroom

import "time"

// Defaults for engine construction.
const (
	DefaultTextureBudgetMB = 256
	DefaultQueueSize       = 64
	DefaultTaskTimeout     = 10 * time.Second
	DefaultTargetFPS       = 60
	DefaultSampleWindow    = 120
)

// Options holds engine construction parameters. Zero values select the
// documented defaults; use DefaultOptions for an explicit baseline.
type Options struct {
	// TextureBudgetMB bounds the intermediate texture cache.
	TextureBudgetMB int

	// WorkerCount is the background pool size; derived from the CPU
	// count when zero.
	WorkerCount int

	// QueueSize bounds the background task queue.
	QueueSize int

	// TaskTimeout bounds each background task. Negative disables the
	// timeout.
	TaskTimeout time.Duration

	// TargetFPS is the frame rate the profiler measures against.
	TargetFPS float64

	// SampleWindow is the profiler's rolling window size.
	SampleWindow int

	// DebugShaderComments annotates composed shaders with include
	// markers.
	DebugShaderComments bool

	// ValidateShaders runs each composed shader through the WGSL
	// front-end before first use.
	ValidateShaders bool

	// InitGPU requests a real adapter and device at construction.
	// When false the engine runs with logical textures only, which is
	// the headless and test configuration.
	InitGPU bool
}

// DefaultOptions returns the baseline engine configuration.
func DefaultOptions() Options {
	return Options{
		TextureBudgetMB: DefaultTextureBudgetMB,
		QueueSize:       DefaultQueueSize,
		TaskTimeout:     DefaultTaskTimeout,
		TargetFPS:       DefaultTargetFPS,
		SampleWindow:    DefaultSampleWindow,
	}
}

// Option mutates Options during New.
type Option func(*Options)

// WithTextureBudget sets the intermediate texture cache budget in
// megabytes.
func WithTextureBudget(mb int) Option {
	return func(o *Options) { o.TextureBudgetMB = mb }
}

// WithWorkers sets the background pool size.
func WithWorkers(n int) Option {
	return func(o *Options) { o.WorkerCount = n }
}

// WithQueueSize bounds the background task queue.
func WithQueueSize(n int) Option {
	return func(o *Options) { o.QueueSize = n }
}

// WithTaskTimeout bounds each background task.
func WithTaskTimeout(d time.Duration) Option {
	return func(o *Options) { o.TaskTimeout = d }
}

// WithTargetFPS sets the profiler's target frame rate.
func WithTargetFPS(fps float64) Option {
	return func(o *Options) { o.TargetFPS = fps }
}

// WithShaderValidation runs composed shaders through the WGSL front-end.
func WithShaderValidation() Option {
	return func(o *Options) { o.ValidateShaders = true }
}

// WithDebugShaderComments annotates composed shaders with include
// markers.
func WithDebugShaderComments() Option {
	return func(o *Options) { o.DebugShaderComments = true }
}

// WithGPU requests a real adapter and device at construction.
func WithGPU() Option {
	return func(o *Options) { o.InitGPU = true }
}

// WithOptions replaces the whole options struct, typically one loaded
// from a config file. Later options still apply on top.
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}
