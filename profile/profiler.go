// Package profile collects low-overhead pipeline performance counters:
// frame times, per-pass execution windows, texture upload and
// framebuffer pool accounting. Snapshots are copy-on-read so a UI layer
// can consume them on its own cadence.
package profile

import (
	"sync"
	"time"
)

// Defaults for profiler construction.
const (
	// DefaultSampleWindow is the rolling window size for frame and pass
	// time samples.
	DefaultSampleWindow = 120

	// DefaultTargetFPS is the frame rate the recommendations engine
	// measures against.
	DefaultTargetFPS = 60
)

// PassID identifies a registered pass slot. IDs are small integers
// assigned in registration order so the per-frame hot path indexes an
// arena instead of hashing names.
type PassID int

// Config holds profiler construction parameters.
type Config struct {
	// SampleWindow is the rolling window size; DefaultSampleWindow if <= 0.
	SampleWindow int
	// TargetFPS is the target frame rate; DefaultTargetFPS if <= 0.
	TargetFPS float64
}

// Profiler accumulates counters and rolling-window samples.
//
// All methods are safe for concurrent use; the expected pattern is one
// writer (the pipeline executor) and any number of snapshot readers.
type Profiler struct {
	mu sync.Mutex

	enabled      bool
	targetFPS    float64
	sampleWindow int

	frameTimes *window

	redundantRenders uint64
	droppedFrames    uint64

	// passes is an arena of slots indexed by PassID.
	passes    []*passStats
	passIndex map[string]PassID

	textureUploads     uint64
	textureUploadBytes uint64
	textureReuses      uint64
	uploadDuration     time.Duration

	fbPoolHits  uint64
	fbPoolMiss  uint64
	fbCreated   uint64
	fbDeleted   uint64
	gpuMemBytes uint64
}

// passStats is one pass slot in the arena.
type passStats struct {
	name    string
	calls   uint64
	skips   uint64
	minMs   float64
	maxMs   float64
	samples *window
}

// New creates a profiler. Recording is enabled initially.
func New(config Config) *Profiler {
	win := config.SampleWindow
	if win <= 0 {
		win = DefaultSampleWindow
	}
	target := config.TargetFPS
	if target <= 0 {
		target = DefaultTargetFPS
	}
	return &Profiler{
		enabled:      true,
		targetFPS:    target,
		sampleWindow: win,
		frameTimes:   newWindow(win),
		passIndex:    make(map[string]PassID),
	}
}

// SetEnabled turns recording on or off. Disabling makes every record
// call a no-op without losing accumulated counters; re-enabling resumes
// accumulation where it left off.
func (p *Profiler) SetEnabled(enabled bool) {
	p.mu.Lock()
	p.enabled = enabled
	p.mu.Unlock()
}

// Enabled reports whether recording is active.
func (p *Profiler) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// RegisterPass assigns an arena slot for a pass name and returns its id.
// Registering the same name twice returns the existing id.
func (p *Profiler) RegisterPass(name string) PassID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.registerLocked(name)
}

func (p *Profiler) registerLocked(name string) PassID {
	if id, ok := p.passIndex[name]; ok {
		return id
	}
	id := PassID(len(p.passes))
	p.passes = append(p.passes, &passStats{
		name:    name,
		samples: newWindow(p.sampleWindow),
	})
	p.passIndex[name] = id
	return id
}

// StartFrame marks the beginning of a frame and returns its start time.
func (p *Profiler) StartFrame() time.Time {
	return time.Now()
}

// EndFrame records one frame-time sample.
func (p *Profiler) EndFrame(start time.Time) {
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	p.frameTimes.push(elapsed)
}

// RecordRedundantRender counts a frame that re-rendered with no dirty
// passes.
func (p *Profiler) RecordRedundantRender() {
	p.mu.Lock()
	if p.enabled {
		p.redundantRenders++
	}
	p.mu.Unlock()
}

// RecordDroppedFrame counts a frame abandoned before presentation.
func (p *Profiler) RecordDroppedFrame() {
	p.mu.Lock()
	if p.enabled {
		p.droppedFrames++
	}
	p.mu.Unlock()
}

// StartPass marks the beginning of a pass execution.
func (p *Profiler) StartPass(name string) time.Time {
	return time.Now()
}

// EndPass records a pass execution or skip by id.
func (p *Profiler) EndPass(id PassID, start time.Time, skipped bool) {
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled || int(id) < 0 || int(id) >= len(p.passes) {
		return
	}
	p.recordPassLocked(p.passes[id], elapsed, skipped)
}

// EndPassNamed records a pass execution or skip by name, registering the
// name on first use. Prefer EndPass with a registered id in hot paths.
func (p *Profiler) EndPassNamed(name string, start time.Time, skipped bool) {
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	id := p.registerLocked(name)
	p.recordPassLocked(p.passes[id], elapsed, skipped)
}

func (p *Profiler) recordPassLocked(ps *passStats, elapsedMs float64, skipped bool) {
	if skipped {
		ps.skips++
		return
	}
	ps.calls++
	ps.samples.push(elapsedMs)
	if ps.calls == 1 || elapsedMs < ps.minMs {
		ps.minMs = elapsedMs
	}
	if elapsedMs > ps.maxMs {
		ps.maxMs = elapsedMs
	}
}

// RecordTextureUpload records a pixel upload. reused reports whether the
// upload went into an existing texture rather than a fresh allocation.
func (p *Profiler) RecordTextureUpload(bytes int, duration time.Duration, reused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	p.textureUploads++
	p.textureUploadBytes += uint64(bytes)
	p.uploadDuration += duration
	if reused {
		p.textureReuses++
	}
}

// RecordFramebufferPoolHit counts a framebuffer served from the pool.
func (p *Profiler) RecordFramebufferPoolHit() {
	p.mu.Lock()
	if p.enabled {
		p.fbPoolHits++
	}
	p.mu.Unlock()
}

// RecordFramebufferPoolMiss counts a framebuffer the pool had to create.
func (p *Profiler) RecordFramebufferPoolMiss() {
	p.mu.Lock()
	if p.enabled {
		p.fbPoolMiss++
	}
	p.mu.Unlock()
}

// RecordFramebufferCreated counts a framebuffer allocation.
func (p *Profiler) RecordFramebufferCreated() {
	p.mu.Lock()
	if p.enabled {
		p.fbCreated++
	}
	p.mu.Unlock()
}

// RecordFramebufferDeleted counts a framebuffer destruction.
func (p *Profiler) RecordFramebufferDeleted() {
	p.mu.Lock()
	if p.enabled {
		p.fbDeleted++
	}
	p.mu.Unlock()
}

// UpdateGPUMemoryUsage sets the GPU memory gauge.
func (p *Profiler) UpdateGPUMemoryUsage(bytes uint64) {
	p.mu.Lock()
	if p.enabled {
		p.gpuMemBytes = bytes
	}
	p.mu.Unlock()
}

// IsBelowTarget reports whether the current FPS is below 90% of target.
func (p *Profiler) IsBelowTarget() bool {
	s := p.Profile()
	return s.FrameSamples > 0 && s.CurrentFPS < 0.9*s.TargetFPS
}

// Reset zeroes all counters and clears every sample window. Registered
// pass slots stay registered so ids handed out before the reset keep
// recording afterwards.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameTimes = newWindow(p.sampleWindow)
	p.redundantRenders = 0
	p.droppedFrames = 0
	for _, ps := range p.passes {
		ps.calls = 0
		ps.skips = 0
		ps.minMs = 0
		ps.maxMs = 0
		ps.samples = newWindow(p.sampleWindow)
	}
	p.textureUploads = 0
	p.textureUploadBytes = 0
	p.textureReuses = 0
	p.uploadDuration = 0
	p.fbPoolHits = 0
	p.fbPoolMiss = 0
	p.fbCreated = 0
	p.fbDeleted = 0
	p.gpuMemBytes = 0
}

// window is a bounded ring buffer of float64 samples.
type window struct {
	samples []float64
	next    int
	filled  int
}

func newWindow(size int) *window {
	return &window{samples: make([]float64, size)}
}

func (w *window) push(v float64) {
	w.samples[w.next] = v
	w.next = (w.next + 1) % len(w.samples)
	if w.filled < len(w.samples) {
		w.filled++
	}
}

func (w *window) average() float64 {
	if w.filled == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < w.filled; i++ {
		sum += w.samples[i]
	}
	return sum / float64(w.filled)
}

func (w *window) minMax() (min, max float64) {
	if w.filled == 0 {
		return 0, 0
	}
	min, max = w.samples[0], w.samples[0]
	for i := 1; i < w.filled; i++ {
		if w.samples[i] < min {
			min = w.samples[i]
		}
		if w.samples[i] > max {
			max = w.samples[i]
		}
	}
	return min, max
}
