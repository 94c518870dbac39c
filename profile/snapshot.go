package profile

import (
	"sort"
	"time"
)

// PassSnapshot is a copy of one pass slot's accumulated stats.
type PassSnapshot struct {
	Name       string  `json:"name"`
	Calls      uint64  `json:"calls"`
	Skips      uint64  `json:"skips"`
	AverageMs  float64 `json:"average_ms"`
	MinMs      float64 `json:"min_ms"`
	MaxMs      float64 `json:"max_ms"`
	RecentMs   float64 `json:"recent_ms"`
	SampleSize int     `json:"sample_size"`
}

// Snapshot is a deep copy of the profiler state at one instant. It
// shares no memory with the live profiler.
type Snapshot struct {
	TakenAt   time.Time `json:"taken_at"`
	Enabled   bool      `json:"enabled"`
	TargetFPS float64   `json:"target_fps"`

	CurrentFPS   float64 `json:"current_fps"`
	AvgFrameMs   float64 `json:"avg_frame_ms"`
	MinFrameMs   float64 `json:"min_frame_ms"`
	MaxFrameMs   float64 `json:"max_frame_ms"`
	FrameSamples int     `json:"frame_samples"`

	RedundantRenders uint64 `json:"redundant_renders"`
	DroppedFrames    uint64 `json:"dropped_frames"`

	Passes []PassSnapshot `json:"passes"`

	TextureUploads     uint64        `json:"texture_uploads"`
	TextureUploadBytes uint64        `json:"texture_upload_bytes"`
	TextureReuses      uint64        `json:"texture_reuses"`
	UploadDuration     time.Duration `json:"upload_duration_ns"`

	FramebufferPoolHits   uint64 `json:"framebuffer_pool_hits"`
	FramebufferPoolMisses uint64 `json:"framebuffer_pool_misses"`
	FramebuffersCreated   uint64 `json:"framebuffers_created"`
	FramebuffersDeleted   uint64 `json:"framebuffers_deleted"`

	GPUMemoryBytes uint64 `json:"gpu_memory_bytes"`
}

// TextureReuseRatio is reuses over total uploads, or 1 when no uploads
// have happened.
func (s Snapshot) TextureReuseRatio() float64 {
	if s.TextureUploads == 0 {
		return 1
	}
	return float64(s.TextureReuses) / float64(s.TextureUploads)
}

// FramebufferHitRatio is pool hits over pool lookups, or 1 when the pool
// has never been asked.
func (s Snapshot) FramebufferHitRatio() float64 {
	total := s.FramebufferPoolHits + s.FramebufferPoolMisses
	if total == 0 {
		return 1
	}
	return float64(s.FramebufferPoolHits) / float64(total)
}

// WorstPass returns the executed pass with the highest average time, or
// nil when no pass has executed.
func (s Snapshot) WorstPass() *PassSnapshot {
	var worst *PassSnapshot
	for i := range s.Passes {
		ps := &s.Passes[i]
		if ps.Calls == 0 {
			continue
		}
		if worst == nil || ps.AverageMs > worst.AverageMs {
			worst = ps
		}
	}
	return worst
}

// Profile takes a deep-copied snapshot of the current state.
func (p *Profiler) Profile() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	avg := p.frameTimes.average()
	minMs, maxMs := p.frameTimes.minMax()

	s := Snapshot{
		TakenAt:   time.Now(),
		Enabled:   p.enabled,
		TargetFPS: p.targetFPS,

		AvgFrameMs:   avg,
		MinFrameMs:   minMs,
		MaxFrameMs:   maxMs,
		FrameSamples: p.frameTimes.filled,

		RedundantRenders: p.redundantRenders,
		DroppedFrames:    p.droppedFrames,

		TextureUploads:     p.textureUploads,
		TextureUploadBytes: p.textureUploadBytes,
		TextureReuses:      p.textureReuses,
		UploadDuration:     p.uploadDuration,

		FramebufferPoolHits:   p.fbPoolHits,
		FramebufferPoolMisses: p.fbPoolMiss,
		FramebuffersCreated:   p.fbCreated,
		FramebuffersDeleted:   p.fbDeleted,

		GPUMemoryBytes: p.gpuMemBytes,
	}
	if avg > 0 {
		s.CurrentFPS = 1000 / avg
	}

	s.Passes = make([]PassSnapshot, 0, len(p.passes))
	for _, ps := range p.passes {
		snap := PassSnapshot{
			Name:       ps.name,
			Calls:      ps.calls,
			Skips:      ps.skips,
			AverageMs:  ps.samples.average(),
			SampleSize: ps.samples.filled,
		}
		if ps.calls > 0 {
			snap.MinMs = ps.minMs
			snap.MaxMs = ps.maxMs
			last := (ps.samples.next - 1 + len(ps.samples.samples)) % len(ps.samples.samples)
			if ps.samples.filled > 0 {
				snap.RecentMs = ps.samples.samples[last]
			}
		}
		s.Passes = append(s.Passes, snap)
	}
	sort.Slice(s.Passes, func(i, j int) bool { return s.Passes[i].Name < s.Passes[j].Name })
	return s
}
