package profile

import "fmt"

// Recommendation severity levels.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityHigh    = "high"
)

// Recommendation is one tuning suggestion derived from a snapshot.
type Recommendation struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Thresholds the analyzer measures against.
const (
	fbHitRatioFloor     = 0.5
	textureReuseFloor   = 0.5
	gpuMemoryCeiling    = 512 << 20
	slowPassFloorMs     = 10.0
	fpsCriticalFraction = 0.5
	fpsWarningFraction  = 0.9
)

// Analyze derives tuning recommendations from a snapshot. It is a pure
// function of the snapshot, so callers can run it on exported data as
// well as live profiles.
func Analyze(s Snapshot) []Recommendation {
	var recs []Recommendation

	if s.FrameSamples > 0 {
		switch {
		case s.CurrentFPS < fpsCriticalFraction*s.TargetFPS:
			recs = append(recs, Recommendation{
				Severity: SeverityHigh,
				Message: fmt.Sprintf("frame rate %.1f is below half of the %.0f target; reduce preview resolution or disable expensive passes",
					s.CurrentFPS, s.TargetFPS),
			})
		case s.CurrentFPS < fpsWarningFraction*s.TargetFPS:
			recs = append(recs, Recommendation{
				Severity: SeverityWarning,
				Message: fmt.Sprintf("frame rate %.1f is under the %.0f target; consider lowering pass quality settings",
					s.CurrentFPS, s.TargetFPS),
			})
		}
	}

	if total := s.FramebufferPoolHits + s.FramebufferPoolMisses; total > 0 && s.FramebufferHitRatio() < fbHitRatioFloor {
		recs = append(recs, Recommendation{
			Severity: SeverityWarning,
			Message: fmt.Sprintf("framebuffer pool hit ratio %.0f%%; intermediate sizes change too often, pin the preview resolution",
				100*s.FramebufferHitRatio()),
		})
	}

	if s.TextureUploads > 0 && s.TextureReuseRatio() < textureReuseFloor {
		recs = append(recs, Recommendation{
			Severity: SeverityWarning,
			Message: fmt.Sprintf("texture reuse ratio %.0f%%; uploads allocate fresh textures too often, raise the texture cache budget",
				100*s.TextureReuseRatio()),
		})
	}

	if s.GPUMemoryBytes > gpuMemoryCeiling {
		recs = append(recs, Recommendation{
			Severity: SeverityWarning,
			Message: fmt.Sprintf("GPU memory usage %d MB exceeds %d MB; lower the texture cache budget or clear unused entries",
				s.GPUMemoryBytes>>20, uint64(gpuMemoryCeiling)>>20),
		})
	}

	if worst := s.WorstPass(); worst != nil && worst.AverageMs > slowPassFloorMs {
		recs = append(recs, Recommendation{
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("pass %q averages %.1f ms; it dominates the frame budget", worst.Name, worst.AverageMs),
		})
	}

	if s.RedundantRenders > 0 && s.RedundantRenders > s.DroppedFrames {
		recs = append(recs, Recommendation{
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("%d redundant renders recorded; the caller re-rendered with no parameter changes", s.RedundantRenders),
		})
	}

	return recs
}

// Recommendations analyzes the current state.
func (p *Profiler) Recommendations() []Recommendation {
	return Analyze(p.Profile())
}
