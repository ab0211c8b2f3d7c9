package arbor

import (
	"time"
)

// debugStats holds per-scene and per-frame timings.
// Only logged when RendererOptions.Debug is true.
type debugStats struct {
	tessellateTime time.Duration
	uploadTime     time.Duration
	renderTime     time.Duration
}

// debugLog logs timing and draw-call stats at debug level.
func (r *Renderer) debugLog() {
	s := r.stats
	Logger().Debug("frame",
		"tessellate", r.debug.tessellateTime,
		"upload", r.debug.uploadTime,
		"render", r.debug.renderTime,
	)
	Logger().Debug("frame",
		"commands", s.Commands,
		"buffers", s.Buffers,
		"runs", countShaderRuns(r.buffers),
		"draws", s.DrawCalls,
		"switches", s.ShaderSwitches,
		"vertices", s.Vertices,
	)
}

// countShaderRuns counts contiguous groups of buffers sharing a shader. This
// is the lower bound on program binds for the scene.
func countShaderRuns(bufs []compiledBuffer) int {
	if len(bufs) == 0 {
		return 0
	}
	count := 1
	prev := bufs[0].shader
	for i := 1; i < len(bufs); i++ {
		if bufs[i].shader != prev {
			count++
			prev = bufs[i].shader
		}
	}
	return count
}

// debugMaxTreeDepth and debugMaxChildCount are the thresholds above which
// NewTree warns that layouts will produce slivers too thin to see.
const (
	debugMaxTreeDepth  = 32
	debugMaxChildCount = 1000
)

// debugCheckTree warns about very deep or very wide trees.
func debugCheckTree(t *Tree) {
	if t.maxDepth > debugMaxTreeDepth {
		Logger().Warn("tree depth exceeds threshold", "depth", t.maxDepth, "threshold", debugMaxTreeDepth)
	}
	for _, n := range t.order {
		if len(n.Children) > debugMaxChildCount {
			Logger().Warn("node child count exceeds threshold", "node", n.ID, "label", n.Label,
				"children", len(n.Children), "threshold", debugMaxChildCount)
		}
	}
}
