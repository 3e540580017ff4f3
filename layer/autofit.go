package layer

import (
	"github.com/studiocut/cutout-studio-go/config"
)

// FitScale computes the initial scale for a subject layer so that its
// rendered height lands on a fixed fraction of the canvas height. If the
// resulting width would exceed the allowed fraction of the canvas width the
// scale is recomputed from the width instead, so the subject never overflows
// horizontally. The result is clamped to [FitMinScale, FitMaxScale].
//
// Degenerate inputs (zero or negative dimensions on either side) return the
// neutral scale 1.0 rather than dividing by zero.
func FitScale(subjectW, subjectH, canvasW, canvasH int, cfg *config.Config) float64 {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if subjectW <= 0 || subjectH <= 0 || canvasW <= 0 || canvasH <= 0 {
		return 1.0
	}
	scale := float64(canvasH) * cfg.FitHeightFraction / float64(subjectH)
	maxWidth := float64(canvasW) * cfg.FitMaxWidthFraction
	if float64(subjectW)*scale > maxWidth {
		scale = maxWidth / float64(subjectW)
	}
	if scale < cfg.FitMinScale {
		scale = cfg.FitMinScale
	}
	if scale > cfg.FitMaxScale {
		scale = cfg.FitMaxScale
	}
	return scale
}
