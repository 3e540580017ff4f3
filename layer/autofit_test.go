package layer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studiocut/cutout-studio-go/config"
)

func TestFitScale_HeightDriven(t *testing.T) {
	// 1000px tall subject on a 1000px tall canvas lands at half the canvas
	// height.
	require.InDelta(t, 0.5, FitScale(1000, 1000, 1000, 1000, nil), 1e-9)
}

func TestFitScale_WidthGuard(t *testing.T) {
	// A wide subject would overflow at the height-driven scale, so the scale
	// is recomputed from the width cap: 850 / 2000.
	require.InDelta(t, 0.425, FitScale(2000, 1000, 1000, 1000, nil), 1e-9)
}

func TestFitScale_ClampedToMax(t *testing.T) {
	// A small subject on a large canvas never upscales past the cap.
	require.InDelta(t, 1.0, FitScale(800, 600, 3584, 2016, nil), 1e-9)
}

func TestFitScale_ClampedToMin(t *testing.T) {
	// A very tall subject never shrinks below the floor, even if that leaves
	// it taller than the target fraction.
	require.InDelta(t, 0.3, FitScale(1000, 4000, 1000, 1000, nil), 1e-9)
}

func TestFitScale_DegenerateInputs(t *testing.T) {
	for _, dims := range [][4]int{
		{0, 100, 100, 100},
		{100, 0, 100, 100},
		{100, 100, 0, 100},
		{100, 100, 100, -5},
	} {
		got := FitScale(dims[0], dims[1], dims[2], dims[3], nil)
		require.Equal(t, 1.0, got, "dims %v", dims)
	}
}

func TestFitScale_AlwaysWithinConfiguredBounds(t *testing.T) {
	cfg := config.DefaultConfig()
	sizes := []int{1, 50, 480, 1080, 2160, 8000}
	for _, sw := range sizes {
		for _, sh := range sizes {
			for _, cw := range sizes {
				for _, ch := range sizes {
					s := FitScale(sw, sh, cw, ch, cfg)
					require.GreaterOrEqual(t, s, cfg.FitMinScale)
					require.LessOrEqual(t, s, cfg.FitMaxScale)
				}
			}
		}
	}
}
