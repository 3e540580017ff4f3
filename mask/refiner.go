package mask

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/studiocut/cutout-studio-go/config"
)

// ErrInvalidInput signals a zero-area or malformed raw mask.
var ErrInvalidInput = errors.New("invalid input")

// Refiner turns a raw foreground probability map into a feathered alpha mask.
// The stage order is fixed; changing it changes the output:
//
//	resample -> erode -> dilate -> gamma -> blur -> contrast
//
// Erosion pulls the boundary inward to remove detector halo, dilation
// restores part of the detail, gamma tightens the visual boundary, blur
// produces the feathered transition band and contrast re-sharpens that band
// without undoing the feathering.
//
// Refine is deterministic and has no side effects; a Refiner is safe for
// concurrent use.
type Refiner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRefiner returns a Refiner using the given tunables. If cfg is nil the
// default configuration is used.
func NewRefiner(cfg *config.Config, logger *slog.Logger) *Refiner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Refiner{cfg: cfg, logger: logger}
}

// Refine resamples raw to targetW x targetH and applies the refinement
// pipeline. Degenerate (all-zero or all-one) masks are processed normally
// and yield a valid, still-degenerate result.
func (r *Refiner) Refine(raw Raw, targetW, targetH int) (*Alpha, error) {
	if raw == nil || raw.Bounds().Dx() <= 0 || raw.Bounds().Dy() <= 0 {
		return nil, fmt.Errorf("%w: zero-area raw mask", ErrInvalidInput)
	}
	if targetW <= 0 || targetH <= 0 {
		return nil, fmt.Errorf("%w: zero-area target %dx%d", ErrInvalidInput, targetW, targetH)
	}

	g := raw
	if raw.Bounds().Dx() != targetW || raw.Bounds().Dy() != targetH {
		dst := image.NewGray(image.Rect(0, 0, targetW, targetH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), raw, raw.Bounds(), draw.Src, nil)
		g = dst
	}

	m := NewAlphaFromGray(g)
	m = morphErode(m, r.cfg.ErodeRadius)
	m = morphDilate(m, r.cfg.DilateRadius)

	// Tonal stages run through imaging's per-channel LUTs; the mask rides in
	// as grayscale and comes back out of the red channel.
	img := imaging.AdjustGamma(m.Gray(), r.cfg.Gamma)
	if r.cfg.FeatherSigma > 0 {
		img = imaging.Blur(img, r.cfg.FeatherSigma)
	}
	img = imaging.AdjustContrast(img, (r.cfg.ContrastBoost-1)*100)

	out := NewAlpha(targetW, targetH)
	for y := 0; y < targetH; y++ {
		for x := 0; x < targetW; x++ {
			out.data[y*targetW+x] = img.Pix[y*img.Stride+x*4]
		}
	}

	if r.logger != nil {
		r.logger.Debug("mask refined",
			"raw_w", raw.Bounds().Dx(), "raw_h", raw.Bounds().Dy(),
			"out_w", targetW, "out_h", targetH)
	}
	return out, nil
}

// diskOffsets returns the relative coordinates of a filled disk of the given
// radius, used as the structuring element for morphology.
func diskOffsets(radius float64) []image.Point {
	if radius <= 0 {
		return nil
	}
	r := int(math.Ceil(radius))
	r2 := radius * radius
	offsets := make([]image.Point, 0, (2*r+1)*(2*r+1))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if float64(dx*dx+dy*dy) <= r2 {
				offsets = append(offsets, image.Point{X: dx, Y: dy})
			}
		}
	}
	return offsets
}

// morphErode applies a morphological minimum with a disk structuring element.
// The window is clamped at the mask border, so flat fields stay flat.
func morphErode(m *Alpha, radius float64) *Alpha {
	return morphApply(m, radius, true)
}

// morphDilate applies a morphological maximum with a disk structuring element.
func morphDilate(m *Alpha, radius float64) *Alpha {
	return morphApply(m, radius, false)
}

func morphApply(m *Alpha, radius float64, minimum bool) *Alpha {
	offsets := diskOffsets(radius)
	if len(offsets) <= 1 {
		return m
	}
	out := NewAlpha(m.width, m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			var best uint8
			if minimum {
				best = 255
			}
			for _, off := range offsets {
				nx, ny := x+off.X, y+off.Y
				if nx < 0 || nx >= m.width || ny < 0 || ny >= m.height {
					continue
				}
				v := m.data[ny*m.width+nx]
				if minimum {
					if v < best {
						best = v
					}
				} else if v > best {
					best = v
				}
			}
			out.data[y*m.width+x] = best
		}
	}
	return out
}
