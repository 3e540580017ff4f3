package composite

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/studiocut/cutout-studio-go/config"
	"github.com/studiocut/cutout-studio-go/mask"
)

// ErrCompositingFailed signals that resampling or blending could not produce
// a valid output (empty buffers, zero-sized inputs).
var ErrCompositingFailed = errors.New("compositing failed")

// Compositor produces cutout images: source RGB masked by a refined alpha
// mask against a fully transparent background, followed by a mild unsharp
// pass that counteracts the softening introduced by mask feathering.
//
// The output is a derived artifact: it is always recomputable from the mask
// and the source image and must never be treated as authoritative.
type Compositor struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewCompositor returns a Compositor using the given tunables. If cfg is nil
// the default configuration is used.
func NewCompositor(cfg *config.Config, logger *slog.Logger) *Compositor {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Compositor{cfg: cfg, logger: logger}
}

// Cutout masks src with m and returns an RGBA cutout at exactly src's
// resolution. The mask is Lanczos-resampled when its resolution differs from
// the image. Output RGB equals source RGB everywhere; output alpha equals the
// resampled mask value.
func (c *Compositor) Cutout(m *mask.Alpha, src image.Image) (*image.NRGBA, error) {
	if m == nil || m.Width() <= 0 || m.Height() <= 0 {
		return nil, fmt.Errorf("%w: empty mask", ErrCompositingFailed)
	}
	if src == nil || src.Bounds().Dx() <= 0 || src.Bounds().Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty source image", ErrCompositingFailed)
	}

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	alphas := resampleMask(m, w, h)

	srcN := imaging.Clone(src)
	out := acquireCutout(w, h)
	for y := 0; y < h; y++ {
		si := y * srcN.Stride
		oi := y * out.Stride
		mi := y * w
		for x := 0; x < w; x++ {
			out.Pix[oi+0] = srcN.Pix[si+0]
			out.Pix[oi+1] = srcN.Pix[si+1]
			out.Pix[oi+2] = srcN.Pix[si+2]
			out.Pix[oi+3] = alphas[mi+x]
			si += 4
			oi += 4
		}
	}

	if c.cfg.SharpenAmount > 0 && c.cfg.SharpenSigma > 0 {
		unsharp(out, c.cfg.SharpenSigma, c.cfg.SharpenAmount)
	}

	if c.logger != nil {
		c.logger.Debug("cutout composited",
			"mask_w", m.Width(), "mask_h", m.Height(), "out_w", w, "out_h", h)
	}
	return out, nil
}

// ApplyExternalMask is Cutout under a second name: it is the entry point
// used when the mask came from manual editing rather than the refiner.
// The algorithm is identical.
func (c *Compositor) ApplyExternalMask(m *mask.Alpha, src image.Image) (*image.NRGBA, error) {
	return c.Cutout(m, src)
}

// resampleMask returns per-pixel alpha values for a w x h grid, resampling
// with a Lanczos kernel when the mask resolution differs.
func resampleMask(m *mask.Alpha, w, h int) []uint8 {
	if m.Width() == w && m.Height() == h {
		out := make([]uint8, w*h)
		copy(out, m.Data())
		return out
	}
	resized := imaging.Resize(m.Gray(), w, h, imaging.Lanczos)
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		ri := y * resized.Stride
		for x := 0; x < w; x++ {
			out[y*w+x] = resized.Pix[ri+x*4]
		}
	}
	return out
}

// unsharp applies img + amount*(img - blur(img)) in place across all four
// channels. On a flat field the blur equals the input and the pass is a
// no-op.
func unsharp(img *image.NRGBA, sigma, amount float64) {
	blurred := imaging.Blur(img, sigma)
	for i := range img.Pix {
		v := float64(img.Pix[i]) + amount*(float64(img.Pix[i])-float64(blurred.Pix[i]))
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		img.Pix[i] = uint8(v + 0.5)
	}
}
