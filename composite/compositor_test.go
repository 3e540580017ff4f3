package composite

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studiocut/cutout-studio-go/mask"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func solidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// Compositing a fully opaque mask over a solid red image must give red RGB
// and full alpha everywhere; the unsharp pass is a no-op on a flat field.
func TestCompositor_OpaqueMaskOverRed(t *testing.T) {
	c := NewCompositor(nil, discardLogger)
	red := solidNRGBA(4, 4, color.NRGBA{R: 255, A: 255})
	m := mask.Uniform(4, 4, 255)

	out, err := c.Cutout(m, red)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			px := out.NRGBAAt(x, y)
			require.Equal(t, color.NRGBA{R: 255, G: 0, B: 0, A: 255}, px)
		}
	}
}

// Output resolution always equals the source image resolution, regardless of
// the mask resolution.
func TestCompositor_ResolutionInvariance(t *testing.T) {
	c := NewCompositor(nil, discardLogger)
	src := solidNRGBA(4, 4, color.NRGBA{G: 200, A: 255})

	for _, dims := range [][2]int{{4, 4}, {8, 8}, {16, 12}, {3, 5}} {
		m := mask.Uniform(dims[0], dims[1], 255)
		out, err := c.Cutout(m, src)
		require.NoError(t, err)
		require.Equal(t, src.Bounds(), out.Bounds(), "mask %dx%d", dims[0], dims[1])
	}
}

func TestCompositor_AlphaFollowsMask(t *testing.T) {
	c := NewCompositor(nil, discardLogger)
	src := solidNRGBA(8, 8, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	m := mask.NewAlpha(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			m.Set(x, y, 255)
		}
	}

	out, err := c.Cutout(m, src)
	require.NoError(t, err)
	// Masked-out pixels keep the source RGB but are transparent: this is a
	// masking operation, not a blend against an opaque background.
	left := out.NRGBAAt(1, 4)
	right := out.NRGBAAt(6, 4)
	require.EqualValues(t, 255, left.A)
	require.EqualValues(t, 0, right.A)
	require.EqualValues(t, 10, right.R)
	require.EqualValues(t, 20, right.G)
	require.EqualValues(t, 30, right.B)
}

func TestCompositor_EmptyInputs(t *testing.T) {
	c := NewCompositor(nil, discardLogger)
	src := solidNRGBA(4, 4, color.NRGBA{A: 255})

	_, err := c.Cutout(nil, src)
	require.ErrorIs(t, err, ErrCompositingFailed)

	_, err = c.Cutout(mask.NewAlpha(0, 0), src)
	require.ErrorIs(t, err, ErrCompositingFailed)

	_, err = c.Cutout(mask.Uniform(4, 4, 255), nil)
	require.ErrorIs(t, err, ErrCompositingFailed)

	_, err = c.Cutout(mask.Uniform(4, 4, 255), image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	require.ErrorIs(t, err, ErrCompositingFailed)
}

// ApplyExternalMask is the manual-editing entry point for the identical
// algorithm; outputs must match Cutout byte for byte.
func TestCompositor_ApplyExternalMaskMatchesCutout(t *testing.T) {
	c := NewCompositor(nil, discardLogger)
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 77, A: 255})
		}
	}
	m := mask.NewAlpha(16, 16)
	for y := 4; y < 12; y++ {
		for x := 4; x < 12; x++ {
			m.Set(x, y, 255)
		}
	}

	a, err := c.Cutout(m, src)
	require.NoError(t, err)
	b, err := c.ApplyExternalMask(m, src)
	require.NoError(t, err)
	require.Equal(t, a.Pix, b.Pix)
}

func TestAcquireCutout_Reuse(t *testing.T) {
	a := acquireCutout(8, 8)
	require.Len(t, a.Pix, 8*8*4)
	RecycleCutout(a)
	b := acquireCutout(4, 4)
	require.Len(t, b.Pix, 4*4*4)
	require.Equal(t, 16, b.Stride)
}
