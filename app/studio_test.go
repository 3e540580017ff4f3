package app

import (
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studiocut/cutout-studio-go/editor"
	"github.com/studiocut/cutout-studio-go/layer"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func subjectSrc(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(200 - x), G: uint8(100 + y/2), B: 90, A: 255,
			})
		}
	}
	return img
}

// rawMask is a soft ellipse, bright inside and dark outside, at a lower
// resolution than the source the way segmentation output usually arrives.
func rawMask(w, h int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	cx, cy := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := (float64(x) - cx) / (cx * 0.7)
			dy := (float64(y) - cy) / (cy * 0.7)
			d := math.Sqrt(dx*dx + dy*dy)
			v := 255.0 / (1.0 + math.Exp(8*(d-1)))
			g.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return g
}

func TestStudio_ImportSubject(t *testing.T) {
	s := NewStudio(nil, discardLogger, 1080, 1350)
	src := subjectSrc(128, 160)

	l, err := s.ImportSubject(context.Background(), src, rawMask(64, 80))
	require.NoError(t, err)
	require.Equal(t, layer.KindSubject, l.Kind)
	require.Equal(t, 1, s.Composition.Len())
	require.Same(t, l, s.Composition.Layer(l.ID))

	// The refined mask and cutout are reconciled to the source resolution.
	require.Equal(t, 128, l.Mask.Width())
	require.Equal(t, 160, l.Mask.Height())
	require.Equal(t, src.Bounds(), l.Image.Bounds())

	// Half the canvas height would mean upscaling past the cap, so the
	// auto-fit clamps to the neutral maximum.
	require.InDelta(t, 1.0, l.Transform.Scale, 1e-9)

	// Pixels well outside the ellipse are cut away, the center stays.
	require.EqualValues(t, 0, l.Image.NRGBAAt(2, 2).A)
	require.Greater(t, int(l.Image.NRGBAAt(64, 80).A), 200)
}

func TestStudio_ImportSubjectCancelled(t *testing.T) {
	s := NewStudio(nil, discardLogger, 512, 512)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ImportSubject(ctx, subjectSrc(32, 32), rawMask(32, 32))
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, s.Composition.Len(), "cancelled import must not touch the composition")
}

func TestStudio_BeginEdit(t *testing.T) {
	s := NewStudio(nil, discardLogger, 512, 512)
	l, err := s.ImportSubject(context.Background(), subjectSrc(64, 64), rawMask(32, 32))
	require.NoError(t, err)

	_, err = s.BeginEdit("no-such-layer")
	require.ErrorIs(t, err, ErrUnknownLayer)

	sess, err := s.BeginEdit(l.ID)
	require.NoError(t, err)
	require.Equal(t, editor.StateEditing, sess.State())

	// The layer is locked while the session is open.
	_, err = s.BeginEdit(l.ID)
	require.ErrorIs(t, err, editor.ErrLayerLocked)

	require.NoError(t, sess.Commit())
	sess2, err := s.BeginEdit(l.ID)
	require.NoError(t, err)
	require.NoError(t, sess2.Cancel())
}

// Layers added outside ImportSubject have no mask yet; editing starts from a
// fully opaque one.
func TestStudio_BeginEditWithoutMask(t *testing.T) {
	s := NewStudio(nil, discardLogger, 256, 256)
	l := layer.New(layer.KindUpload, subjectSrc(16, 16))
	s.Composition.Append(l)

	sess, err := s.BeginEdit(l.ID)
	require.NoError(t, err)
	require.EqualValues(t, 255, sess.Mask().At(8, 8))
	require.NoError(t, sess.Cancel())
}

func TestStudio_ExportDeterministic(t *testing.T) {
	s := NewStudio(nil, discardLogger, 256, 320)
	_, err := s.ImportSubject(context.Background(), subjectSrc(64, 80), rawMask(32, 40))
	require.NoError(t, err)
	s.SetBackground(subjectSrc(128, 128))

	a, err := s.Export(context.Background())
	require.NoError(t, err)
	b, err := s.Export(context.Background())
	require.NoError(t, err)
	require.Equal(t, a.Pix, b.Pix)

	preview, err := s.Preview()
	require.NoError(t, err)
	require.Equal(t, a.Bounds(), preview.Bounds())
}

func TestStudio_ExportCancelled(t *testing.T) {
	s := NewStudio(nil, discardLogger, 64, 64)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Export(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

// Edit sessions opened through the studio drive SessionStats on their own;
// the caller never ticks it.
func TestStudio_StatsFollowEditSessions(t *testing.T) {
	s := NewStudio(nil, discardLogger, 64, 64)
	l := layer.New(layer.KindUpload, subjectSrc(8, 8))
	s.Composition.Append(l)

	sess, err := s.BeginEdit(l.ID)
	require.NoError(t, err)
	base := time.Now()

	// A later tick extends the session opened by BeginEdit.
	s.Stats.OnTick(true, base.Add(5*time.Second))
	session, total := s.Stats.Values()
	require.Greater(t, session, 4*time.Second)
	require.Equal(t, session, total)

	require.NoError(t, sess.Commit())

	// Commit ended the session, so fresh editing ticks start a new one
	// instead of extending the old.
	s.Stats.OnTick(true, base.Add(100*time.Second))
	s.Stats.OnTick(true, base.Add(101*time.Second))
	session, total = s.Stats.Values()
	require.Equal(t, time.Second, session)
	require.GreaterOrEqual(t, total, session)
}

func TestStudio_SuggestBackgrounds(t *testing.T) {
	s := NewStudio(nil, discardLogger, 64, 64)
	got, err := s.SuggestBackgrounds(subjectSrc(64, 64), 3)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	require.LessOrEqual(t, len(got), 3)
}
