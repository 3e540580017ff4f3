package composite

import (
	"image"
	"sync"
)

// Interactive editing recomposites the cutout after every stroke, so the
// large RGBA backing slices churn quickly. Completed previews can hand their
// buffer back via RecycleCutout; if consumers never recycle, behavior
// degrades gracefully to plain allocation.

var cutoutPool sync.Pool // stores *image.NRGBA

// acquireCutout returns a reusable NRGBA image sized w x h. The returned Pix
// length exactly matches w*h*4 and Stride is w*4.
func acquireCutout(w, h int) *image.NRGBA {
	needed := w * h * 4
	var img *image.NRGBA
	if v := cutoutPool.Get(); v != nil {
		img = v.(*image.NRGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		return &image.NRGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	}
	img.Stride = w * 4
	img.Rect = image.Rect(0, 0, w, h)
	img.Pix = img.Pix[:needed]
	return img
}

// RecycleCutout returns a cutout buffer to the pool for potential reuse.
// The image must no longer be accessed by the caller afterwards.
func RecycleCutout(img *image.NRGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	cutoutPool.Put(img)
}
