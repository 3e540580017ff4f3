package layer

import (
	"image"
)

// Composition is the ordered stack of layers plus an optional background and
// a target canvas size. Order indices are kept contiguous from 0 and
// monotonic with stacking; Append/Remove/Reorder renormalize so callers can
// never observe a gap or duplicate.
//
// Structural mutation is expected from a single logical owner; concurrent
// mutation of the same Composition must be serialized by the caller.
type Composition struct {
	layers     []*Layer
	background image.Image
	canvasW    int
	canvasH    int
}

// NewComposition returns an empty composition targeting a canvas of the
// given size.
func NewComposition(canvasW, canvasH int) *Composition {
	return &Composition{canvasW: canvasW, canvasH: canvasH}
}

// CanvasSize returns the target canvas dimensions.
func (c *Composition) CanvasSize() (w, h int) { return c.canvasW, c.canvasH }

// SetBackground installs the background image. The background is always
// aspect-fill-cropped to the canvas at render time, never stretched
// non-uniformly, so its aspect ratio is independent of the canvas.
func (c *Composition) SetBackground(img image.Image) { c.background = img }

// Background returns the background image, or nil when unset.
func (c *Composition) Background() image.Image { return c.background }

// Len returns the number of layers.
func (c *Composition) Len() int { return len(c.layers) }

// Layers returns the layers in ascending paint order. The returned slice is
// a copy; the layers themselves are shared.
func (c *Composition) Layers() []*Layer {
	out := make([]*Layer, len(c.layers))
	copy(out, c.layers)
	return out
}

// Layer returns the layer with the given id, or nil.
func (c *Composition) Layer(id string) *Layer {
	for _, l := range c.layers {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Append adds a layer on top of the stack, assigning the next contiguous
// order index.
func (c *Composition) Append(l *Layer) {
	l.order = len(c.layers)
	c.layers = append(c.layers, l)
}

// Remove deletes the layer with the given id and renormalizes the remaining
// order indices to stay contiguous from 0. It reports whether a layer was
// removed.
func (c *Composition) Remove(id string) bool {
	for i, l := range c.layers {
		if l.ID == id {
			c.layers = append(c.layers[:i], c.layers[i+1:]...)
			c.renumber()
			return true
		}
	}
	return false
}

// Reorder moves the layer with the given id to newIndex and renormalizes all
// other indices. newIndex is clamped to the valid range. It reports whether
// the layer exists.
func (c *Composition) Reorder(id string, newIndex int) bool {
	cur := -1
	for i, l := range c.layers {
		if l.ID == id {
			cur = i
			break
		}
	}
	if cur < 0 {
		return false
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex >= len(c.layers) {
		newIndex = len(c.layers) - 1
	}
	if newIndex == cur {
		return true
	}
	l := c.layers[cur]
	c.layers = append(c.layers[:cur], c.layers[cur+1:]...)
	c.layers = append(c.layers[:newIndex], append([]*Layer{l}, c.layers[newIndex:]...)...)
	c.renumber()
	return true
}

// MoveUp raises the layer one position in the stack. At the top it is a
// no-op, not an error.
func (c *Composition) MoveUp(id string) bool {
	l := c.Layer(id)
	if l == nil {
		return false
	}
	return c.Reorder(id, l.order+1)
}

// MoveDown lowers the layer one position in the stack. At the bottom it is a
// no-op, not an error.
func (c *Composition) MoveDown(id string) bool {
	l := c.Layer(id)
	if l == nil {
		return false
	}
	return c.Reorder(id, l.order-1)
}

func (c *Composition) renumber() {
	for i, l := range c.layers {
		l.order = i
	}
}
