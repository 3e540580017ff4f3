package mask

import (
	"image"
)

// Raw is an unrefined per-pixel foreground probability map produced by an
// external segmentation oracle. Values map 0..255 onto probability [0,1].
// It may be at a different resolution than the source image; Refiner
// reconciles the mismatch.
type Raw = *image.Gray

// Alpha is a single-channel opacity buffer at source-image resolution.
// Values range from 0 (fully transparent) to 255 (fully opaque).
type Alpha struct {
	width  int
	height int
	data   []uint8
}

// NewAlpha creates a new mask with the given dimensions.
// All values are initialized to 0 (fully transparent).
func NewAlpha(width, height int) *Alpha {
	return &Alpha{
		width:  width,
		height: height,
		data:   make([]uint8, width*height),
	}
}

// NewAlphaFromGray copies a grayscale image into a new Alpha mask.
func NewAlphaFromGray(g *image.Gray) *Alpha {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	m := NewAlpha(w, h)
	for y := 0; y < h; y++ {
		row := g.Pix[(y+b.Min.Y-g.Rect.Min.Y)*g.Stride:]
		copy(m.data[y*w:(y+1)*w], row[b.Min.X-g.Rect.Min.X:b.Min.X-g.Rect.Min.X+w])
	}
	return m
}

// Bounds returns the mask dimensions as an image.Rectangle.
func (m *Alpha) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// Width returns the mask width.
func (m *Alpha) Width() int { return m.width }

// Height returns the mask height.
func (m *Alpha) Height() int { return m.height }

// At returns the mask value at (x, y).
// Returns 0 for coordinates outside the mask bounds.
func (m *Alpha) At(x, y int) uint8 {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0
	}
	return m.data[y*m.width+x]
}

// Set sets the mask value at (x, y).
// Coordinates outside the mask bounds are ignored.
func (m *Alpha) Set(x, y int, value uint8) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.data[y*m.width+x] = value
}

// Fill fills the entire mask with a value.
func (m *Alpha) Fill(value uint8) {
	for i := range m.data {
		m.data[i] = value
	}
}

// Clone creates a deep copy of the mask.
func (m *Alpha) Clone() *Alpha {
	clone := NewAlpha(m.width, m.height)
	copy(clone.data, m.data)
	return clone
}

// CopyFrom overwrites this mask's values with those of src.
// Both masks must have identical dimensions; mismatches are ignored.
func (m *Alpha) CopyFrom(src *Alpha) {
	if src == nil || src.width != m.width || src.height != m.height {
		return
	}
	copy(m.data, src.data)
}

// Data returns the underlying mask data slice.
func (m *Alpha) Data() []uint8 {
	return m.data
}

// Gray converts the mask to a grayscale image sharing no storage with it.
func (m *Alpha) Gray() *image.Gray {
	g := image.NewGray(m.Bounds())
	copy(g.Pix, m.data)
	return g
}

// Equal reports whether two masks have identical dimensions and values.
func (m *Alpha) Equal(other *Alpha) bool {
	if other == nil || m.width != other.width || m.height != other.height {
		return false
	}
	for i, v := range m.data {
		if v != other.data[i] {
			return false
		}
	}
	return true
}

// Uniform returns a solid mask of the given dimensions and value.
func Uniform(width, height int, value uint8) *Alpha {
	m := NewAlpha(width, height)
	if value != 0 {
		m.Fill(value)
	}
	return m
}
