package layer

import (
	"image"

	"github.com/google/uuid"

	"github.com/studiocut/cutout-studio-go/mask"
)

// Kind enumerates the visual element types a composition can hold.
type Kind int

const (
	KindSubject Kind = iota
	KindUpload
	KindBackground
	KindText
	KindGenerated
	KindAdjustment
)

func (k Kind) String() string {
	switch k {
	case KindSubject:
		return "subject"
	case KindUpload:
		return "uploaded-image"
	case KindBackground:
		return "background"
	case KindText:
		return "text"
	case KindGenerated:
		return "generated-object"
	case KindAdjustment:
		return "adjustment"
	default:
		return "unknown"
	}
}

// Transform positions a layer on the canvas. Offsets are relative to the
// canvas center; Scale must be positive.
type Transform struct {
	OffsetX         float64 `json:"offset_x"`
	OffsetY         float64 `json:"offset_y"`
	Scale           float64 `json:"scale"`
	RotationDegrees float64 `json:"rotation_degrees"`
}

// DefaultTransform returns an identity placement.
func DefaultTransform() Transform {
	return Transform{Scale: 1}
}

// Layer is one positioned, transformable visual element. The pixel buffer
// and mask are owned by the layer once committed; the order index is managed
// exclusively by the containing Composition.
type Layer struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	Image     *image.NRGBA  `json:"-"`
	Mask      *mask.Alpha   `json:"-"`
	Transform Transform     `json:"transform"`
	Opacity   float64       `json:"opacity"`
	Visible   bool          `json:"visible"`
	Locked    bool          `json:"locked"`

	order int
}

// New returns a visible, fully opaque layer with a fresh identity and an
// identity transform.
func New(kind Kind, img *image.NRGBA) *Layer {
	return &Layer{
		ID:        uuid.NewString(),
		Kind:      kind,
		Image:     img,
		Transform: DefaultTransform(),
		Opacity:   1,
		Visible:   true,
	}
}

// OrderIndex returns the layer's paint-order position within its
// composition. Lower paints first.
func (l *Layer) OrderIndex() int { return l.order }

// SetCutout installs a committed mask and derived cutout image. The cutout
// is derived state: it can always be recomputed from the mask plus the
// original source image.
func (l *Layer) SetCutout(m *mask.Alpha, cutout *image.NRGBA) {
	l.Mask = m
	l.Image = cutout
}
