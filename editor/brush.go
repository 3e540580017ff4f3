package editor

import (
	"math"
	"sort"

	"github.com/studiocut/cutout-studio-go/mask"
)

// paintCircle blends a filled circle of the given radius into the mask.
// Pixels fully inside the circle take value; pixels on the rim get a
// one-pixel antialiased transition proportional to their coverage. The dirty
// rectangle is clamped to the mask bounds.
func paintCircle(m *mask.Alpha, center Point, radius float64, value uint8) {
	if radius <= 0 {
		return
	}
	x0 := int(math.Floor(center.X - radius - 1))
	x1 := int(math.Ceil(center.X + radius + 1))
	y0 := int(math.Floor(center.Y - radius - 1))
	y1 := int(math.Ceil(center.Y + radius + 1))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > m.Width() {
		x1 = m.Width()
	}
	if y1 > m.Height() {
		y1 = m.Height()
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := float64(x) + 0.5 - center.X
			dy := float64(y) + 0.5 - center.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			cov := radius - dist + 0.5
			if cov <= 0 {
				continue
			}
			if cov > 1 {
				cov = 1
			}
			old := float64(m.At(x, y))
			blended := old + (float64(value)-old)*cov
			m.Set(x, y, uint8(blended+0.5))
		}
	}
}

// fillPolygon writes value into every pixel whose center lies inside the
// closed polygon, using even-odd scanline filling. The polygon closes
// implicitly from the last point back to the first.
func fillPolygon(m *mask.Alpha, pts []Point, value uint8) {
	if len(pts) < 3 {
		return
	}
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	y0 := int(math.Floor(minY))
	y1 := int(math.Ceil(maxY))
	if y0 < 0 {
		y0 = 0
	}
	if y1 > m.Height() {
		y1 = m.Height()
	}

	xs := make([]float64, 0, len(pts))
	for y := y0; y < y1; y++ {
		cy := float64(y) + 0.5
		xs = xs[:0]
		for i := range pts {
			a := pts[i]
			b := pts[(i+1)%len(pts)]
			if (a.Y <= cy && b.Y > cy) || (b.Y <= cy && a.Y > cy) {
				t := (cy - a.Y) / (b.Y - a.Y)
				xs = append(xs, a.X+t*(b.X-a.X))
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			left := int(math.Ceil(xs[i] - 0.5))
			right := int(math.Floor(xs[i+1] - 0.5))
			if left < 0 {
				left = 0
			}
			if right >= m.Width() {
				right = m.Width() - 1
			}
			for x := left; x <= right; x++ {
				m.Set(x, y, value)
			}
		}
	}
}
