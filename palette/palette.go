// Package palette suggests background colors for a composition by
// extracting a compact palette from the subject image.
package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// ErrInvalidInput signals an empty image or non-positive palette size.
var ErrInvalidInput = errors.New("invalid palette input")

// Method selects the extraction strategy.
type Method int

const (
	// MethodDominant picks weighted dominant-color candidates.
	MethodDominant Method = iota
	// MethodKMeans clusters subsampled pixels in RGB space.
	MethodKMeans
)

func (m Method) String() string {
	if m == MethodKMeans {
		return "kmeans"
	}
	return "dominantcolor"
}

// Suggest extracts k colors from img using the given method, ordered from
// darkest to brightest so the first entry suits a backdrop base.
func Suggest(img image.Image, k int, method Method) ([]colorful.Color, error) {
	if img == nil || img.Bounds().Dx() <= 0 || img.Bounds().Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k=%d", ErrInvalidInput, k)
	}
	var out []colorful.Color
	switch method {
	case MethodKMeans:
		out = extractKMeans(img, k)
	default:
		out = extractDominant(img, k)
	}
	if len(out) == 0 {
		// Last resort: avoid an empty palette breaking background pickers.
		gray, _ := colorful.MakeColor(color.RGBA{R: 128, G: 128, B: 128, A: 255})
		out = []colorful.Color{gray}
	}
	SortByBrightness(out)
	return out, nil
}

// SortByBrightness orders colors from darkest to brightest using linear-RGB
// relative luminance.
func SortByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ri, gi, bi := a.LinearRgb()
		rj, gj, bj := b.LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

func extractDominant(img image.Image, k int) []colorful.Color {
	nCandidates := max(24, k*8)
	candidates := dominantcolor.FindWeight(img, nCandidates)
	if len(candidates) == 0 {
		return nil
	}
	type item struct {
		col colorful.Color
		lab [3]float64
		w   float64
	}
	items := make([]item, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		col = col.Clamped()
		l, a, b := col.Lab()
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		items = append(items, item{col: col, lab: [3]float64{l, a, b}, w: w})
	}
	if k > len(items) {
		k = len(items)
	}

	// Greedy max-min selection in Lab space, seeded with the strongest
	// candidate so the palette stays close to dominant tones.
	seed := 0
	for i := 1; i < len(items); i++ {
		if items[i].w > items[seed].w {
			seed = i
		}
	}
	selected := []int{seed}
	taken := make([]bool, len(items))
	taken[seed] = true
	for len(selected) < k {
		bestIdx, bestD := -1, -1.0
		for i := range items {
			if taken[i] {
				continue
			}
			minD := math.MaxFloat64
			for _, s := range selected {
				d0 := items[i].lab[0] - items[s].lab[0]
				d1 := items[i].lab[1] - items[s].lab[1]
				d2 := items[i].lab[2] - items[s].lab[2]
				if d := d0*d0 + d1*d1 + d2*d2; d < minD {
					minD = d
				}
			}
			if minD > bestD {
				bestD = minD
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		taken[bestIdx] = true
		selected = append(selected, bestIdx)
	}
	out := make([]colorful.Color, 0, len(selected))
	for _, i := range selected {
		out = append(out, items[i].col)
	}
	return out
}

func extractKMeans(img image.Image, k int) []colorful.Color {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	// Subsample to keep kmeans tractable on large images.
	maxSamples := 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}
	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}
	if k > len(dataset) {
		k = len(dataset)
	}
	if k < 2 {
		// kmeans needs at least two partitions; a single swatch is the mean.
		var r, g, bl float64
		for _, o := range dataset {
			c := o.Coordinates()
			r += c[0]
			g += c[1]
			bl += c[2]
		}
		n := float64(len(dataset))
		return []colorful.Color{{R: r / n, G: g / n, B: bl / n}}
	}
	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil || len(cc) == 0 {
		return nil
	}
	out := make([]colorful.Color, 0, len(cc))
	for _, c := range cc {
		center := c.Center
		if len(center) < 3 {
			continue
		}
		col := colorful.Color{R: center[0], G: center[1], B: center[2]}
		out = append(out, col.Clamped())
	}
	return out
}
