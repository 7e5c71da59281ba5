package utils

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/setanarut/heatmapper"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch s {
	case "dominantcolor", "dominant":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	default:
		return 0, fmt.Errorf("unknown palette method: %q", s)
	}
}

// Swatch is one palette color and the share of the image it stands for.
type Swatch struct {
	Color  colorful.Color
	Weight float64
}

// ExtractPalette returns up to k well separated colors of img, strongest
// first, with weights summing to 1.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []Swatch {
	var p []Swatch
	if method == PaletteMethodKMeans {
		p = kmeansSwatches(img, k)
		if len(p) == 0 {
			heatmapper.Logger().Warn("kmeans returned empty palette, falling back to dominantcolor")
		}
	}
	if len(p) == 0 {
		p = dominantSwatches(img, k)
	}
	return normalize(p)
}

// SortPaletteByLuma orders swatches from darkest to brightest using the
// luma weights of the saturation transform.
func SortPaletteByLuma(p []Swatch) {
	slices.SortStableFunc(p, func(a, b Swatch) int {
		la, lb := luma(a.Color), luma(b.Color)
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return 0
	})
}

func luma(c colorful.Color) float64 {
	return heatmapper.LumaRed*c.R + heatmapper.LumaGreen*c.G + heatmapper.LumaBlue*c.B
}

func dominantSwatches(img image.Image, k int) []Swatch {
	if k <= 0 {
		return nil
	}
	found := dominantcolor.FindWeight(img, max(24, k*8))
	cands := make([]Swatch, 0, len(found))
	for _, c := range found {
		col, _ := colorful.MakeColor(c.RGBA)
		cands = append(cands, Swatch{Color: col.Clamped(), Weight: c.Weight})
	}
	if len(cands) == 0 {
		cands = append(cands, Swatch{Color: colorful.Color{R: 0.5, G: 0.5, B: 0.5}, Weight: 1})
	}
	return pickDiverse(cands, k)
}

func kmeansSwatches(img image.Image, k int) []Swatch {
	b := img.Bounds()
	if k <= 0 || b.Empty() {
		return nil
	}

	// Subsample so Partition stays fast on large heat maps.
	const maxSamples = 12000
	step := 1
	if n := b.Dx() * b.Dy(); n > maxSamples {
		step = int(math.Sqrt(float64(n)/maxSamples)) + 1
	}
	var obs clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if c.A == 0 {
				continue
			}
			obs = append(obs, clusters.Coordinates{
				float64(c.R) / 255,
				float64(c.G) / 255,
				float64(c.B) / 255,
			})
		}
	}
	if len(obs) == 0 {
		return nil
	}

	km := kmeans.New()
	cc, err := km.Partition(obs, min(max(k*4, k+2), len(obs)))
	if err != nil {
		return nil
	}
	cands := make([]Swatch, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		cands = append(cands, Swatch{Color: col, Weight: float64(len(c.Observations))})
	}
	return pickDiverse(cands, k)
}

// pickDiverse greedily selects k candidates: the heaviest first, then the
// one farthest in Lab space from everything chosen, scaled by its weight.
// Every candidate's weight goes to its nearest pick.
func pickDiverse(cands []Swatch, k int) []Swatch {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))

	labs := make([][3]float64, len(cands))
	maxW := 0.0
	for i, c := range cands {
		l, a, b := c.Color.Lab()
		labs[i] = [3]float64{l, a, b}
		maxW = max(maxW, c.Weight)
	}
	if maxW <= 0 {
		maxW = 1
	}
	dist := func(i, j int) float64 {
		d0 := labs[i][0] - labs[j][0]
		d1 := labs[i][1] - labs[j][1]
		d2 := labs[i][2] - labs[j][2]
		return math.Sqrt(d0*d0 + d1*d1 + d2*d2)
	}

	picked := []int{0}
	for i, c := range cands {
		if c.Weight > cands[picked[0]].Weight {
			picked[0] = i
		}
	}
	for len(picked) < k {
		best, bestScore := -1, -1.0
		for i, c := range cands {
			if slices.Contains(picked, i) {
				continue
			}
			nearest := math.MaxFloat64
			for _, p := range picked {
				nearest = min(nearest, dist(i, p))
			}
			score := nearest * (0.55 + 0.45*math.Sqrt(max(c.Weight, 0)/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		picked = append(picked, best)
	}

	out := make([]Swatch, len(picked))
	for n, p := range picked {
		out[n].Color = cands[p].Color
	}
	for i, c := range cands {
		nearest, at := math.MaxFloat64, 0
		for n, p := range picked {
			if d := dist(i, p); d < nearest {
				nearest, at = d, n
			}
		}
		out[at].Weight += max(c.Weight, 0)
	}
	slices.SortStableFunc(out, func(a, b Swatch) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		}
		return 0
	})
	return out
}

func normalize(p []Swatch) []Swatch {
	total := 0.0
	for _, s := range p {
		total += s.Weight
	}
	for i := range p {
		if total > 0 {
			p[i].Weight /= total
		} else {
			p[i].Weight = 1 / float64(len(p))
		}
	}
	return p
}

// SavePalette writes the palette as a horizontal strip of tileSize*len(p)
// pixels, each color as wide as its weight.
func SavePalette(p []Swatch, tileSize int, filename string) error {
	if len(p) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	w, h := tileSize*len(p), tileSize
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	x0, acc := 0, 0.0
	for i, s := range p {
		acc += s.Weight
		x1 := int(math.Round(acc * float64(w)))
		if i == len(p)-1 {
			x1 = w
		}
		r, g, b := s.Color.Clamped().RGB255()
		for y := range h {
			for x := x0; x < min(x1, w); x++ {
				img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
			}
		}
		x0 = max(x0, x1)
	}
	return SaveImage(img, filename)
}
