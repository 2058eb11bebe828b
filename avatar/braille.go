package avatar

import (
	"math"
	"strings"

	"github.com/wbrown/scrapetui/imageutil"
)

const brailleBase = 0x2800

// Unicode braille dot bit for each sample position within a 2x4 cell,
// indexed [dy][dx]. Dots 1-6 cover the top three rows, dots 7-8 the
// bottom row.
var brailleDotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// BrailleRenderer maps each 2x4 pixel block to one braille glyph.
// A 2-means clustering over the block's eight sample colors picks a
// foreground/background color pair; samples assigned to the brighter
// cluster become raised dots. Roughly 8x the spatial resolution of
// half-blocks per character, at the cost of the clustering pass.
type BrailleRenderer struct {
	WidthChars  int
	HeightChars int
	Background  imageutil.RGB
}

func (r *BrailleRenderer) Name() string { return "braille" }

// Render samples the frame into a (WidthChars*2) x (HeightChars*4)
// pixel grid. Spans run as long as both the glyph and the color pair
// repeat.
func (r *BrailleRenderer) Render(frame Frame) (Grid, error) {
	flat := imageutil.FlattenOnBackground(frame.Image, r.Background)
	px := imageutil.Resize(flat, r.WidthChars*2, r.HeightChars*4, imageutil.InterpolationArea)

	grid := make(Grid, 0, r.HeightChars)
	for cy := 0; cy < r.HeightChars; cy++ {
		var spans []Span
		var run strings.Builder
		var fg, bg imageutil.RGB
		var prev rune
		open := false

		for cx := 0; cx < r.WidthChars; cx++ {
			var samples [8]imageutil.RGB
			var bits [8]uint8
			i := 0
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					samples[i] = px.GetRGB(cx*2+dx, cy*4+dy)
					bits[i] = brailleDotBits[dy][dx]
					i++
				}
			}

			c0, c1, assigns := kmeans2(samples)

			// Brighter cluster carries the dots.
			fgCluster := 0
			cellFg, cellBg := c0, c1
			if luma(c1) > luma(c0) {
				fgCluster = 1
				cellFg, cellBg = c1, c0
			}

			var mask uint8
			for j, a := range assigns {
				if a == fgCluster {
					mask |= bits[j]
				}
			}
			ch := rune(brailleBase + int(mask))

			if open && cellFg == fg && cellBg == bg && ch == prev {
				run.WriteRune(ch)
				continue
			}
			if open {
				spans = append(spans, Span{Text: run.String(), Fg: fg, Bg: bg})
				run.Reset()
			}
			fg, bg, prev = cellFg, cellBg, ch
			open = true
			run.WriteRune(ch)
		}
		if open {
			spans = append(spans, Span{Text: run.String(), Fg: fg, Bg: bg})
		}
		grid = append(grid, spans)
	}
	return grid, nil
}

// luma is the Rec. 709 relative luminance of an 8-bit RGB color.
func luma(c imageutil.RGB) float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}

// kmeans2 runs a tiny 2-means over the eight block samples. Centers
// initialize at the minimum- and maximum-luma samples and refine over
// four fixed rounds with squared Euclidean assignment, so identical
// input always yields identical clusters. A center that attracts no
// samples in a round is left where it was.
func kmeans2(samples [8]imageutil.RGB) (imageutil.RGB, imageutil.RGB, [8]int) {
	minIdx, maxIdx := 0, 0
	for i := 1; i < len(samples); i++ {
		if luma(samples[i]) < luma(samples[minIdx]) {
			minIdx = i
		}
		if luma(samples[i]) > luma(samples[maxIdx]) {
			maxIdx = i
		}
	}

	c0 := [3]float64{float64(samples[minIdx].R), float64(samples[minIdx].G), float64(samples[minIdx].B)}
	c1 := [3]float64{float64(samples[maxIdx].R), float64(samples[maxIdx].G), float64(samples[maxIdx].B)}
	var assigns [8]int

	for round := 0; round < 4; round++ {
		var sum0, sum1 [3]float64
		n0, n1 := 0, 0

		for i, s := range samples {
			r, g, b := float64(s.R), float64(s.G), float64(s.B)
			d0 := sq(r-c0[0]) + sq(g-c0[1]) + sq(b-c0[2])
			d1 := sq(r-c1[0]) + sq(g-c1[1]) + sq(b-c1[2])
			if d1 < d0 {
				assigns[i] = 1
				sum1[0] += r
				sum1[1] += g
				sum1[2] += b
				n1++
			} else {
				assigns[i] = 0
				sum0[0] += r
				sum0[1] += g
				sum0[2] += b
				n0++
			}
		}

		if n0 > 0 {
			c0 = [3]float64{sum0[0] / float64(n0), sum0[1] / float64(n0), sum0[2] / float64(n0)}
		}
		if n1 > 0 {
			c1 = [3]float64{sum1[0] / float64(n1), sum1[1] / float64(n1), sum1[2] / float64(n1)}
		}
	}

	return roundRGB(c0), roundRGB(c1), assigns
}

func sq(v float64) float64 { return v * v }

func roundRGB(c [3]float64) imageutil.RGB {
	return imageutil.RGB{
		R: uint8(math.Round(c[0])),
		G: uint8(math.Round(c[1])),
		B: uint8(math.Round(c[2])),
	}
}
