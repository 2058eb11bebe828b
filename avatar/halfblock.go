package avatar

import (
	"strings"

	"github.com/wbrown/scrapetui/imageutil"
)

const upperHalfBlock = '▀'

// HalfBlockRenderer maps each 1x2 pixel pair to one upper-half-block
// glyph: the top pixel becomes the foreground color and the bottom
// pixel the background color. Sharp but chunky, and works on any
// terminal with 24-bit color support.
type HalfBlockRenderer struct {
	WidthChars  int
	HeightChars int
	Background  imageutil.RGB
}

func (r *HalfBlockRenderer) Name() string { return "halfblock" }

// Render samples the frame into a WidthChars x (HeightChars*2) pixel
// grid and emits one span per maximal run of identical (top, bottom)
// color pairs.
func (r *HalfBlockRenderer) Render(frame Frame) (Grid, error) {
	flat := imageutil.FlattenOnBackground(frame.Image, r.Background)
	px := imageutil.Resize(flat, r.WidthChars, r.HeightChars*2, imageutil.InterpolationArea)

	grid := make(Grid, 0, r.HeightChars)
	for row := 0; row < r.HeightChars; row++ {
		var spans []Span
		var run strings.Builder
		var fg, bg imageutil.RGB
		open := false

		for col := 0; col < r.WidthChars; col++ {
			top := px.GetRGB(col, row*2)
			bottom := px.GetRGB(col, row*2+1)

			if open && top == fg && bottom == bg {
				run.WriteRune(upperHalfBlock)
				continue
			}
			if open {
				spans = append(spans, Span{Text: run.String(), Fg: fg, Bg: bg})
				run.Reset()
			}
			fg, bg = top, bottom
			open = true
			run.WriteRune(upperHalfBlock)
		}
		if open {
			spans = append(spans, Span{Text: run.String(), Fg: fg, Bg: bg})
		}
		grid = append(grid, spans)
	}
	return grid, nil
}
