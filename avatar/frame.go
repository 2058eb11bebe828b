// Package avatar converts bitmap frame sequences into styled terminal
// cell grids and plays them back on a cooperative timer. Frames come
// from a directory of still images or an animated GIF; renderers map
// pixels to half-block or braille glyphs with 24-bit colors.
package avatar

import (
	"time"

	"github.com/wbrown/scrapetui/imageutil"
)

// Frame is one decoded bitmap plus its display duration. A zero
// duration means the source did not declare one and the scheduler
// substitutes its fallback.
type Frame struct {
	Image    *imageutil.RGBAImage
	Duration time.Duration
}

// Span is a maximal run of adjacent cells sharing one style. Text
// holds the glyphs of the run, never one span per cell.
type Span struct {
	Text string
	Fg   imageutil.RGB
	Bg   imageutil.RGB
}

// Grid is a styled terminal cell grid, one slice of spans per row.
type Grid [][]Span

// RenderedFrame pairs a rendered grid with its playback duration.
// The full sequence is built once at load time and never mutated.
type RenderedFrame struct {
	Grid     Grid
	Duration time.Duration
}

// rowWidth counts the cells covered by a row's spans.
func rowWidth(row []Span) int {
	n := 0
	for _, s := range row {
		n += len([]rune(s.Text))
	}
	return n
}
