package avatar

import (
	"fmt"
	"strings"
)

const esc = "\x1b"

// RenderANSI serializes a grid to 24-bit ANSI escape sequences, one
// color change per span rather than per cell. Each line ends with a
// reset so trailing cells never bleed into the surrounding terminal.
func RenderANSI(grid Grid) string {
	var out strings.Builder
	for _, row := range grid {
		var currentFg, currentBg string
		for _, span := range row {
			fg := fmt.Sprintf("38;2;%d;%d;%d", span.Fg.R, span.Fg.G, span.Fg.B)
			bg := fmt.Sprintf("48;2;%d;%d;%d", span.Bg.R, span.Bg.G, span.Bg.B)
			if fg != currentFg || bg != currentBg {
				fmt.Fprintf(&out, "%s[%s;%sm", esc, fg, bg)
				currentFg, currentBg = fg, bg
			}
			out.WriteString(span.Text)
		}
		fmt.Fprintf(&out, "%s[0m\n", esc)
	}
	return out.String()
}

// PlainText flattens a grid to glyphs only, dropping all styling.
// Useful for size checks and debugging.
func PlainText(grid Grid) string {
	var out strings.Builder
	for i, row := range grid {
		if i > 0 {
			out.WriteByte('\n')
		}
		for _, span := range row {
			out.WriteString(span.Text)
		}
	}
	return out.String()
}
