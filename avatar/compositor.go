package avatar

import (
	"image/draw"
	"image/gif"
	"time"

	"github.com/wbrown/scrapetui/imageutil"
)

// GIF sub-frames with no declared delay still need some display time,
// and a 0ms declaration would spin the playback timer.
const (
	gifMinDuration     = 20 * time.Millisecond
	gifDefaultDuration = 100 * time.Millisecond
)

// CompositeGIF folds a decoded GIF's sub-frames into the sequence of
// fully visible frames an observer would see. Each step composites the
// sub-frame over the running canvas, then applies the sub-frame's
// disposal mode to produce the canvas for the next step:
//
//	restore-to-background: next canvas is fully transparent
//	restore-to-previous:   next canvas is the pre-frame snapshot
//	anything else:         next canvas is this frame's composite
//
// The canvas and snapshot are fresh copies at every step, never
// aliased, so a later frame cannot mutate an earlier output.
func CompositeGIF(g *gif.GIF) []Frame {
	if len(g.Image) == 0 {
		return nil
	}

	width, height := g.Config.Width, g.Config.Height
	if width == 0 || height == 0 {
		b := g.Image[0].Bounds()
		width, height = b.Max.X, b.Max.Y
	}

	canvas := imageutil.NewRGBAImage(width, height)
	frames := make([]Frame, 0, len(g.Image))

	for i, sub := range g.Image {
		previous := canvas.Clone()

		composed := canvas.Clone()
		draw.Draw(composed.RGBA, sub.Bounds(), sub, sub.Bounds().Min, draw.Over)

		frames = append(frames, Frame{
			Image:    composed,
			Duration: gifFrameDuration(g.Delay, i),
		})

		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		switch disposal {
		case gif.DisposalBackground:
			canvas = imageutil.NewRGBAImage(width, height)
		case gif.DisposalPrevious:
			canvas = previous
		default:
			canvas = composed
		}
	}

	return frames
}

// gifFrameDuration converts a declared delay in hundredths of a second
// to a clamped duration. Missing delays default to 100ms; declared
// delays are floored at 20ms so malformed containers cannot drive the
// playback timer at full tilt.
func gifFrameDuration(delays []int, i int) time.Duration {
	if i >= len(delays) {
		return gifDefaultDuration
	}
	d := time.Duration(delays[i]) * 10 * time.Millisecond
	if d < gifMinDuration {
		return gifMinDuration
	}
	return d
}
