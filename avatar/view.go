package avatar

import (
	"strings"
	"time"

	"github.com/wbrown/scrapetui/imageutil"
)

// placeholderFg is the dim gray used for placeholder text.
var placeholderFg = imageutil.RGB{R: 128, G: 128, B: 128}

// View is the avatar facade: it loads and renders a frame source once,
// holds the immutable rendered sequence, and owns the scheduler that
// plays it. The surrounding UI only asks for the current grid.
type View struct {
	scheduler *Scheduler

	background imageutil.RGB
	pixel      Strategy

	source      string
	status      SourceStatus
	frames      []RenderedFrame
	loadSeconds float64
}

// ViewOption is a functional option for configuring a View.
type ViewOption func(*View)

// WithViewBackground sets the color transparency flattens onto.
func WithViewBackground(bg imageutil.RGB) ViewOption {
	return func(v *View) {
		v.background = bg
	}
}

// WithViewPixelStrategy wires in an external true-pixel capability
// used by the auto and pixel backends.
func WithViewPixelStrategy(s Strategy) ViewOption {
	return func(v *View) {
		v.pixel = s
	}
}

// NewView creates an idle view. timer drives playback; redraw is
// called after every frame advance and may be nil.
func NewView(timer TimerFunc, redraw func(), opts ...ViewOption) *View {
	v := &View{
		scheduler: NewScheduler(timer, redraw),
		status:    SourceMissing,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load resolves, renders, and starts playing the frame source. It is
// idempotent and doubles as reconfiguration: any pending timer is
// cancelled before the fresh load begins. Rendering runs to completion
// here, synchronously, since there is nothing to paint until it
// finishes.
//
// Returns the frame count and the wall-clock load time in seconds. A
// missing or empty source is not an error; the view goes Idle and
// CurrentGrid serves a placeholder.
func (v *View) Load(source string, widthChars, heightChars int, backend Backend, fpsCap float64) (int, float64, error) {
	v.scheduler.Stop()
	v.source = source
	v.frames = nil
	v.loadSeconds = 0

	started := time.Now()

	frames, status, err := ResolveFrames(source, fpsCap)
	v.status = status
	if err != nil {
		return 0, 0, err
	}
	if len(frames) == 0 {
		v.loadSeconds = time.Since(started).Seconds()
		return 0, v.loadSeconds, nil
	}

	renderer := NewRenderer(
		WithGridSize(widthChars, heightChars),
		WithBackend(backend),
		WithBackground(v.background),
		WithPixelStrategy(v.pixel),
	)
	rendered, err := renderer.RenderFrames(frames)
	if err != nil {
		return 0, 0, err
	}

	v.frames = rendered
	v.loadSeconds = time.Since(started).Seconds()
	v.scheduler.Start(rendered, fpsCap)
	return len(rendered), v.loadSeconds, nil
}

// CurrentGrid returns the grid to paint right now: the current frame
// while playing, or a labeled placeholder that distinguishes a missing
// source from an empty one.
func (v *View) CurrentGrid() Grid {
	if len(v.frames) == 0 {
		return v.placeholder()
	}
	return v.frames[v.scheduler.Index()].Grid
}

// FramesLoaded returns the size of the rendered sequence.
func (v *View) FramesLoaded() int { return len(v.frames) }

// LoadSeconds returns the wall-clock duration of the last Load.
func (v *View) LoadSeconds() float64 { return v.loadSeconds }

// Playing reports whether the view is animating.
func (v *View) Playing() bool { return v.scheduler.Playing() }

// Advance steps playback by one frame. Exposed for UI loops that
// deliver timer firings as messages rather than direct callbacks.
func (v *View) Advance() { v.scheduler.Advance() }

// Stop cancels playback. The current grid keeps serving the frame the
// cursor stopped on.
func (v *View) Stop() { v.scheduler.Stop() }

func (v *View) placeholder() Grid {
	msg := "No frames in:"
	if v.status == SourceMissing {
		msg = "Missing frames:"
	}
	grid := make(Grid, 0, 2)
	for _, line := range []string{msg, v.source} {
		for _, wrapped := range strings.Split(line, "\n") {
			grid = append(grid, []Span{{
				Text: wrapped,
				Fg:   placeholderFg,
				Bg:   v.background,
			}})
		}
	}
	return grid
}
