package avatar

import (
	"errors"
	"fmt"

	"github.com/wbrown/scrapetui/imageutil"
)

// Backend selects how frames are turned into terminal cells.
type Backend string

const (
	// BackendAuto tries a pixel capability first, then braille, then
	// half-blocks, keeping the first strategy that succeeds.
	BackendAuto Backend = "auto"

	// BackendPixel pins the external true-pixel capability. Fatal if
	// none is wired in.
	BackendPixel Backend = "pixel"

	// BackendBraille pins the braille-dot renderer.
	BackendBraille Backend = "braille"

	// BackendHalfBlock pins the half-block renderer.
	BackendHalfBlock Backend = "halfblock"
)

// ErrBackendUnavailable is returned when an explicitly requested
// backend cannot be used. Automatic selection never returns it: it
// falls through to the next candidate instead.
var ErrBackendUnavailable = errors.New("requested avatar backend is unavailable")

// Strategy converts one frame into a styled cell grid. Implementations
// must be deterministic: identical input produces identical output.
type Strategy interface {
	Name() string
	Render(frame Frame) (Grid, error)
}

// Renderer holds the configuration shared by all glyph strategies and
// performs capability-negotiated strategy selection.
type Renderer struct {
	WidthChars  int
	HeightChars int
	Backend     Backend
	Background  imageutil.RGB

	// Pixel is the optional external true-pixel capability. Nil means
	// absent; automatic selection then skips straight to braille.
	Pixel Strategy
}

// RendererOption is a functional option for configuring a Renderer.
type RendererOption func(*Renderer)

// NewRenderer creates a Renderer with the given options.
// Defaults: 32x16 cells, automatic backend, black background.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		WidthChars:  32,
		HeightChars: 16,
		Backend:     BackendAuto,
		Background:  imageutil.RGB{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithGridSize sets the output grid dimensions in character cells.
func WithGridSize(widthChars, heightChars int) RendererOption {
	return func(r *Renderer) {
		r.WidthChars = widthChars
		r.HeightChars = heightChars
	}
}

// WithBackend sets the glyph strategy selection mode.
func WithBackend(backend Backend) RendererOption {
	return func(r *Renderer) {
		r.Backend = backend
	}
}

// WithBackground sets the color transparency is flattened onto.
func WithBackground(bg imageutil.RGB) RendererOption {
	return func(r *Renderer) {
		r.Background = bg
	}
}

// WithPixelStrategy wires in an external true-pixel capability.
func WithPixelStrategy(s Strategy) RendererOption {
	return func(r *Renderer) {
		r.Pixel = s
	}
}

// candidates returns the ordered strategy list for the configured
// backend. A pinned backend yields exactly one candidate; a pinned
// pixel backend with no capability wired yields none.
func (r *Renderer) candidates() ([]Strategy, error) {
	braille := &BrailleRenderer{
		WidthChars:  r.WidthChars,
		HeightChars: r.HeightChars,
		Background:  r.Background,
	}
	halfblock := &HalfBlockRenderer{
		WidthChars:  r.WidthChars,
		HeightChars: r.HeightChars,
		Background:  r.Background,
	}

	switch r.Backend {
	case BackendAuto:
		var list []Strategy
		if r.Pixel != nil {
			list = append(list, r.Pixel)
		}
		return append(list, braille, halfblock), nil
	case BackendPixel:
		if r.Pixel == nil {
			return nil, fmt.Errorf("%w: no pixel capability present", ErrBackendUnavailable)
		}
		return []Strategy{r.Pixel}, nil
	case BackendBraille:
		return []Strategy{braille}, nil
	case BackendHalfBlock:
		return []Strategy{halfblock}, nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrBackendUnavailable, r.Backend)
	}
}

// RenderFrames renders every frame with the first usable strategy.
// With automatic selection a strategy that fails on any frame is
// discarded and the next candidate is tried from scratch; with a
// pinned backend the failure is fatal.
func (r *Renderer) RenderFrames(frames []Frame) ([]RenderedFrame, error) {
	list, err := r.candidates()
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, strategy := range list {
		rendered, err := renderAll(strategy, frames)
		if err != nil {
			lastErr = err
			continue
		}
		return rendered, nil
	}

	if r.Backend == BackendAuto {
		// Unreachable in practice: halfblock cannot fail.
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, r.Backend, lastErr)
}

func renderAll(strategy Strategy, frames []Frame) ([]RenderedFrame, error) {
	rendered := make([]RenderedFrame, 0, len(frames))
	for i, frame := range frames {
		grid, err := strategy.Render(frame)
		if err != nil {
			return nil, fmt.Errorf("%s: frame %d: %w", strategy.Name(), i, err)
		}
		rendered = append(rendered, RenderedFrame{Grid: grid, Duration: frame.Duration})
	}
	return rendered, nil
}
