// Package assets generates the fallback avatar animation. When the
// configured frames directory has nothing to play, a small procedural
// orb sequence is rendered once into the user cache and reused on
// later runs.
package assets

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/wbrown/scrapetui/imageutil"
)

const (
	// DefaultFrameCount is the length of the generated loop.
	DefaultFrameCount = 48

	frameWidth  = 128
	frameHeight = 128

	watermark = "scrapetui"
)

var (
	labelFontOnce sync.Once
	labelFont     *truetype.Font
)

// GeneratedFramesDir returns the cache directory that holds generated
// placeholder frames, honoring XDG_CACHE_HOME.
func GeneratedFramesDir() (string, error) {
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache dir: %w", err)
	}
	return filepath.Join(cache, "scrapetui", "avatar_frames"), nil
}

// EnsureFramesDir returns a directory that contains playable frames.
// If framesDir already holds PNGs it is returned untouched; otherwise
// a placeholder sequence is generated into the cache dir (reusing a
// previous generation when present) and that path is returned.
func EnsureFramesDir(framesDir string, frameCount int) (string, error) {
	if countPNGs(framesDir) > 0 {
		return framesDir, nil
	}

	cacheDir, err := GeneratedFramesDir()
	if err != nil {
		return "", err
	}
	if countPNGs(cacheDir) >= 2 {
		return cacheDir, nil
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating frames cache: %w", err)
	}
	if err := GeneratePlaceholderFrames(cacheDir, frameCount); err != nil {
		return "", err
	}
	return cacheDir, nil
}

func countPNGs(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".png") {
			n++
		}
	}
	return n
}

// GeneratePlaceholderFrames renders frameCount looping orb frames into
// outDir as zero-padded PNGs (000.png, 001.png, ...), named so the
// resolver's lexicographic ordering matches generation order.
func GeneratePlaceholderFrames(outDir string, frameCount int) error {
	if frameCount < 1 {
		frameCount = DefaultFrameCount
	}
	for i := 0; i < frameCount; i++ {
		t := float64(i) / float64(frameCount)
		frame := renderPlaceholderFrame(t)
		path := filepath.Join(outDir, fmt.Sprintf("%03d.png", i))
		if err := imageutil.SavePNG(frame.RGBA, path); err != nil {
			return fmt.Errorf("writing placeholder frame %d: %w", i, err)
		}
	}
	return nil
}

// renderPlaceholderFrame draws one frame of the loop at phase t in
// [0,1): a scanlined gradient backdrop, a glowing drifting orb with a
// rotating highlight, two glitch bars, a watermark, and a final soft
// blur pass.
func renderPlaceholderFrame(t float64) *imageutil.RGBAImage {
	w, h := frameWidth, frameHeight
	img := imageutil.CreateSolidImage(w, h, imageutil.RGB{})

	drawBackdrop(img, t)

	cx := float64(w) * (0.5 + 0.08*math.Sin(2*math.Pi*t))
	cy := float64(h) * (0.5 + 0.08*math.Cos(2*math.Pi*t))
	radius := float64(w) * (0.23 + 0.03*math.Sin(2*math.Pi*(t+0.1)))

	// Glow halo, widest and faintest ring first.
	for k := 10; k >= 1; k-- {
		kf := float64(k) / 10.0
		glow := uint8(110 * (1.0 - kf))
		alpha := uint8(22 * (1.0 - kf))
		rr := radius + float64(k)*2
		fillCircle(img, cx, cy, rr, color.NRGBA{R: 30 + glow, G: 40 + glow, B: 120 + glow, A: alpha})
	}

	fillCircle(img, cx, cy, radius, color.NRGBA{R: 70, G: 90, B: 220, A: 210})
	strokeCircle(img, cx, cy, radius, 2, color.NRGBA{R: 200, G: 220, B: 255, A: 240})

	angle := 2 * math.Pi * t
	hx := cx + radius*0.55*math.Cos(angle)
	hy := cy + radius*0.55*math.Sin(angle)
	fillCircle(img, hx, hy, radius*0.25, color.NRGBA{R: 255, G: 255, B: 255, A: 90})

	drawGlitchBars(img, t)
	drawWatermark(img)

	return imageutil.GaussianBlur(img)
}

func drawBackdrop(img *imageutil.RGBAImage, t float64) {
	w, h := img.Width(), img.Height()
	baseR := 10 + 10*math.Sin(2*math.Pi*t)
	baseG := 8 + 8*math.Sin(2*math.Pi*(t+0.2))
	baseB := 14 + 12*math.Sin(2*math.Pi*(t+0.4))

	for y := 0; y < h; y++ {
		v := float64(y) / float64(h-1)
		wave := 0.5 + 0.5*math.Sin(2*math.Pi*(t+v*0.9))
		r := baseR + 30*wave
		g := baseG + 18*wave
		b := baseB + 40*wave
		if y%4 == 0 {
			// Scanline rows run darker.
			r *= 0.75
			g *= 0.75
			b *= 0.75
		}
		c := imageutil.RGB{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
		for x := 0; x < w; x++ {
			img.SetRGB(x, y, c)
		}
	}
}

func drawGlitchBars(img *imageutil.RGBAImage, t float64) {
	w, h := img.Width(), img.Height()
	glitchY := int(math.Mod(t*1.7, 1.0) * float64(h))
	fillRect(img, 0, glitchY, w, 2, color.NRGBA{R: 255, G: 80, B: 220, A: 35})
	fillRect(img, 0, (glitchY+36)%h, w, 1, color.NRGBA{R: 80, G: 255, B: 220, A: 20})
}

func drawWatermark(img *imageutil.RGBAImage) {
	fnt := watermarkFont()
	if fnt == nil {
		return
	}

	const size = 10.0
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(fnt)
	ctx.SetFontSize(size)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img.RGBA)
	ctx.SetSrc(image.NewUniform(color.NRGBA{R: 170, G: 190, B: 235, A: 160}))
	ctx.SetHinting(font.HintingFull)

	pt := freetype.Pt(4, img.Height()-5)
	// A failed draw just leaves the frame unlabeled.
	_, _ = ctx.DrawString(watermark, pt)
}

func watermarkFont() *truetype.Font {
	labelFontOnce.Do(func() {
		fnt, err := freetype.ParseFont(goregular.TTF)
		if err != nil {
			return
		}
		labelFont = fnt
	})
	return labelFont
}

// fillCircle alpha-blends a filled circle onto an opaque canvas.
func fillCircle(img *imageutil.RGBAImage, cx, cy, r float64, c color.NRGBA) {
	forCircleBox(img, cx, cy, r, func(x, y int, dist float64) {
		if dist <= r {
			blendPixel(img, x, y, c)
		}
	})
}

// strokeCircle alpha-blends a circle outline of the given width.
func strokeCircle(img *imageutil.RGBAImage, cx, cy, r, width float64, c color.NRGBA) {
	forCircleBox(img, cx, cy, r, func(x, y int, dist float64) {
		if dist <= r && dist > r-width {
			blendPixel(img, x, y, c)
		}
	})
}

func forCircleBox(img *imageutil.RGBAImage, cx, cy, r float64, visit func(x, y int, dist float64)) {
	minX := int(math.Floor(cx - r))
	maxX := int(math.Ceil(cx + r))
	minY := int(math.Floor(cy - r))
	maxY := int(math.Ceil(cy + r))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if x < 0 || y < 0 || x >= img.Width() || y >= img.Height() {
				continue
			}
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			visit(x, y, math.Hypot(dx, dy))
		}
	}
}

func fillRect(img *imageutil.RGBAImage, x, y, w, h int, c color.NRGBA) {
	for yy := y; yy < y+h && yy < img.Height(); yy++ {
		if yy < 0 {
			continue
		}
		for xx := x; xx < x+w && xx < img.Width(); xx++ {
			if xx < 0 {
				continue
			}
			blendPixel(img, xx, yy, c)
		}
	}
}

// blendPixel composites a straight-alpha color over one pixel. The
// canvas stays fully opaque, so only the color channels mix.
func blendPixel(img *imageutil.RGBAImage, x, y int, c color.NRGBA) {
	d := img.GetRGB(x, y)
	a := float64(c.A) / 255.0
	img.SetRGB(x, y, imageutil.RGB{
		R: clampChannel(float64(c.R)*a + float64(d.R)*(1-a)),
		G: clampChannel(float64(c.G)*a + float64(d.G)*(1-a)),
		B: clampChannel(float64(c.B)*a + float64(d.B)*(1-a)),
	})
}

func clampChannel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
