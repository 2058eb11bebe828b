// Command scrapetui downloads videos and images from the web inside a
// terminal UI with an animated avatar. Run with no arguments to be
// prompted for a URL, or pass one on the command line.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	termimg "github.com/blacktop/go-termimg"
	"github.com/charmbracelet/log"

	"github.com/wbrown/scrapetui/avatar"
	"github.com/wbrown/scrapetui/avatar/assets"
	"github.com/wbrown/scrapetui/config"
	"github.com/wbrown/scrapetui/imageutil"
	"github.com/wbrown/scrapetui/tui"
)

func main() {
	settings := config.Load()

	outputDir := flag.String("output", settings.OutputDir,
		"Base directory for downloaded files")
	mode := flag.String("mode", "auto",
		"What to download: auto, video, or images")
	maxImages := flag.Int("max-images", 0,
		"Maximum images scraped from one page (0 = no limit)")
	framesDir := flag.String("frames-dir", "",
		"Directory of avatar frame images (default: generated cache)")
	backendName := flag.String("avatar-backend", settings.AvatarBackend,
		"Avatar renderer: auto, pixel, braille, or halfblock")
	fps := flag.Float64("avatar-fps", settings.AvatarFPS,
		"Avatar frame rate cap (0 = use source timing)")
	size := flag.String("avatar-size",
		fmt.Sprintf("%dx%d", settings.AvatarWidth, settings.AvatarHeight),
		"Avatar grid size in characters, as WxH")
	dump := flag.Bool("dump", false,
		"Render one avatar frame to stdout and exit")
	verbose := flag.Bool("verbose", false,
		"Enable debug logging")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	width, height, err := parseGridSize(*size)
	if err != nil {
		fatalf("invalid -avatar-size %q: %v", *size, err)
	}

	backend, err := parseBackend(*backendName)
	if err != nil {
		fatalf("%v", err)
	}

	tuiMode, err := parseMode(*mode)
	if err != nil {
		fatalf("%v", err)
	}

	frames, err := assets.EnsureFramesDir(*framesDir, assets.DefaultFrameCount)
	if err != nil {
		logger.Warn("avatar frames unavailable", "err", err)
		frames = *framesDir
	}

	if *dump {
		os.Exit(dumpFrame(frames, width, height, backend, *fps))
	}

	app := tui.NewApp(tui.Options{
		URL:           flag.Arg(0),
		Mode:          tuiMode,
		OutputDir:     *outputDir,
		MaxImages:     *maxImages,
		FramesDir:     frames,
		AvatarBackend: backend,
		AvatarFPS:     *fps,
		AvatarWidth:   width,
		AvatarHeight:  height,
		Theme:         settings.Theme,
		OnThemeChange: func(name string) {
			settings.Theme = name
			if err := config.Save(settings); err != nil {
				logger.Warn("could not save settings", "err", err)
			}
		},
		Logger: logger,
	})
	if err := app.Run(); err != nil {
		fatalf("%v", err)
	}
}

// dumpFrame renders the first avatar frame to stdout without entering
// the TUI. When the terminal supports an inline image protocol and the
// backend allows it, the frame is shown as a real image; otherwise it
// falls back to the glyph renderers.
func dumpFrame(framesDir string, width, height int, backend avatar.Backend, fps float64) int {
	if backend == avatar.BackendAuto || backend == avatar.BackendPixel {
		if path, ok := firstFramePNG(framesDir, fps); ok {
			proto := termimg.DetectProtocol()
			if proto == termimg.ITerm2 || proto == termimg.Kitty {
				if err := termimg.PrintFile(path); err == nil {
					return 0
				}
			}
		}
		if backend == avatar.BackendPixel {
			fmt.Fprintln(os.Stderr, "scrapetui: no inline image protocol detected")
			return 1
		}
		backend = avatar.BackendAuto
	}

	view := avatar.NewView(noopTimer, nil)
	if _, _, err := view.Load(framesDir, width, height, backend, fps); err != nil {
		fmt.Fprintf(os.Stderr, "scrapetui: %v\n", err)
		return 1
	}
	view.Stop()
	fmt.Print(avatar.RenderANSI(view.CurrentGrid()))
	return 0
}

// firstFramePNG materializes the first frame of the source as a PNG
// file for the inline image protocols, which consume files rather than
// cell grids.
func firstFramePNG(source string, fps float64) (string, bool) {
	framesList, status, err := avatar.ResolveFrames(source, fps)
	if err != nil || status != avatar.SourceOK || len(framesList) == 0 {
		return "", false
	}
	f, err := os.CreateTemp("", "scrapetui-frame-*.png")
	if err != nil {
		return "", false
	}
	f.Close()
	if err := imageutil.SavePNG(framesList[0].Image, f.Name()); err != nil {
		os.Remove(f.Name())
		return "", false
	}
	return f.Name(), true
}

func noopTimer(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

func parseGridSize(s string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want WxH")
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad width: %w", err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad height: %w", err)
	}
	if w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("dimensions must be positive")
	}
	return w, h, nil
}

func parseBackend(name string) (avatar.Backend, error) {
	switch b := avatar.Backend(name); b {
	case avatar.BackendAuto, avatar.BackendPixel,
		avatar.BackendBraille, avatar.BackendHalfBlock:
		return b, nil
	}
	return "", fmt.Errorf("unknown avatar backend %q (want auto, pixel, braille, or halfblock)", name)
}

func parseMode(name string) (tui.Mode, error) {
	switch m := tui.Mode(name); m {
	case tui.ModeAuto, tui.ModeVideo, tui.ModeImages:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want auto, video, or images)", name)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "scrapetui: "+format+"\n", args...)
	os.Exit(1)
}
