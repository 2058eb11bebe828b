package avatar

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wbrown/scrapetui/imageutil"
)

func populatedFramesDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFramePNG(t, dir, "000.png", imageutil.RGB{R: 255})
	writeFramePNG(t, dir, "001.png", imageutil.RGB{G: 255})
	writeFramePNG(t, dir, "002.png", imageutil.RGB{B: 255})
	return dir
}

func TestViewLoadAndPlayback(t *testing.T) {
	clock := &fakeClock{}
	redraws := 0
	v := NewView(clock.schedule, func() { redraws++ })

	dir := populatedFramesDir(t)
	count, seconds, err := v.Load(dir, 8, 4, BackendHalfBlock, 10)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if count != 3 {
		t.Fatalf("frame count = %d, want 3", count)
	}
	if seconds < 0 {
		t.Errorf("load seconds = %f", seconds)
	}
	if v.FramesLoaded() != 3 {
		t.Errorf("FramesLoaded = %d, want 3", v.FramesLoaded())
	}
	if !v.Playing() {
		t.Error("not playing after load")
	}

	before := v.CurrentGrid()
	clock.fire(t)
	if redraws != 1 {
		t.Errorf("redraws = %d, want 1", redraws)
	}
	if reflect.DeepEqual(before, v.CurrentGrid()) {
		t.Error("grid did not change after advance")
	}
}

func TestViewLoadIdempotent(t *testing.T) {
	clock := &fakeClock{}
	v := NewView(clock.schedule, nil)
	dir := populatedFramesDir(t)

	count1, _, err := v.Load(dir, 8, 4, BackendBraille, 10)
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	first := make([]RenderedFrame, len(v.frames))
	copy(first, v.frames)

	count2, _, err := v.Load(dir, 8, 4, BackendBraille, 10)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if count1 != count2 {
		t.Fatalf("frame counts differ: %d vs %d", count1, count2)
	}
	if !reflect.DeepEqual(first, v.frames) {
		t.Error("reload produced a different rendered sequence")
	}
	if n := clock.pending(); n != 1 {
		t.Errorf("%d pending timers after reload, want 1", n)
	}
}

func TestViewPlaceholders(t *testing.T) {
	clock := &fakeClock{}
	v := NewView(clock.schedule, nil)

	missing := filepath.Join(t.TempDir(), "nope")
	count, _, err := v.Load(missing, 8, 4, BackendAuto, 10)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if count != 0 {
		t.Fatalf("frame count = %d, want 0", count)
	}
	if v.Playing() {
		t.Error("playing with no frames")
	}
	text := PlainText(v.CurrentGrid())
	if !strings.Contains(text, "Missing frames:") || !strings.Contains(text, missing) {
		t.Errorf("placeholder = %q, want missing-source message", text)
	}

	empty := t.TempDir()
	if _, _, err := v.Load(empty, 8, 4, BackendAuto, 10); err != nil {
		t.Fatalf("Load: %v", err)
	}
	text = PlainText(v.CurrentGrid())
	if !strings.Contains(text, "No frames in:") || !strings.Contains(text, empty) {
		t.Errorf("placeholder = %q, want empty-source message", text)
	}
}

func TestViewPinnedPixelWithoutCapability(t *testing.T) {
	clock := &fakeClock{}
	v := NewView(clock.schedule, nil)
	dir := populatedFramesDir(t)

	if _, _, err := v.Load(dir, 8, 4, BackendPixel, 10); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("err = %v, want ErrBackendUnavailable", err)
	}
	if v.Playing() {
		t.Error("playing after failed load")
	}
}

func TestViewPixelStrategyWired(t *testing.T) {
	clock := &fakeClock{}
	v := NewView(clock.schedule, nil,
		WithViewPixelStrategy(&stubStrategy{name: "pixel-stub"}))
	dir := populatedFramesDir(t)

	count, _, err := v.Load(dir, 8, 4, BackendPixel, 10)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if count != 3 {
		t.Fatalf("frame count = %d, want 3", count)
	}
	if got := PlainText(v.CurrentGrid()); got != "pixel-stub" {
		t.Errorf("grid = %q, want pixel strategy output", got)
	}
}

func TestViewReconfigureCancelsPlayback(t *testing.T) {
	clock := &fakeClock{}
	v := NewView(clock.schedule, nil)
	dir := populatedFramesDir(t)

	if _, _, err := v.Load(dir, 8, 4, BackendHalfBlock, 10); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Reconfiguring to a missing source must cancel the stale timer.
	missing := filepath.Join(t.TempDir(), "gone")
	if _, _, err := v.Load(missing, 8, 4, BackendHalfBlock, 10); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := clock.pending(); n != 0 {
		t.Errorf("%d pending timers after idle reload, want 0", n)
	}
}

func TestRenderANSI(t *testing.T) {
	grid := Grid{
		{
			{Text: "▀▀", Fg: imageutil.RGB{R: 255}, Bg: imageutil.RGB{B: 255}},
			{Text: "▀", Fg: imageutil.RGB{G: 255}, Bg: imageutil.RGB{B: 255}},
		},
	}

	out := RenderANSI(grid)
	if !strings.Contains(out, "\x1b[38;2;255;0;0;48;2;0;0;255m▀▀") {
		t.Errorf("missing first span escape in %q", out)
	}
	if !strings.Contains(out, "\x1b[38;2;0;255;0;48;2;0;0;255m▀") {
		t.Errorf("missing second span escape in %q", out)
	}
	if !strings.HasSuffix(out, "\x1b[0m\n") {
		t.Errorf("line not reset-terminated: %q", out)
	}
}
