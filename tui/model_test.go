package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kkdai/youtube/v2"

	"github.com/wbrown/scrapetui/avatar"
	"github.com/wbrown/scrapetui/download"
)

func testModel(t *testing.T, opts Options) *model {
	t.Helper()
	if opts.Mode == "" {
		opts.Mode = ModeAuto
	}
	if opts.FramesDir == "" {
		opts.FramesDir = t.TempDir() + "/absent"
	}
	if opts.AvatarWidth == 0 {
		opts.AvatarWidth = 8
		opts.AvatarHeight = 4
	}
	a := NewApp(opts)
	view := avatar.NewView(func(d time.Duration, fn func()) func() {
		return func() {}
	}, nil)
	return newModel(a, view)
}

func probeResult() videoProbedMsg {
	video := &youtube.Video{ID: "abc", Title: "clip"}
	return videoProbedMsg{
		video: video,
		options: []download.VideoOption{
			{Label: "720p", ItagNo: 22},
			{Label: "360p", ItagNo: 18},
		},
	}
}

func TestQualityPickNavigation(t *testing.T) {
	m := testModel(t, Options{})

	m.Update(probeResult())
	if m.state != statePickQuality {
		t.Fatalf("state = %d, want statePickQuality", m.state)
	}

	m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if m.cursor != 1 {
		t.Fatalf("cursor = %d after down, want 1", m.cursor)
	}
	m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, should not move past last option", m.cursor)
	}
	m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	if m.cursor != 0 {
		t.Fatalf("cursor = %d after up, want 0", m.cursor)
	}
}

func TestProbeFailureFallsBackToImages(t *testing.T) {
	m := testModel(t, Options{Mode: ModeAuto})
	m.input.SetValue("https://example.com/gallery")

	_, cmd := m.Update(probeFailedMsg{err: download.ErrUnsupportedURL})
	if m.state != stateDownloading {
		t.Fatalf("state = %d, want stateDownloading", m.state)
	}
	if cmd == nil {
		t.Fatal("expected an image download command")
	}
}

func TestProbeFailureIsFatalInVideoMode(t *testing.T) {
	m := testModel(t, Options{Mode: ModeVideo})

	m.Update(probeFailedMsg{err: download.ErrUnsupportedURL})
	if m.state != stateFailed {
		t.Fatalf("state = %d, want stateFailed", m.state)
	}
	if !errors.Is(m.err, download.ErrUnsupportedURL) {
		t.Fatalf("err = %v, want ErrUnsupportedURL", m.err)
	}
}

func TestProgressAndCompletion(t *testing.T) {
	m := testModel(t, Options{})
	m.state = stateDownloading

	m.Update(progressMsg{name: "clip.mp4", downloaded: 25, total: 100})
	if m.percent != 0.25 {
		t.Fatalf("percent = %v, want 0.25", m.percent)
	}
	if !m.totalKnown {
		t.Fatal("totalKnown = false with total set")
	}

	m.Update(downloadDoneMsg{paths: []string{"/tmp/clip.mp4"}})
	if m.state != stateDone {
		t.Fatalf("state = %d, want stateDone", m.state)
	}
	if got := m.View(); !strings.Contains(got, "clip.mp4") {
		t.Fatal("done view should list the saved file")
	}
}

func TestDownloadErrorFails(t *testing.T) {
	m := testModel(t, Options{})
	m.state = stateDownloading

	m.Update(downloadDoneMsg{err: errors.New("disk full")})
	if m.state != stateFailed {
		t.Fatalf("state = %d, want stateFailed", m.state)
	}
	if got := m.View(); !strings.Contains(got, "disk full") {
		t.Fatal("failed view should show the error")
	}
}

func TestAvatarTimerMsgRunsCallback(t *testing.T) {
	m := testModel(t, Options{})

	ran := false
	m.Update(avatarTimerMsg{fn: func() { ran = true }})
	if !ran {
		t.Fatal("timer callback did not run on Update")
	}
}

func TestThemeToggleNotifies(t *testing.T) {
	var saved string
	m := testModel(t, Options{Theme: "dark", OnThemeChange: func(n string) { saved = n }})

	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.theme.Name != "light" {
		t.Fatalf("theme = %q, want light", m.theme.Name)
	}
	if saved != "light" {
		t.Fatalf("persisted theme = %q, want light", saved)
	}

	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.theme.Name != "dark" {
		t.Fatalf("theme = %q after second toggle, want dark", m.theme.Name)
	}
}

func TestThemeByNameFallsBack(t *testing.T) {
	if got := themeByName("nope").Name; got != "dark" {
		t.Fatalf("fallback theme = %q, want dark", got)
	}
}

func TestLogIsBounded(t *testing.T) {
	m := testModel(t, Options{})
	for i := 0; i < maxLogLines*2; i++ {
		m.log("line")
	}
	if len(m.logLines) != maxLogLines {
		t.Fatalf("log lines = %d, want %d", len(m.logLines), maxLogLines)
	}
}
