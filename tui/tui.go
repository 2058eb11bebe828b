// Package tui implements the interactive terminal frontend. A single
// bubbletea model drives the whole session: prompting for a URL,
// probing it, picking a video quality, downloading with progress, and
// animating the avatar pane in the corner. All mutation of the avatar
// view happens on the program goroutine; the scheduler's timers only
// post messages back into Update.
package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/wbrown/scrapetui/avatar"
)

// Mode selects what the session downloads.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeVideo  Mode = "video"
	ModeImages Mode = "images"
)

// Options configures a session. OutputDir is the base download
// directory; each run saves into a per-site, per-timestamp
// subdirectory beneath it.
type Options struct {
	URL       string
	Mode      Mode
	OutputDir string
	MaxImages int

	FramesDir     string
	AvatarBackend avatar.Backend
	AvatarFPS     float64
	AvatarWidth   int
	AvatarHeight  int

	// Theme names the starting theme. OnThemeChange, if set, is called
	// when the user cycles themes, so the caller can persist the choice.
	Theme         string
	OnThemeChange func(name string)

	Logger *log.Logger
}

// App owns the bubbletea program and the bridge between wall-clock
// timers and the program's message loop.
type App struct {
	opts Options

	mu      sync.Mutex
	program *tea.Program
}

func NewApp(opts Options) *App {
	if opts.Mode == "" {
		opts.Mode = ModeAuto
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &App{opts: opts}
}

// Run blocks until the session ends or the user quits.
func (a *App) Run() error {
	view := avatar.NewView(a.timer, func() {})
	m := newModel(a, view)

	p := tea.NewProgram(m, tea.WithAltScreen())
	a.mu.Lock()
	a.program = p
	a.mu.Unlock()

	_, err := p.Run()

	a.mu.Lock()
	a.program = nil
	a.mu.Unlock()

	view.Stop()
	return err
}

// send delivers a message to the running program, dropping it if the
// program has already exited.
func (a *App) send(msg tea.Msg) {
	a.mu.Lock()
	p := a.program
	a.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// timer is the avatar scheduler's TimerFunc. The callback is not run
// on the timer goroutine; it is wrapped in a message so that Update
// executes it on the program goroutine.
func (a *App) timer(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, func() {
		a.send(avatarTimerMsg{fn: fn})
	})
	return func() { t.Stop() }
}
