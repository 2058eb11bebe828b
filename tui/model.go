package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kkdai/youtube/v2"

	"github.com/wbrown/scrapetui/avatar"
	"github.com/wbrown/scrapetui/download"
)

type sessionState int

const (
	statePrompt sessionState = iota
	stateProbing
	statePickQuality
	stateDownloading
	stateDone
	stateFailed
)

// Messages posted into Update. Everything that happens off the program
// goroutine arrives here.
type (
	avatarTimerMsg struct{ fn func() }

	videoProbedMsg struct {
		video   *youtube.Video
		options []download.VideoOption
	}
	probeFailedMsg struct{ err error }

	progressMsg struct {
		name       string
		downloaded int64
		total      int64
	}

	downloadDoneMsg struct {
		paths []string
		err   error
	}
)

const maxLogLines = 8

type model struct {
	app  *App
	view *avatar.View

	state  sessionState
	input  textinput.Model
	prog   progress.Model
	theme  Theme
	styles styleSet
	cursor int
	width  int

	video   *youtube.Video
	options []download.VideoOption
	runDir  string

	currentFile string
	percent     float64
	totalKnown  bool

	logLines []string
	paths    []string
	err      error
}

func newModel(a *App, view *avatar.View) *model {
	ti := textinput.New()
	ti.Placeholder = "https://..."
	ti.CharLimit = 2048
	ti.Width = 60
	ti.Focus()

	theme := themeByName(a.opts.Theme)
	m := &model{
		app:    a,
		view:   view,
		input:  ti,
		prog:   progress.New(progress.WithDefaultGradient()),
		theme:  theme,
		styles: newStyleSet(theme),
		state:  statePrompt,
	}

	frames, seconds, err := view.Load(
		a.opts.FramesDir,
		a.opts.AvatarWidth, a.opts.AvatarHeight,
		a.opts.AvatarBackend,
		a.opts.AvatarFPS,
	)
	if err != nil {
		m.log(fmt.Sprintf("avatar disabled: %v", err))
	} else if frames > 0 {
		m.log(fmt.Sprintf("avatar ready: %d frames in %.2fs", frames, seconds))
	}

	if a.opts.URL != "" {
		m.input.SetValue(a.opts.URL)
	}
	return m
}

func (m *model) log(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.app.opts.Logger.Debug(line)
}

func (m *model) Init() tea.Cmd {
	if m.app.opts.URL != "" {
		return m.startProbe(m.app.opts.URL)
	}
	return textinput.Blink
}

// startProbe decides the path for a submitted URL. Video probing runs
// first unless the session is pinned to images.
func (m *model) startProbe(rawURL string) tea.Cmd {
	m.runDir = filepath.Join(
		m.app.opts.OutputDir,
		download.DomainFromURL(rawURL),
		time.Now().Format("20060102-150405"),
	)
	if m.app.opts.Mode == ModeImages {
		m.state = stateDownloading
		m.log("scraping images from " + rawURL)
		return m.downloadImagesCmd(rawURL)
	}
	m.state = stateProbing
	m.log("probing " + rawURL)
	return m.probeCmd(rawURL)
}

func (m *model) probeCmd(rawURL string) tea.Cmd {
	return func() tea.Msg {
		d := download.NewVideoDownloader()
		video, err := d.Probe(context.Background(), rawURL)
		if err != nil {
			return probeFailedMsg{err: err}
		}
		return videoProbedMsg{video: video, options: download.BuildVideoOptions(video)}
	}
}

func (m *model) downloadVideoCmd(option download.VideoOption) tea.Cmd {
	video := m.video
	outputDir := m.runDir
	send := m.app.send
	return func() tea.Msg {
		d := download.NewVideoDownloader()
		path, err := d.DownloadFormat(context.Background(), video, option, outputDir,
			func(name string, downloaded, total int64) {
				send(progressMsg{name: name, downloaded: downloaded, total: total})
			})
		if err != nil {
			return downloadDoneMsg{err: err}
		}
		return downloadDoneMsg{paths: []string{path}}
	}
}

func (m *model) downloadImagesCmd(rawURL string) tea.Cmd {
	outputDir := m.runDir
	maxImages := m.app.opts.MaxImages
	logger := m.app.opts.Logger
	send := m.app.send
	return func() tea.Msg {
		d := download.NewImageDownloader(download.WithLogger(logger))
		paths, err := d.DownloadImages(context.Background(), rawURL, outputDir, maxImages,
			func(name string, downloaded, total int64) {
				send(progressMsg{name: name, downloaded: downloaded, total: total})
			})
		return downloadDoneMsg{paths: paths, err: err}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case avatarTimerMsg:
		msg.fn()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case videoProbedMsg:
		m.video = msg.video
		m.options = msg.options
		m.cursor = 0
		if len(m.options) == 0 {
			m.fail(errors.New("no downloadable formats for " + msg.video.Title))
			return m, nil
		}
		m.state = statePickQuality
		m.log("found: " + msg.video.Title)
		return m, nil

	case probeFailedMsg:
		if m.app.opts.Mode == ModeAuto && errors.Is(msg.err, download.ErrUnsupportedURL) {
			m.state = stateDownloading
			m.log("not a video URL, scraping images instead")
			return m, m.downloadImagesCmd(m.input.Value())
		}
		m.fail(msg.err)
		return m, nil

	case progressMsg:
		m.currentFile = msg.name
		m.totalKnown = msg.total > 0
		if m.totalKnown {
			m.percent = float64(msg.downloaded) / float64(msg.total)
		}
		return m, nil

	case downloadDoneMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.paths = msg.paths
		m.state = stateDone
		m.log(fmt.Sprintf("saved %d file(s)", len(msg.paths)))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) fail(err error) {
	m.err = err
	m.state = stateFailed
	m.log("error: " + err.Error())
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+t":
		m.theme = nextTheme(m.theme.Name)
		m.styles = newStyleSet(m.theme)
		if m.app.opts.OnThemeChange != nil {
			m.app.opts.OnThemeChange(m.theme.Name)
		}
		return m, nil
	case "q", "esc":
		if m.state != statePrompt {
			return m, tea.Quit
		}
	}

	switch m.state {
	case statePrompt:
		if msg.String() == "enter" {
			url := strings.TrimSpace(m.input.Value())
			if url == "" {
				return m, nil
			}
			return m, m.startProbe(url)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case statePickQuality:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			option := m.options[m.cursor]
			m.state = stateDownloading
			m.log("downloading " + option.Label)
			return m, m.downloadVideoCmd(option)
		}

	case stateDone, stateFailed:
		if msg.String() == "enter" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *model) View() string {
	var body string
	switch m.state {
	case statePrompt:
		body = m.styles.inputLabel.Render("URL to download:") + "\n\n" + m.input.View() +
			"\n\n" + m.styles.status.Render("enter to start, ctrl+c to quit")

	case stateProbing:
		body = m.styles.status.Render("probing " + strings.TrimSpace(m.input.Value()) + " ...")

	case statePickQuality:
		var b strings.Builder
		b.WriteString(m.styles.inputLabel.Render(m.video.Title) + "\n\n")
		for i, opt := range m.options {
			if i == m.cursor {
				b.WriteString(m.styles.selectedOption.Render("> "+opt.Label) + "\n")
			} else {
				b.WriteString(m.styles.option.Render(opt.Label) + "\n")
			}
		}
		b.WriteString("\n" + m.styles.status.Render("up/down to choose, enter to download, q to quit"))
		body = b.String()

	case stateDownloading:
		var b strings.Builder
		if m.currentFile != "" {
			b.WriteString(m.currentFile + "\n")
		}
		if m.totalKnown {
			b.WriteString(m.prog.ViewAs(m.percent))
		} else {
			b.WriteString(m.styles.status.Render("downloading..."))
		}
		body = b.String()

	case stateDone:
		var b strings.Builder
		b.WriteString(m.styles.success.Render(fmt.Sprintf("Done. Saved %d file(s):", len(m.paths))) + "\n")
		for _, p := range m.paths {
			b.WriteString("  " + p + "\n")
		}
		b.WriteString("\n" + m.styles.status.Render("enter or q to quit"))
		body = b.String()

	case stateFailed:
		body = m.styles.err.Render("Failed: "+m.err.Error()) +
			"\n\n" + m.styles.status.Render("enter or q to quit")
	}

	header := m.styles.header.Render("scrapetui")
	avatarPane := m.styles.avatarPane.Render(strings.TrimRight(avatar.RenderANSI(m.view.CurrentGrid()), "\n"))
	logPane := m.styles.logPane.Render(strings.Join(m.logLines, "\n"))

	left := lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", logPane)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", avatarPane)
}
