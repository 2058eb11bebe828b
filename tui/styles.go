package tui

import "github.com/charmbracelet/lipgloss"

// Theme is a named color set. The zero value is unusable; look themes
// up with themeByName.
type Theme struct {
	Name   string
	Accent lipgloss.Color
	Good   lipgloss.Color
	Bad    lipgloss.Color
	Muted  lipgloss.Color
	Text   lipgloss.Color
}

var themes = []Theme{
	{
		Name:   "dark",
		Accent: lipgloss.Color("#7D56F4"),
		Good:   lipgloss.Color("#04B575"),
		Bad:    lipgloss.Color("#ED567A"),
		Muted:  lipgloss.Color("#626262"),
		Text:   lipgloss.Color("#FAFAFA"),
	},
	{
		Name:   "light",
		Accent: lipgloss.Color("#5A32C8"),
		Good:   lipgloss.Color("#027A4E"),
		Bad:    lipgloss.Color("#C62B55"),
		Muted:  lipgloss.Color("#8A8A8A"),
		Text:   lipgloss.Color("#1A1A1A"),
	},
}

// themeByName returns the named theme, falling back to the first one.
func themeByName(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// nextTheme cycles through the theme list.
func nextTheme(name string) Theme {
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}

// styleSet holds every style the view uses, derived from one theme.
type styleSet struct {
	header         lipgloss.Style
	avatarPane     lipgloss.Style
	logPane        lipgloss.Style
	status         lipgloss.Style
	err            lipgloss.Style
	success        lipgloss.Style
	option         lipgloss.Style
	selectedOption lipgloss.Style
	inputLabel     lipgloss.Style
}

func newStyleSet(t Theme) styleSet {
	return styleSet{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			Background(t.Accent).
			Padding(0, 1),
		avatarPane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Accent).
			Padding(0, 1),
		logPane: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			PaddingLeft(1),
		status: lipgloss.NewStyle().
			Italic(true).
			Foreground(t.Muted),
		err: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Bad),
		success: lipgloss.NewStyle().
			Foreground(t.Good),
		option: lipgloss.NewStyle().
			PaddingLeft(2),
		selectedOption: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent),
		inputLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent),
	}
}
