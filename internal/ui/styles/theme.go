// Package styles holds the color palette and the shared lipgloss styles.
package styles

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette. Components read colors from it and use S for the
// common text styles.
type Theme struct {
	Primary   lipgloss.Color // focus, now playing
	Secondary lipgloss.Color // section headings

	FgBase   lipgloss.Color
	FgMuted  lipgloss.Color
	FgSubtle lipgloss.Color
	BgCursor lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color

	Error   lipgloss.Color
	Warning lipgloss.Color // likes waiting to sync
	Liked   lipgloss.Color

	once   sync.Once
	styles *Styles
}

// Styles are the text styles derived from a Theme.
type Styles struct {
	Base    lipgloss.Style
	Muted   lipgloss.Style
	Subtle  lipgloss.Style
	Title   lipgloss.Style
	Playing lipgloss.Style
	Cursor  lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Liked   lipgloss.Style
}

var defaultTheme = &Theme{
	Primary:   "#a78bfa",
	Secondary: "#f1a208",

	FgBase:   "#c0c0c0",
	FgMuted:  "#808080",
	FgSubtle: "#585858",
	BgCursor: "#303030",

	Border:      "#585858",
	BorderFocus: "#a78bfa",

	Error:   "#ff5555",
	Warning: "#f1a208",
	Liked:   "#f472b6",
}

// T returns the application theme.
func T() *Theme {
	return defaultTheme
}

// S returns the theme's text styles, built on first use.
func (t *Theme) S() *Styles {
	t.once.Do(func() {
		fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
		t.styles = &Styles{
			Base:    fg(t.FgBase),
			Muted:   fg(t.FgMuted),
			Subtle:  fg(t.FgSubtle),
			Title:   fg(t.FgBase).Bold(true),
			Playing: fg(t.Primary).Bold(true),
			Cursor:  fg(t.FgBase).Background(t.BgCursor),
			Error:   fg(t.Error),
			Warning: fg(t.Warning),
			Liked:   fg(t.Liked),
		}
	})
	return t.styles
}
