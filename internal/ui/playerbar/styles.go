package playerbar

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/llehouerou/aurora/internal/ui/styles"
)

const (
	playSymbol    = "▶"
	pauseSymbol   = "⏸"
	loadingSymbol = "◌"
	errorSymbol   = "✗"
	likedSymbol   = "♥"
	unlikedSymbol = "♡"

	swatchWidth = 2
)

func barStyle(accent colorful.Color) lipgloss.Style {
	border := styles.T().Border
	if accent != (colorful.Color{}) {
		border = styles.AccentColor(accent)
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

func artistStyle() lipgloss.Style       { return styles.T().S().Muted }
func progressTimeStyle() lipgloss.Style { return styles.T().S().Muted }
func progressBarFilled() lipgloss.Style { return lipgloss.NewStyle().Foreground(styles.T().Primary) }
func progressBarEmpty() lipgloss.Style  { return styles.T().S().Subtle }
func likedStyle() lipgloss.Style        { return styles.T().S().Liked }
func errorStyle() lipgloss.Style        { return styles.T().S().Error }

func accentSwatch(s State) string {
	c := styles.T().BgCursor
	if s.Accent != (colorful.Color{}) {
		c = styles.AccentColor(s.Accent)
	}
	return lipgloss.NewStyle().Background(c).Render("  ")
}
