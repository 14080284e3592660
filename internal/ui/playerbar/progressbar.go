package playerbar

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/llehouerou/aurora/internal/ui/render"
	"github.com/llehouerou/aurora/internal/ui/styles"
)

var (
	filledBlock = "▓"
	emptyBlock  = "░"
)

// RenderProgressBar renders a block-style progress bar.
// Format: ▶  1:23  ▓▓▓▓▓░░░░░  4:56
func RenderProgressBar(position, duration time.Duration, width int, playing bool) string {
	status := playSymbol
	if !playing {
		status = pauseSymbol
	}

	posStr := render.Duration(position)
	durStr := render.Duration(duration)

	fixedWidth := lipgloss.Width(status) + 2 + lipgloss.Width(posStr) + 2 + 2 + lipgloss.Width(durStr)
	barWidth := width - fixedWidth

	if barWidth < 3 {
		return status + "  " + posStr + " / " + durStr
	}

	filled := filledCells(position, duration, barWidth)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, barWidth-filled)

	return status + "  " + posStr + "  " + bar + "  " + durStr
}

// progressBar renders the thin compact bar, filled in the accent color.
func progressBar(position, duration time.Duration, width int, accent colorful.Color) string {
	filled := filledCells(position, duration, width)
	fill := progressBarFilled()
	if accent != (colorful.Color{}) {
		fill = fill.Foreground(styles.AccentColor(accent))
	}
	return fill.Render(strings.Repeat("━", filled)) +
		progressBarEmpty().Render(strings.Repeat("─", width-filled))
}

func filledCells(position, duration time.Duration, width int) int {
	if duration <= 0 || width <= 0 {
		return 0
	}
	ratio := float64(position) / float64(duration)
	return max(min(int(float64(width)*ratio), width), 0)
}
