package playerbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/aurora/internal/playback"
	"github.com/llehouerou/aurora/internal/ui/render"
	"github.com/llehouerou/aurora/internal/ui/styles"
)

// renderExpanded shows title, artist and the block progress bar on their own
// rows, with a swatch of the cover accent on the left.
func renderExpanded(s State, width int) string {
	innerWidth := max(width-6, 0)
	swatch := accentSwatch(s)
	contentWidth := max(innerWidth-swatchWidth-2, 10)

	title := styles.AccentTitle(render.TruncateEllipsis(titleText(s), contentWidth-2), s.Accent)
	artist := s.Artist
	if artist == "" {
		artist = "Unknown Artist"
	}

	lines := []string{
		render.Row(title, heartMarker(s.Liked), contentWidth),
		artistStyle().Render(render.TruncateEllipsis(render.Sanitize(artist), contentWidth)),
	}
	if s.Status == playback.StatusError {
		lines = append(lines, statusSymbol(s.Status)+"  "+errorStyle().Render(render.TruncateEllipsis(errorText(s.Err), contentWidth-3)))
	} else {
		volume := RenderVolumeCompact(s.Volume)
		bar := RenderProgressBar(s.Position, s.Duration, contentWidth-lipgloss.Width(volume)-2, s.Status == playback.StatusPlaying)
		lines = append(lines, bar+"  "+volume)
	}

	content := make([]string, len(lines))
	for i, l := range lines {
		content[i] = swatch + "  " + l
	}
	return barStyle(s.Accent).Padding(0, 2).Width(width - 2).Render(strings.Join(content, "\n"))
}
