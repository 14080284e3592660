package playerbar

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/llehouerou/aurora/internal/playback"
	"github.com/llehouerou/aurora/internal/playlist"
	"github.com/llehouerou/aurora/internal/ui"
	"github.com/llehouerou/aurora/internal/ui/render"
	"github.com/llehouerou/aurora/internal/ui/styles"
)

// DisplayMode controls the player bar appearance.
type DisplayMode int

const (
	ModeCompact  DisplayMode = iota // Single-line view
	ModeExpanded                    // Title, artist and progress on separate rows
)

// State holds everything needed to render the player bar.
type State struct {
	Status      playback.Status
	Title       string
	Artist      string
	Position    time.Duration
	Duration    time.Duration
	Volume      float64
	Liked       bool
	Accent      colorful.Color // zero when no cover color is known
	Err         error
	DisplayMode DisplayMode
}

// Height returns the total height of the player bar for the given mode.
func Height(mode DisplayMode) int {
	if mode == ModeExpanded {
		return 5 // 3 content rows + 2 border rows
	}
	return 3
}

// NewState builds a bar state from a session snapshot and its current track.
func NewState(st playback.State, t *playlist.Track, liked bool, accent colorful.Color, mode DisplayMode) State {
	s := State{
		Status:      st.Status,
		Position:    st.CurrentTime,
		Duration:    st.Duration,
		Volume:      st.Volume,
		Err:         st.Err,
		Liked:       liked,
		Accent:      accent,
		DisplayMode: mode,
	}
	if t != nil {
		s.Title = t.Title
		s.Artist = t.Artist
		if s.Duration <= 0 {
			s.Duration = t.Duration
		}
	}
	return s
}

// Render returns the player bar for the given width, or "" when idle.
func Render(s State, width int) string {
	if s.Status == playback.StatusIdle {
		return ""
	}
	if s.DisplayMode == ModeExpanded && width >= ui.MinExpandedWidth {
		return renderExpanded(s, width)
	}
	return renderCompact(s, width)
}

func renderCompact(s State, width int) string {
	innerWidth := max(width-6, 0) // border + padding

	title := titleText(s)
	heart := heartMarker(s.Liked)
	timeStr := render.Duration(s.Position) + " / " + render.Duration(s.Duration)
	volume := RenderVolumeCompact(s.Volume)

	const separator = "   "
	sepWidth := lipgloss.Width(separator)
	fixed := lipgloss.Width(statusSymbol(s.Status)+"  ") + lipgloss.Width(timeStr) +
		lipgloss.Width(volume) + lipgloss.Width(heart) + 1 + sepWidth*3
	const minBarWidth = 10

	available := max(innerWidth-fixed-minBarWidth, 10)
	info := title
	if s.Artist != "" {
		info = title + " · " + s.Artist
	}
	info = render.TruncateEllipsis(info, available)
	infoWidth := lipgloss.Width(info)

	var line strings.Builder
	line.WriteString(heart + " ")
	line.WriteString(styledInfo(info, title, s.Accent))
	line.WriteString(separator)
	line.WriteString(statusSymbol(s.Status) + "  ")
	if s.Status == playback.StatusError {
		line.WriteString(errorStyle().Render(render.TruncateEllipsis(errorText(s.Err), max(innerWidth-fixed-infoWidth+minBarWidth, 5))))
	} else {
		barWidth := max(innerWidth-fixed-infoWidth, ui.MinProgressBarWidth)
		line.WriteString(progressBar(s.Position, s.Duration, barWidth, s.Accent))
	}
	line.WriteString(separator)
	line.WriteString(progressTimeStyle().Render(timeStr))
	line.WriteString(separator)
	line.WriteString(volume)

	content := lipgloss.NewStyle().Inline(true).MaxWidth(innerWidth).Render(line.String())
	return barStyle(s.Accent).Padding(0, 2).Width(width - 2).Render(content)
}

// styledInfo colors the title part of info with the accent gradient and the
// rest in the artist style. info may have been truncated inside the title.
func styledInfo(info, title string, accent colorful.Color) string {
	if rest, ok := strings.CutPrefix(info, title); ok {
		return styles.AccentTitle(title, accent) + artistStyle().Render(rest)
	}
	return styles.AccentTitle(info, accent)
}

func titleText(s State) string {
	title := render.Sanitize(s.Title)
	if title == "" {
		return "Unknown Track"
	}
	return title
}

func errorText(err error) string {
	if err == nil {
		return "playback failed"
	}
	return err.Error()
}

func statusSymbol(st playback.Status) string {
	switch st {
	case playback.StatusPlaying:
		return playSymbol
	case playback.StatusPaused:
		return pauseSymbol
	case playback.StatusLoading:
		return loadingSymbol
	case playback.StatusError:
		return errorSymbol
	default:
		return " "
	}
}

func heartMarker(liked bool) string {
	if liked {
		return likedStyle().Render(likedSymbol)
	}
	return artistStyle().Render(unlikedSymbol)
}
