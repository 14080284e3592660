package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/aurora/internal/playlist"
	"github.com/llehouerou/aurora/internal/ui"
	"github.com/llehouerou/aurora/internal/ui/headerbar"
	"github.com/llehouerou/aurora/internal/ui/playerbar"
	"github.com/llehouerou/aurora/internal/ui/popup"
	"github.com/llehouerou/aurora/internal/ui/render"
	"github.com/llehouerou/aurora/internal/ui/styles"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.dialog != nil {
		d := popup.New(m.dialog.title, m.dialog.body, "esc close")
		d.Style = popup.ErrorStyle()
		return d.Render(m.width, m.height)
	}
	if m.showHelp {
		return m.help.View()
	}

	header := headerbar.Render(m.view, headerbar.Status{
		UserID:  m.deps.UserID,
		Likes:   len(m.deps.Likes.Liked()),
		Pending: m.deps.Likes.Pending(),
	}, m.width)

	var body string
	if m.view == headerbar.ViewLikes {
		body = m.renderLikes()
	} else {
		body = m.renderSearch()
	}

	view := header + "\n" + body
	if bar := m.renderPlayerBar(); bar != "" {
		view += "\n" + bar
	}
	return view
}

func (m Model) renderPlayerBar() string {
	liked := m.track != nil && m.deps.Likes.IsLiked(m.track.ID)
	s := playerbar.NewState(m.state, m.track, liked, m.accent, m.displayMode)
	return playerbar.Render(s, m.width)
}

func (m Model) renderSearch() string {
	box := m.searchBox.View()
	if m.searchErr != "" && m.focus != focusSearchBox {
		box = styles.T().S().Error.Render(render.TruncateEllipsis(m.searchErr, m.width))
	}

	title := "Results"
	if m.lastQuery != "" {
		title = fmt.Sprintf("Results for %q", m.lastQuery)
	}
	rows := make([]string, 0, m.results.Len())
	start, end := m.results.VisibleRange()
	items := m.results.Items()
	innerWidth := m.width - 4
	for i := start; i < end; i++ {
		rows = append(rows, m.trackRow(items[i], "", innerWidth, i == m.results.SelectedIndex() && m.focus == focusResults))
	}
	empty := "Press / to search"
	if m.lastQuery != "" {
		empty = "No results"
	}
	return box + "\n" + m.renderPanel(title, rows, empty, m.results.Height(), m.focus == focusResults)
}

func (m Model) renderLikes() string {
	status := ""
	if m.likesErr != "" {
		status = styles.T().S().Warning.Render(render.TruncateEllipsis(m.likesErr+" (showing cached likes)", m.width))
	}

	now := m.deps.Now()
	rows := make([]string, 0, m.likes.Len())
	start, end := m.likes.VisibleRange()
	items := m.likes.Items()
	innerWidth := m.width - 4
	for i := start; i < end; i++ {
		l := items[i]
		rows = append(rows, m.trackRow(l.Track(), render.Ago(l.LikedAt, now), innerWidth, i == m.likes.SelectedIndex() && m.focus == focusLikes))
	}
	title := fmt.Sprintf("Liked tracks (%d)", m.likes.Len())
	return status + "\n" + m.renderPanel(title, rows, "No liked tracks yet. Press f while a track plays.", m.likes.Height(), m.focus == focusLikes)
}

// trackRow renders "▶ ♥ Title · Artist        extra  3:50".
func (m Model) trackRow(t playlist.Track, extra string, width int, selected bool) string {
	st := styles.T().S()

	marker := "  "
	if m.track != nil && m.track.ID == t.ID && m.state.Status.IsActive() {
		marker = st.Playing.Render("▶ ")
	}
	heart := " "
	if m.deps.Likes.IsLiked(t.ID) {
		heart = st.Liked.Render("♥")
	}

	right := render.Duration(t.Duration)
	if extra != "" {
		right = extra + "  " + right
	}
	leftWidth := max(width-lipgloss.Width(right)-5, 5)
	text := render.Sanitize(t.Title)
	if t.Artist != "" {
		text += " · " + render.Sanitize(t.Artist)
	}
	text = render.TruncateAndPad(text, leftWidth)

	row := render.Row(marker+heart+" "+text, st.Muted.Render(right), width)
	if selected {
		return st.Cursor.Render(row)
	}
	return row
}

func (m Model) renderPanel(title string, rows []string, empty string, height int, focused bool) string {
	innerWidth := m.width - 2
	lines := []string{
		styles.T().S().Title.Render(render.TruncateEllipsis(title, innerWidth-2)),
		styles.T().S().Subtle.Render(render.Separator(innerWidth - 2)),
	}
	if len(rows) == 0 {
		lines = append(lines, styles.T().S().Subtle.Render(empty))
	}
	lines = append(lines, rows...)

	contentHeight := max(height-ui.BorderHeight, 1)
	if len(lines) > contentHeight {
		lines = lines[:contentHeight]
	}
	return styles.PanelStyle(focused).
		Width(innerWidth).
		Height(contentHeight).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}
