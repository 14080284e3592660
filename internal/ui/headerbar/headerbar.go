// Package headerbar renders the single-line header with view tabs and
// account status.
package headerbar

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/aurora/internal/ui/render"
	"github.com/llehouerou/aurora/internal/ui/styles"
)

// Height is the fixed height of the header bar.
const Height = 1

// View identifies a main view.
type View string

const (
	ViewSearch View = "search"
	ViewLikes  View = "likes"
)

type tab struct {
	key  string
	name string
	view View
}

var tabs = []tab{
	{"/", "Search", ViewSearch},
	{"L", "Likes", ViewLikes},
}

// Status is the right-hand account summary.
type Status struct {
	UserID  string
	Likes   int
	Pending int // like writes not yet confirmed by the store
}

func activeStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(styles.T().Primary).Bold(true) }
func inactiveStyle() lipgloss.Style { return styles.T().S().Muted }
func separatorStyle() lipgloss.Style {
	return styles.T().S().Subtle
}

// Render returns the header for the given width.
func Render(current View, st Status, width int) string {
	if width < 20 {
		return ""
	}

	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		style := inactiveStyle()
		if t.view == current {
			style = activeStyle()
		}
		parts = append(parts, style.Render(t.key+" "+t.name))
	}
	left := " " + strings.Join(parts, separatorStyle().Render(" │ "))

	right := statusText(st)
	if lipgloss.Width(left)+lipgloss.Width(right)+2 > width {
		right = ""
	}
	return render.Row(left, right, width)
}

func statusText(st Status) string {
	var parts []string
	if st.UserID != "" {
		parts = append(parts, "user "+shortID(st.UserID))
	}
	parts = append(parts, styles.T().S().Liked.Render("♥")+" "+strconv.Itoa(st.Likes))
	if st.Pending > 0 {
		parts = append(parts, styles.T().S().Warning.Render(strconv.Itoa(st.Pending)+" syncing"))
	}
	return separatorStyle().Render(strings.Join(parts, "  ")) + " "
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
