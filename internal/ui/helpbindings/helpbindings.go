// Package helpbindings renders a scrollable key binding reference.
package helpbindings

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/aurora/internal/keymap"
	"github.com/llehouerou/aurora/internal/ui"
	"github.com/llehouerou/aurora/internal/ui/popup"
	"github.com/llehouerou/aurora/internal/ui/styles"
)

var categoryOrder = []string{"global", "playback", "list"}

var categoryLabels = map[string]string{
	"global":   "Global",
	"playback": "Playback",
	"list":     "Lists",
}

// Model holds the help overlay state.
type Model struct {
	ui.Base
	scrollOffset int
}

// New creates a help model.
func New() Model {
	return Model{}
}

// HandleKey scrolls the overlay. It returns false when the key closes it.
func (m *Model) HandleKey(key string) bool {
	switch key {
	case "?", "esc", "q":
		m.scrollOffset = 0
		return false
	case "j", "down":
		m.scrollOffset = min(m.scrollOffset+1, m.maxScroll())
	case "k", "up":
		m.scrollOffset = max(m.scrollOffset-1, 0)
	}
	return true
}

// View renders the overlay centered in the component's size.
func (m Model) View() string {
	if m.Width() == 0 || m.Height() == 0 {
		return ""
	}
	lines := strings.Split(buildContent(), "\n")
	end := min(m.scrollOffset+m.visibleHeight(), len(lines))
	start := min(m.scrollOffset, end)

	footer := "?/esc close"
	if len(lines) > m.visibleHeight() {
		footer = "j/k scroll · ?/esc close"
	}
	return popup.New("Help", strings.Join(lines[start:end], "\n"), footer).Render(m.Width(), m.Height())
}

func buildContent() string {
	t := styles.T()
	keyStyle := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	headerStyle := lipgloss.NewStyle().Foreground(t.Secondary).Bold(true)

	maxKeyWidth := 0
	for _, b := range keymap.All {
		maxKeyWidth = max(maxKeyWidth, lipgloss.Width(keyLabel(b)))
	}

	var sb strings.Builder
	for i, ctx := range categoryOrder {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(headerStyle.Render(categoryLabels[ctx]) + "\n")
		sb.WriteString(t.S().Subtle.Render(strings.Repeat("─", maxKeyWidth+15)) + "\n")
		for _, b := range keymap.ByContext(ctx) {
			label := keyLabel(b)
			sb.WriteString(keyStyle.Render(label + strings.Repeat(" ", maxKeyWidth-lipgloss.Width(label))))
			sb.WriteString("  " + t.S().Base.Render(b.Description) + "\n")
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func keyLabel(b keymap.Binding) string {
	keys := make([]string, 0, len(b.Keys))
	for _, k := range b.Keys {
		if k == " " {
			k = "space"
		}
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return strings.Join(keys, ", ")
}

func (m Model) visibleHeight() int {
	return max(m.Height()-8, 5)
}

func (m Model) maxScroll() int {
	total := strings.Count(buildContent(), "\n") + 1
	return max(total-m.visibleHeight(), 0)
}
