// Package popup renders centered modal dialogs.
package popup

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/aurora/internal/ui/render"
	"github.com/llehouerou/aurora/internal/ui/styles"
)

// Style configures the popup appearance.
type Style struct {
	Border      lipgloss.Border
	BorderColor lipgloss.Color
	TitleStyle  lipgloss.Style
	FooterStyle lipgloss.Style
}

// DefaultStyle returns the default popup style.
func DefaultStyle() Style {
	t := styles.T()
	return Style{
		Border:      lipgloss.RoundedBorder(),
		BorderColor: t.Border,
		TitleStyle:  t.S().Title,
		FooterStyle: t.S().Subtle,
	}
}

// ErrorStyle returns the style for error dialogs.
func ErrorStyle() Style {
	s := DefaultStyle()
	s.BorderColor = styles.T().Error
	s.TitleStyle = styles.T().S().Error.Bold(true)
	return s
}

// Dialog is a centered popup with title, content and footer.
type Dialog struct {
	Title   string
	Content string
	Footer  string
	Width   int // 0 = auto-fit content
	Style   Style
}

// New creates a dialog with the default style.
func New(title, content, footer string) *Dialog {
	return &Dialog{Title: title, Content: content, Footer: footer, Style: DefaultStyle()}
}

// Render returns the dialog centered in a termWidth x termHeight screen.
func (p *Dialog) Render(termWidth, termHeight int) string {
	style := p.Style

	innerWidth := p.Width
	if innerWidth == 0 {
		innerWidth = max(maxLineWidth(p.Content), lipgloss.Width(p.Title), lipgloss.Width(p.Footer)) + 2
	}
	innerWidth = max(min(innerWidth, termWidth-4), 1)

	lines := make([]string, 0, strings.Count(p.Content, "\n")+5)
	if p.Title != "" {
		lines = append(lines, centerLine(style.TitleStyle.Render(p.Title), innerWidth), "")
	}
	for line := range strings.SplitSeq(p.Content, "\n") {
		if lipgloss.Width(line) > innerWidth {
			line = render.TruncateEllipsis(line, innerWidth)
		}
		lines = append(lines, padLine(line, innerWidth))
	}
	if p.Footer != "" {
		lines = append(lines, "", centerLine(style.FooterStyle.Render(p.Footer), innerWidth))
	}

	box := lipgloss.NewStyle().
		Border(style.Border).
		BorderForeground(style.BorderColor).
		Padding(0, 1).
		Width(innerWidth + 2).
		Render(strings.Join(lines, "\n"))

	return Center(box, termWidth, termHeight)
}

func maxLineWidth(s string) int {
	maxW := 0
	for line := range strings.SplitSeq(s, "\n") {
		maxW = max(maxW, lipgloss.Width(line))
	}
	return maxW
}

func centerLine(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	pad := (width - w) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-w-pad)
}

func padLine(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// Center centers pre-rendered content in the terminal.
func Center(content string, termWidth, termHeight int) string {
	return lipgloss.Place(termWidth, termHeight, lipgloss.Center, lipgloss.Center, content)
}
