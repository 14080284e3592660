package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// gray stands in for palette entries that are not hex colors.
var gray = colorful.Color{R: 0.5, G: 0.5, B: 0.5}

// AccentColor converts a cover accent into a terminal color.
func AccentColor(c colorful.Color) lipgloss.Color {
	return lipgloss.Color(c.Clamped().Hex())
}

// AccentTitle renders a now-playing title fading from the cover accent into
// the primary color. A zero accent renders in the primary color alone.
func AccentTitle(text string, accent colorful.Color) string {
	if accent == (colorful.Color{}) {
		return lipgloss.NewStyle().Bold(true).Foreground(T().Primary).Render(text)
	}
	return Gradient(text, accent, toColorful(T().Primary), true)
}

// Gradient colors each grapheme of text along an HCL blend from one color to
// the other.
func Gradient(text string, from, to colorful.Color, bold bool) string {
	var clusters []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}

	var b strings.Builder
	for i, c := range clusters {
		style := lipgloss.NewStyle().Bold(bold).Foreground(AccentColor(blend(from, to, i, len(clusters))))
		b.WriteString(style.Render(c))
	}
	return b.String()
}

// blend returns step i of n evenly spaced colors from one end to the other.
func blend(from, to colorful.Color, i, n int) colorful.Color {
	if n < 2 {
		return from
	}
	return from.BlendHcl(to, float64(i)/float64(n-1)).Clamped()
}

func toColorful(c lipgloss.Color) colorful.Color {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return gray
	}
	return col
}
