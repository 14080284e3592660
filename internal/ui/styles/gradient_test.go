package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
)

func TestBlend_Endpoints(t *testing.T) {
	red, _ := colorful.Hex("#ff0000")
	blue, _ := colorful.Hex("#0000ff")

	assert.Equal(t, "#ff0000", blend(red, blue, 0, 5).Hex())
	assert.Equal(t, "#0000ff", blend(red, blue, 4, 5).Hex())
	assert.Equal(t, "#ff0000", blend(red, blue, 0, 1).Hex())
}

func TestToColorful_NonHexIsGray(t *testing.T) {
	assert.Equal(t, gray, toColorful(lipgloss.Color("240")))
	assert.Equal(t, "#a78bfa", toColorful(T().Primary).Hex())
}

func TestGradient_KeepsText(t *testing.T) {
	red, _ := colorful.Hex("#ff0000")
	blue, _ := colorful.Hex("#0000ff")

	assert.Empty(t, Gradient("", red, blue, false))
	assert.Equal(t, 5, lipgloss.Width(Gradient("héllo", red, blue, false)))
}

func TestAccentColor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#336699"), AccentColor(colorful.Color{R: 0.2, G: 0.4, B: 0.6}))
	// out-of-gamut values are clamped
	assert.Equal(t, lipgloss.Color("#ff0000"), AccentColor(colorful.Color{R: 1.4, G: -0.2, B: 0}))
}

func TestAccentTitle_KeepsWidth(t *testing.T) {
	assert.Equal(t, 7, lipgloss.Width(AccentTitle("Starboy", colorful.Color{})))
	assert.Equal(t, 7, lipgloss.Width(AccentTitle("Starboy", colorful.Color{R: 0.8, G: 0.1, B: 0.1})))
}
