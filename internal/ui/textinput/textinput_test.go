package textinput

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestSearchBox_Submit(t *testing.T) {
	m := New("Search…")
	m.SetSize(60, 1)
	m.Focus()

	typeText(&m, "  weeknd ")
	res, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, res.Submitted)
	assert.Equal(t, "weeknd", res.Query)
	assert.Equal(t, "  weeknd ", m.Value())
}

func TestSearchBox_BlankEnterIsIgnored(t *testing.T) {
	m := New("")
	m.Focus()
	typeText(&m, "   ")

	res, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, res.Submitted)
}

func TestSearchBox_EscCancels(t *testing.T) {
	m := New("")
	m.Focus()

	res, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, res.Canceled)
}

func TestSearchBox_IgnoresInputWhenBlurred(t *testing.T) {
	m := New("")
	typeText(&m, "abc")
	assert.Empty(t, m.Value())

	m.Focus()
	typeText(&m, "abc")
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "ab", m.Value())

	m.Blur()
	assert.False(t, m.IsFocused())
}

func TestSearchBox_ViewShowsLoading(t *testing.T) {
	m := New("")
	m.SetSize(60, 1)
	m.SetLoading(true)
	assert.Contains(t, m.View(), "searching")
}
