package testutil

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type echoMsg string

type echoModel struct {
	keys []string
	echo []string
}

func (m echoModel) Init() tea.Cmd { return nil }

func (m echoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.keys = append(m.keys, msg.String())
		if msg.Type == tea.KeyEnter {
			return m, tea.Batch(
				func() tea.Msg { return echoMsg("a") },
				func() tea.Msg { return echoMsg("b") },
			)
		}
	case echoMsg:
		m.echo = append(m.echo, string(msg))
	}
	return m, nil
}

func (m echoModel) View() string { return "\x1b[1mkeys\x1b[0m" }

func TestHarness_SendAndRun(t *testing.T) {
	h := NewHarness(echoModel{})

	h.SendText("ab")
	h.SendKey(" ")
	cmd := h.SendSpecial(tea.KeyEnter)
	h.Run(cmd)

	m := h.Model().(echoModel)
	assert.Equal(t, []string{"a", "b", " ", "enter"}, m.keys)
	assert.ElementsMatch(t, []string{"a", "b"}, m.echo)
	assert.NotNil(t, h.LastCommand())

	h.ClearCommands()
	assert.Nil(t, h.LastCommand())
}

func TestHarness_View(t *testing.T) {
	h := NewHarness(echoModel{})
	assert.Equal(t, "keys", h.View())
	assert.True(t, ContainsLine("x\n\x1b[31mred line\x1b[0m", "red line"))
	assert.False(t, ContainsLine("x", "y"))
}
