// Package testutil provides helpers for driving bubbletea models in tests.
package testutil

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes escape sequences so rendered output can be compared.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// ContainsLine reports whether any line of output contains substr.
func ContainsLine(output, substr string) bool {
	for line := range strings.SplitSeq(StripANSI(output), "\n") {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// Harness wraps a tea.Model and records the commands its updates return.
type Harness struct {
	model tea.Model
	cmds  []tea.Cmd
}

// NewHarness creates a harness and captures the model's init command.
func NewHarness(m tea.Model) *Harness {
	h := &Harness{model: m}
	if cmd := m.Init(); cmd != nil {
		h.cmds = append(h.cmds, cmd)
	}
	return h
}

// Model returns the current model for type assertion.
func (h *Harness) Model() tea.Model {
	return h.model
}

// View returns the rendered model with escape codes stripped.
func (h *Harness) View() string {
	return StripANSI(h.model.View())
}

// Send delivers msg to the model and returns the resulting command.
func (h *Harness) Send(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	h.model, cmd = h.model.Update(msg)
	if cmd != nil {
		h.cmds = append(h.cmds, cmd)
	}
	return cmd
}

// SendKey types key as runes ("a", "/", " ").
func (h *Harness) SendKey(key string) tea.Cmd {
	if key == " " {
		return h.Send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	}
	return h.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
}

// SendText types each rune of s.
func (h *Harness) SendText(s string) {
	for _, r := range s {
		h.SendKey(string(r))
	}
}

// SendSpecial sends a non-rune key (enter, esc, tab, arrows).
func (h *Harness) SendSpecial(t tea.KeyType) tea.Cmd {
	return h.Send(tea.KeyMsg{Type: t})
}

// LastCommand returns the most recent command, or nil.
func (h *Harness) LastCommand() tea.Cmd {
	if len(h.cmds) == 0 {
		return nil
	}
	return h.cmds[len(h.cmds)-1]
}

// ClearCommands forgets recorded commands.
func (h *Harness) ClearCommands() {
	h.cmds = nil
}

// Run executes cmd and feeds its message back into the model, expanding
// batches. Commands that block (event watchers, ticks) must not be passed.
func (h *Harness) Run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			h.Run(c)
		}
		return
	}
	if msg != nil {
		h.Send(msg)
	}
}
