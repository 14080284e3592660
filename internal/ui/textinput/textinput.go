// Package textinput provides the single-line search box.
package textinput

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/aurora/internal/ui"
	"github.com/llehouerou/aurora/internal/ui/styles"
)

const charLimit = 256

// Result reports what the last key did.
type Result struct {
	Submitted bool   // enter with a non-blank query
	Canceled  bool   // esc
	Query     string // trimmed query on submit
}

// Model is a search box wrapping a bubbles text input.
type Model struct {
	ui.Base
	input   textinput.Model
	loading bool
}

// New creates an unfocused search box.
func New(placeholder string) Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = charLimit
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.T().Primary)
	ti.PlaceholderStyle = styles.T().S().Subtle
	return Model{input: ti}
}

// Focus focuses the input and returns the cursor blink command.
func (m *Model) Focus() tea.Cmd {
	m.SetFocused(true)
	return m.input.Focus()
}

// Blur removes focus.
func (m *Model) Blur() {
	m.SetFocused(false)
	m.input.Blur()
}

// Value returns the raw text.
func (m Model) Value() string {
	return m.input.Value()
}

// SetLoading toggles the searching indicator.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// Update handles a message while focused.
func (m *Model) Update(msg tea.Msg) (Result, tea.Cmd) {
	if !m.IsFocused() {
		return Result{}, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type { //nolint:exhaustive // other keys go to the input
		case tea.KeyEsc:
			return Result{Canceled: true}, nil
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return Result{}, nil
			}
			return Result{Submitted: true, Query: q}, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return Result{}, cmd
}

// View renders the box one line high.
func (m Model) View() string {
	m.input.Width = max(m.Width()-6, 10)
	line := m.input.View()
	if m.loading {
		line += styles.T().S().Subtle.Render("  searching…")
	}
	return line
}
