// Package list provides a generic scrollable list component.
package list

import (
	"github.com/llehouerou/aurora/internal/keymap"
	"github.com/llehouerou/aurora/internal/ui"
)

// Action represents what happened during HandleAction.
type Action int

const (
	ActionNone    Action = iota
	ActionMoved          // cursor moved
	ActionSelect         // play from the cursor
	ActionPlayAll        // play the whole list
)

// Result tells the parent what happened.
type Result struct {
	Action Action
	Index  int // item the action applies to, -1 if none
}

// Model is a generic scrollable list. It owns navigation; the parent renders
// rows using VisibleRange.
type Model[T any] struct {
	ui.Base
	items  []T
	cursor cursor
}

// New creates a list keeping margin rows visible around the cursor.
func New[T any](margin int) Model[T] {
	return Model[T]{cursor: cursor{margin: margin}}
}

// SetItems replaces all items and clamps the cursor.
func (m *Model[T]) SetItems(items []T) {
	m.items = items
	m.cursor.clampToBounds(len(items))
	m.cursor.ensureVisible(len(items), m.rows())
}

// Items returns the current items.
func (m Model[T]) Items() []T {
	return m.items
}

// Len returns the number of items.
func (m Model[T]) Len() int {
	return len(m.items)
}

// Selected returns the item under the cursor.
func (m Model[T]) Selected() (T, bool) {
	if len(m.items) == 0 || m.cursor.pos >= len(m.items) {
		var zero T
		return zero, false
	}
	return m.items[m.cursor.pos], true
}

// SelectedIndex returns the cursor position.
func (m Model[T]) SelectedIndex() int {
	return m.cursor.pos
}

// Select moves the cursor to index.
func (m *Model[T]) Select(index int) {
	m.cursor.jump(index, len(m.items), m.rows())
}

// VisibleRange returns [start, end) indices for rendering.
func (m Model[T]) VisibleRange() (start, end int) {
	return m.cursor.visibleRange(len(m.items), m.rows())
}

// HandleAction applies a resolved key action. Unfocused lists ignore input.
func (m *Model[T]) HandleAction(a keymap.Action) Result {
	if !m.IsFocused() {
		return Result{Index: -1}
	}
	n, h := len(m.items), m.rows()

	switch a { //nolint:exhaustive // list actions only
	case keymap.ActionMoveUp:
		m.cursor.move(-1, n, h)
	case keymap.ActionMoveDown:
		m.cursor.move(1, n, h)
	case keymap.ActionJumpStart:
		m.cursor.jump(0, n, h)
	case keymap.ActionJumpEnd:
		m.cursor.jump(n-1, n, h)
	case keymap.ActionSelect:
		if n > 0 {
			return Result{Action: ActionSelect, Index: m.cursor.pos}
		}
		return Result{Index: -1}
	case keymap.ActionPlayAll:
		if n > 0 {
			return Result{Action: ActionPlayAll, Index: 0}
		}
		return Result{Index: -1}
	default:
		return Result{Index: -1}
	}
	return Result{Action: ActionMoved, Index: m.cursor.pos}
}

func (m Model[T]) rows() int {
	return m.ListHeight(ui.PanelOverhead)
}
