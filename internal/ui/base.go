package ui

// Base carries the focus flag and the size every panel tracks. Embed it in
// a component model:
//
//	type Model[T any] struct {
//	    ui.Base
//	    items []T
//	}
type Base struct {
	width, height int
	focused       bool
}

func (b *Base) SetFocused(focused bool) { b.focused = focused }
func (b Base) IsFocused() bool          { return b.focused }

// SetSize records the outer size of the component, borders included.
func (b *Base) SetSize(width, height int) {
	b.width = width
	b.height = height
}

func (b Base) Width() int  { return b.width }
func (b Base) Height() int { return b.height }

// ListHeight is the number of rows left for content once overhead rows
// (borders, headers) are taken out. Never negative.
func (b Base) ListHeight(overhead int) int {
	return max(b.height-overhead, 0)
}
