// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Binding maps keys to an action within a context.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "list"
}

// All contains every key binding, in help order.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionSwitchFocus, []string{"tab"}, "Switch between results and likes", "global"},
	{ActionSearch, []string{"/"}, "Search", "global"},
	{ActionShowLikes, []string{"L"}, "Show liked tracks", "global"},
	{ActionHelp, []string{"?"}, "Show help", "global"},

	// Playback
	{ActionPlayPause, []string{" ", "space"}, "Play/pause", "playback"},
	{ActionNextTrack, []string{"n", "pgdown"}, "Next track", "playback"},
	{ActionPrevTrack, []string{"p", "pgup"}, "Previous track", "playback"},
	{ActionSeekForward, []string{"shift+right", "l", "right"}, "Seek +5s", "playback"},
	{ActionSeekBack, []string{"shift+left", "h", "left"}, "Seek -5s", "playback"},
	{ActionVolumeUp, []string{"+", "="}, "Volume up", "playback"},
	{ActionVolumeDown, []string{"-"}, "Volume down", "playback"},
	{ActionToggleLike, []string{"f"}, "Like/unlike current track", "playback"},
	{ActionTogglePlayerDisplay, []string{"v"}, "Toggle player display", "playback"},

	// Lists
	{ActionMoveUp, []string{"k", "up"}, "Move up", "list"},
	{ActionMoveDown, []string{"j", "down"}, "Move down", "list"},
	{ActionJumpStart, []string{"g", "home"}, "First item", "list"},
	{ActionJumpEnd, []string{"G", "end"}, "Last item", "list"},
	{ActionSelect, []string{"enter"}, "Play", "list"},
	{ActionPlayAll, []string{"r"}, "Play whole list", "list"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}
