package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit        Action = "quit"
	ActionSwitchFocus Action = "switch_focus"
	ActionSearch      Action = "search"
	ActionShowLikes   Action = "show_likes"
	ActionHelp        Action = "help"

	// Playback actions
	ActionPlayPause   Action = "play_pause"
	ActionNextTrack   Action = "next_track"
	ActionPrevTrack   Action = "prev_track"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"
	ActionVolumeUp    Action = "volume_up"
	ActionVolumeDown  Action = "volume_down"
	ActionToggleLike  Action = "toggle_like"

	ActionTogglePlayerDisplay Action = "toggle_player_display"

	// List actions
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
	ActionJumpStart Action = "jump_start"
	ActionJumpEnd   Action = "jump_end"
	ActionSelect    Action = "select"   // enter - play from here
	ActionPlayAll   Action = "play_all" // r - replace queue with the whole list
)
