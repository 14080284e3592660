// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Catalog operations
	OpSearch  Op = "search"
	OpResolve Op = "resolve stream"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"
	OpPlaybackAudio Op = "open audio device"

	// Liked tracks
	OpLikesLoad   Op = "load liked tracks"
	OpLikeToggle  Op = "update liked tracks"
	OpStoreOpen   Op = "open liked-tracks store"
	OpUserPublish Op = "register user"

	// Identity and local state
	OpIdentity  Op = "resolve identity"
	OpStateOpen Op = "open local state"
	OpStateSave Op = "save local state"

	// Last.fm
	OpLastfmAuth       Op = "authenticate with Last.fm"
	OpLastfmScrobble   Op = "scrobble to Last.fm"
	OpLastfmNowPlaying Op = "update Last.fm now playing"

	// Media surfaces
	OpMediaSurface Op = "start media controls"
	OpArtwork      Op = "load artwork"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
