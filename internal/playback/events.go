package playback

import (
	"time"

	"github.com/llehouerou/aurora/internal/playlist"
)

// StateChange is emitted when status, track, duration, volume or error change.
// Position updates go to PositionChanged instead.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted every time the session starts loading a track,
// including a restart of the same track after it ended.
//
// Emitted by SelectTrack, PlayAll, SkipNext, SkipPrev, auto-advance on end
// and ReplaceEngine. Consumers handle track side effects (media surfaces,
// scrobbling, artwork) in response to this event.
type TrackChange struct {
	Previous *playlist.Track
	Current  *playlist.Track
	Index    int
}

// PositionChange is emitted on engine time updates and seeks.
type PositionChange struct {
	Position time.Duration
	Duration time.Duration
}

// ErrorEvent is emitted when a track fails to resolve or play.
type ErrorEvent struct {
	TrackID string
	Err     error // *TrackError
}
