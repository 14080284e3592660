package app

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/llehouerou/aurora/internal/playback"
	"github.com/llehouerou/aurora/internal/playlist"
	"github.com/llehouerou/aurora/internal/store"
)

// PlaybackMessage is implemented by messages carrying session events.
type PlaybackMessage interface {
	playbackMessage()
}

// ServiceStateChangedMsg carries a session state change.
type ServiceStateChangedMsg struct {
	Previous, Current playback.State
}

func (ServiceStateChangedMsg) playbackMessage() {}

// ServiceTrackChangedMsg is sent when the session starts loading a track.
type ServiceTrackChangedMsg struct {
	Current *playlist.Track
	Index   int
}

func (ServiceTrackChangedMsg) playbackMessage() {}

// ServicePositionMsg carries a position update.
type ServicePositionMsg struct {
	Position, Duration time.Duration
}

func (ServicePositionMsg) playbackMessage() {}

// ServiceErrorMsg is sent when a track fails to resolve or play.
type ServiceErrorMsg struct {
	TrackID string
	Err     error
}

func (ServiceErrorMsg) playbackMessage() {}

// ServiceClosedMsg is sent when the session is closed.
type ServiceClosedMsg struct{}

func (ServiceClosedMsg) playbackMessage() {}

// TickMsg refreshes the liked list and the sync counter.
type TickMsg time.Time

// SearchResultMsg carries the answer to search number Seq.
type SearchResultMsg struct {
	Seq    int
	Query  string
	Tracks []playlist.Track
	Err    error
}

// LikesLoadedMsg carries the merged liked set after Load.
type LikesLoadedMsg struct {
	Likes []store.Like
	Err   error
}

// AccentMsg carries the cover accent for a track.
type AccentMsg struct {
	TrackID string
	Color   colorful.Color
	Err     error
}
