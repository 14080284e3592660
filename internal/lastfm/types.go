package lastfm

import (
	"time"

	"github.com/llehouerou/aurora/internal/playlist"
)

// ScrobbleTrack contains track metadata for scrobbling.
type ScrobbleTrack struct {
	Artist    string
	Track     string
	Duration  time.Duration
	Timestamp time.Time // When playback started
}

// FromTrack builds the scrobble record for t started at startedAt.
func FromTrack(t playlist.Track, startedAt time.Time) ScrobbleTrack {
	return ScrobbleTrack{
		Artist:    t.Artist,
		Track:     t.Title,
		Duration:  t.Duration,
		Timestamp: startedAt,
	}
}

// Scrobblable reports whether Last.fm accepts the track at all.
func (t ScrobbleTrack) Scrobblable() bool {
	return t.Artist != "" && t.Track != "" && (t.Duration == 0 || t.Duration > minTrackLength)
}
