package playback

import (
	"context"
	"time"

	"github.com/llehouerou/aurora/internal/player"
	"github.com/llehouerou/aurora/internal/playlist"
)

// Resolver turns a track's source locator into a playable stream URL.
type Resolver interface {
	Resolve(ctx context.Context, locator string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, locator string) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, locator string) (string, error) {
	return f(ctx, locator)
}

// Service defines the playback session contract.
type Service interface {
	// Track selection
	SelectTrack(t playlist.Track)
	PlayAll(tracks []playlist.Track, start int)
	SkipNext()
	SkipPrev()

	// Transport
	TogglePlay() error
	Play() error
	Pause() error
	Seek(position time.Duration) error
	SetVolume(level float64)

	// Engine swap (e.g. after an audio device change)
	ReplaceEngine(e player.Interface)

	// Queries
	State() State
	CurrentTrack() *playlist.Track
	QueueTracks() []playlist.Track
	QueueCurrentIndex() int

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}
