// internal/player/interface.go
package player

import (
	"errors"
	"time"
)

// ErrNoSource is returned by commands that need a loaded source.
var ErrNoSource = errors.New("no source loaded")

// Interface defines the audio engine contract for dependency injection and testing.
//
// Commands never invoke subscribers synchronously: events are delivered later
// from the engine's own goroutine. Every event carries the token passed to the
// Load call that produced it.
type Interface interface {
	Load(token uint64, streamURL string) error
	Play() error
	Pause() error
	Seek(position time.Duration) error
	SetVolume(level float64)
	Stop()
	Subscribe(fn func(Event)) (cancel func())
}

// EventType identifies an engine lifecycle event.
type EventType int

const (
	EventReady EventType = iota
	EventPlaying
	EventPaused
	EventBuffering
	EventTimeUpdate
	EventEnded
	EventError
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventReady:
		return "Ready"
	case EventPlaying:
		return "Playing"
	case EventPaused:
		return "Paused"
	case EventBuffering:
		return "Buffering"
	case EventTimeUpdate:
		return "TimeUpdate"
	case EventEnded:
		return "Ended"
	case EventError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Event is emitted by an engine.
type Event struct {
	Type     EventType
	Token    uint64
	Position time.Duration // TimeUpdate
	Duration time.Duration // Ready; 0 or less means the engine could not tell
	Err      error         // Error
}

// Verify StreamPlayer implements Interface at compile time.
var _ Interface = (*StreamPlayer)(nil)
