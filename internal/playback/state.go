// internal/playback/state.go
package playback

import "time"

// Status is the transport status of the session.
//
//	Idle ──select──▶ Loading ──playing──▶ Playing ◀──playing── Paused
//	                   ▲  │                  │  ▲                  ▲
//	                   │  └─error─▶ Error    │  └──────────────────┤
//	                   └────────buffering────┴───────paused────────┘
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusPlaying
	StatusPaused
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusLoading:
		return "Loading"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a track is loaded or loading.
func (s Status) IsActive() bool {
	return s == StatusLoading || s == StatusPlaying || s == StatusPaused
}

// State is a snapshot of the session.
//
// Status is Idle iff the queue is empty. CurrentTime stays within
// [0, Duration] when Duration is known. Volume is in [0, 1].
type State struct {
	Status      Status
	CurrentTime time.Duration
	Duration    time.Duration
	Volume      float64
	TrackID     string
	// Err is the failure that put the session in StatusError.
	Err error
}

func clampPosition(pos, duration time.Duration) time.Duration {
	if pos < 0 {
		return 0
	}
	if duration > 0 && pos > duration {
		return duration
	}
	return pos
}
