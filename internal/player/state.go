package player

// State is the engine's internal lifecycle.
//
//	┌──────────┐  Load   ┌──────────┐ decoded ┌──────────┐
//	│ Stopped  │ ──────▶ │ Loading  │ ──────▶ │  Ready   │
//	└──────────┘         └──────────┘         └──────────┘
//	     ▲                                          │ Play
//	     │ Stop / end of stream                     ▼
//	     │                ┌──────────┐  Pause  ┌──────────┐
//	     └─────────────── │  Paused  │ ◀────── │ Playing  │
//	                      └──────────┘ ──────▶ └──────────┘
//	                                    Play
//
// Play during Loading is remembered and applied once the stream is decoded.
type State int

const (
	Stopped State = iota
	Loading
	Ready
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Loading:
		return "Loading"
	case Ready:
		return "Ready"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// HasSource returns true once a stream has been decoded.
func (s State) HasSource() bool {
	return s == Ready || s == Playing || s == Paused
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Playing
}

// CanResume returns true if the state allows resuming.
func (s State) CanResume() bool {
	return s == Ready || s == Paused
}
