package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrResolution marks a failure to turn a source locator into a stream URL.
	ErrResolution = errors.New("stream resolution failed")
	// ErrPlayback marks a failure reported by the audio engine.
	ErrPlayback = errors.New("playback failed")
)

// TrackError is the failure of one track. Kind is ErrResolution or ErrPlayback.
type TrackError struct {
	Kind    error
	TrackID string
	Err     error
}

func (e *TrackError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: track %s", e.Kind, e.TrackID)
	}
	return fmt.Sprintf("%v: track %s: %v", e.Kind, e.TrackID, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *TrackError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
