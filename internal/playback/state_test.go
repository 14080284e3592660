// internal/playback/state_test.go
package playback

import (
	"errors"
	"testing"
	"time"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusIdle, "Idle"},
		{StatusLoading, "Loading"},
		{StatusPlaying, "Playing"},
		{StatusPaused, "Paused"},
		{StatusError, "Error"},
		{Status(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatus_IsActive(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusIdle, false},
		{StatusLoading, true},
		{StatusPlaying, true},
		{StatusPaused, true},
		{StatusError, false},
	}
	for _, tt := range tests {
		if got := tt.status.IsActive(); got != tt.want {
			t.Errorf("%v.IsActive() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestClampPosition(t *testing.T) {
	const d = 200 * time.Second
	tests := []struct {
		pos, duration, want time.Duration
	}{
		{-5 * time.Second, d, 0},
		{500 * time.Second, d, d},
		{42 * time.Second, d, 42 * time.Second},
		{500 * time.Second, 0, 500 * time.Second},
	}
	for _, tt := range tests {
		if got := clampPosition(tt.pos, tt.duration); got != tt.want {
			t.Errorf("clampPosition(%v, %v) = %v, want %v", tt.pos, tt.duration, got, tt.want)
		}
	}
}

func TestTrackError_MatchesKindAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := error(&TrackError{Kind: ErrResolution, TrackID: "a", Err: cause})

	if !errors.Is(err, ErrResolution) {
		t.Error("errors.Is(err, ErrResolution) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if errors.Is(err, ErrPlayback) {
		t.Error("errors.Is(err, ErrPlayback) = true")
	}
	if got := err.Error(); got != "stream resolution failed: track a: boom" {
		t.Errorf("Error() = %q", got)
	}
}
