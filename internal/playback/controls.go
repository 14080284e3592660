package playback

import (
	"fmt"
	"time"

	"github.com/llehouerou/aurora/internal/player"
)

// TogglePlay pauses when playing and resumes when paused or loading with a
// loaded source. It does nothing when idle or failed.
// Status follows the engine's events, not the command.
func (s *serviceImpl) TogglePlay() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if s.state.Status == StatusPlaying {
		return s.engine.Pause()
	}
	return s.resumeLocked()
}

// Play resumes playback. It is a no-op unless paused or loading.
func (s *serviceImpl) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.resumeLocked()
}

// Pause pauses playback. It is a no-op unless playing or loading.
func (s *serviceImpl) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.loaded {
		return nil
	}
	switch s.state.Status {
	case StatusPlaying, StatusLoading:
		return s.engine.Pause()
	case StatusIdle, StatusPaused, StatusError:
	}
	return nil
}

func (s *serviceImpl) resumeLocked() error {
	if !s.loaded {
		return nil
	}
	switch s.state.Status {
	case StatusPaused, StatusLoading:
		return s.engine.Play()
	case StatusIdle, StatusPlaying, StatusError:
	}
	return nil
}

// Seek moves to position, clamped to [0, Duration].
// CurrentTime is updated without waiting for the engine.
func (s *serviceImpl) Seek(position time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.loaded || s.state.Status == StatusIdle {
		return nil
	}

	position = clampPosition(position, s.state.Duration)
	if err := s.engine.Seek(position); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	s.setPositionLocked(position)
	return nil
}

// SetVolume sets the volume, clamped to [0, 1].
func (s *serviceImpl) SetVolume(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	level = player.ClampVolume(level)
	s.engine.SetVolume(level)
	next := s.state
	next.Volume = level
	s.setStateLocked(next)
}
