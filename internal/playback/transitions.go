package playback

import (
	"errors"
	"time"

	"github.com/llehouerou/aurora/internal/player"
	"github.com/llehouerou/aurora/internal/playlist"
)

var errEmptyStreamURL = errors.New("resolver returned an empty stream url")

// SelectTrack moves t to the front of the queue and starts loading it.
func (s *serviceImpl) SelectTrack(t playlist.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue.Select(t)
	s.startCurrentLocked()
}

// PlayAll replaces the queue with tracks and starts at index start.
func (s *serviceImpl) PlayAll(tracks []playlist.Track, start int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue.ReplaceAll(tracks, start)
	s.startCurrentLocked()
}

// SkipNext advances to the next track, wrapping at the end.
func (s *serviceImpl) SkipNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.queue.Next() == nil {
		return
	}
	s.startCurrentLocked()
}

// SkipPrev moves to the previous track, wrapping at the start.
func (s *serviceImpl) SkipPrev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.queue.Prev() == nil {
		return
	}
	s.startCurrentLocked()
}

// startCurrentLocked opens a new generation for the queue's current track:
// Loading at position zero, then resolve (unless the stream URL is known),
// then load and play on the engine.
func (s *serviceImpl) startCurrentLocked() {
	s.gen++
	s.loaded = false

	cur := s.queue.Current()
	if cur == nil {
		s.lastTrack = nil
		s.engine.Stop()
		s.setStateLocked(State{Status: StatusIdle, Volume: s.state.Volume})
		return
	}

	previous := s.lastTrack
	s.lastTrack = copyTrack(cur)
	s.setStateLocked(State{
		Status:   StatusLoading,
		Duration: cur.Duration,
		Volume:   s.state.Volume,
		TrackID:  cur.ID,
	})
	change := TrackChange{Previous: previous, Current: copyTrack(cur), Index: s.queue.CurrentIndex()}
	s.broadcast(func(sub *Subscription) { sub.sendTrack(change) })

	if cur.HasStream() {
		s.loadLocked(cur.ID, cur.StreamURL)
		return
	}

	go s.resolve(s.gen, cur.ID, cur.SourceLocator)
}

func (s *serviceImpl) resolve(gen uint64, trackID, locator string) {
	streamURL, err := s.resolver.Resolve(s.ctx, locator)
	if err == nil && streamURL == "" {
		err = errEmptyStreamURL
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		s.logger.Debug("discarding stale resolution", "track", trackID, "gen", gen)
		return
	}
	if err != nil {
		s.failLocked(ErrResolution, trackID, err)
		return
	}
	s.queue.SetStreamURL(trackID, streamURL)
	s.loadLocked(trackID, streamURL)
}

func (s *serviceImpl) loadLocked(trackID, streamURL string) {
	if err := s.engine.Load(s.gen, streamURL); err != nil {
		s.failLocked(ErrPlayback, trackID, err)
		return
	}
	s.loaded = true
	if err := s.engine.Play(); err != nil {
		s.failLocked(ErrPlayback, trackID, err)
	}
}

// failLocked moves to StatusError. Failures are never retried and never
// advance the queue.
func (s *serviceImpl) failLocked(kind error, trackID string, err error) {
	terr := &TrackError{Kind: kind, TrackID: trackID, Err: err}
	s.logger.Warn("track failed", "track", trackID, "err", err, "kind", kind)

	next := s.state
	next.Status = StatusError
	next.Err = terr
	s.setStateLocked(next)
	s.broadcast(func(sub *Subscription) {
		sub.sendError(ErrorEvent{TrackID: trackID, Err: terr})
	})
}

func (s *serviceImpl) handleEngineEvent(e player.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || e.Token != s.gen || s.queue.IsEmpty() {
		return
	}

	switch e.Type {
	case player.EventReady:
		if s.state.Status != StatusLoading {
			return
		}
		next := s.state
		next.Duration = e.Duration
		if next.Duration <= 0 {
			if cur := s.queue.Current(); cur != nil {
				next.Duration = cur.Duration
			}
		}
		s.setStateLocked(next)

	case player.EventPlaying:
		s.setStatusLocked(StatusPlaying)

	case player.EventPaused:
		s.setStatusLocked(StatusPaused)

	case player.EventBuffering:
		if s.state.Status == StatusPlaying || s.state.Status == StatusPaused {
			s.setStatusLocked(StatusLoading)
		}

	case player.EventTimeUpdate:
		s.setPositionLocked(e.Position)

	case player.EventEnded:
		s.queue.Next()
		s.startCurrentLocked()

	case player.EventError:
		err := e.Err
		if err == nil {
			err = errors.New("engine error")
		}
		trackID := s.state.TrackID
		s.failLocked(ErrPlayback, trackID, err)
	}
}

func (s *serviceImpl) setStatusLocked(status Status) {
	next := s.state
	next.Status = status
	next.Err = nil
	s.setStateLocked(next)
}

func (s *serviceImpl) setPositionLocked(pos time.Duration) {
	pos = clampPosition(pos, s.state.Duration)
	s.state.CurrentTime = pos
	change := PositionChange{Position: pos, Duration: s.state.Duration}
	s.broadcast(func(sub *Subscription) { sub.sendPosition(change) })
}
