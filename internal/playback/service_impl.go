// internal/playback/service_impl.go
package playback

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/aurora/internal/player"
	"github.com/llehouerou/aurora/internal/playlist"
)

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

// serviceImpl serializes every transition under mu. Engine and resolver
// results re-enter through handleEngineEvent and resolve and are
// dropped unless they carry the current generation.
type serviceImpl struct {
	mu sync.RWMutex

	engine      player.Interface
	unsubscribe func()
	resolver    Resolver
	queue       *playlist.Queue
	logger      *log.Logger

	state State
	// gen identifies the current selection. It is the token passed to
	// engine.Load and checked on every result that comes back.
	gen    uint64
	loaded bool
	// lastTrack is the track most recently started, reported as
	// TrackChange.Previous.
	lastTrack *playlist.Track

	ctx    context.Context
	cancel context.CancelFunc

	subs   []*Subscription
	subsMu sync.RWMutex

	closed bool
}

// Option configures the service.
type Option func(*serviceImpl)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *serviceImpl) { s.logger = l }
}

// WithVolume sets the initial volume (clamped to [0, 1]).
func WithVolume(level float64) Option {
	return func(s *serviceImpl) { s.state.Volume = player.ClampVolume(level) }
}

// New creates a new playback service driving engine e over queue q.
func New(e player.Interface, q *playlist.Queue, r Resolver, opts ...Option) Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &serviceImpl{
		engine:   e,
		resolver: r,
		queue:    q,
		logger:   log.Default(),
		state:    State{Status: StatusIdle, Volume: 1},
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	e.SetVolume(s.state.Volume)
	s.unsubscribe = e.Subscribe(s.handleEngineEvent)
	return s
}

// State returns a snapshot of the session state.
func (s *serviceImpl) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentTrack returns a copy of the current track, or nil if none.
func (s *serviceImpl) CurrentTrack() *playlist.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyTrack(s.queue.Current())
}

// QueueTracks returns a copy of all tracks in the queue.
func (s *serviceImpl) QueueTracks() []playlist.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.Tracks()
}

// QueueCurrentIndex returns the current queue index (-1 if empty).
func (s *serviceImpl) QueueCurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.CurrentIndex()
}

// Subscribe creates a new event subscription.
func (s *serviceImpl) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	if s.closed {
		sub.close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

// ReplaceEngine swaps the audio engine and reloads the current track on it.
func (s *serviceImpl) ReplaceEngine(e player.Interface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.unsubscribe()
	s.engine.Stop()

	s.engine = e
	s.unsubscribe = e.Subscribe(s.handleEngineEvent)
	e.SetVolume(s.state.Volume)

	// Anything the old engine still has in flight is now stale.
	s.gen++
	s.loaded = false
	if !s.queue.IsEmpty() {
		s.startCurrentLocked()
	}
}

// Close shuts down the service.
func (s *serviceImpl) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	s.unsubscribe()
	s.engine.Stop()

	s.subsMu.Lock()
	s.closed = true
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()
	s.mu.Unlock()

	return nil
}

func (s *serviceImpl) broadcast(fn func(*Subscription)) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		fn(sub)
	}
}

// setStateLocked replaces the state and notifies subscribers if it changed.
func (s *serviceImpl) setStateLocked(next State) {
	prev := s.state
	s.state = next
	if prev == next {
		return
	}
	s.broadcast(func(sub *Subscription) {
		sub.sendState(StateChange{Previous: prev, Current: next})
	})
}

func copyTrack(t *playlist.Track) *playlist.Track {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
