// Package library keeps the user's liked tracks in sync with the remote store.
//
// The local set is authoritative for display: toggles apply immediately and
// the remote write follows in the background. Each track has at most one
// writer at a time; toggles made while a write is in flight are folded into
// the next write so local and remote end on the same final state.
package library

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/aurora/internal/playlist"
	"github.com/llehouerou/aurora/internal/store"
)

const (
	defaultWriteAttempts = 3
	defaultBackoff       = 500 * time.Millisecond
)

// Sync is the local liked set plus its remote write pipeline. The local set
// holds the likes of the user last passed to Load or ToggleLike; writes and
// toggle history are keyed by user and track.
type Sync struct {
	store    store.Store
	logger   *log.Logger
	attempts int
	backoff  time.Duration
	now      func() time.Time

	mu      sync.Mutex
	liked   []store.Like
	pending map[string]*write
	// toggles counts local changes; touched holds the count at each key's
	// last change so Load can tell which answers predate it.
	toggles uint64
	touched map[string]uint64
	wg      sync.WaitGroup
}

func likeKey(userID, trackID string) string {
	return userID + "\x00" + trackID
}

// write is the desired remote state of one track.
type write struct {
	like    store.Like
	liked   bool
	version uint64
}

// Option configures a Sync.
type Option func(*Sync)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Sync) { s.logger = l }
}

// WithWriteAttempts sets how many times a remote write is tried before it is
// dropped. Values below 1 mean a single attempt.
func WithWriteAttempts(n int) Option {
	return func(s *Sync) { s.attempts = max(n, 1) }
}

// WithBackoff sets the delay before the first retry. It doubles on each retry.
func WithBackoff(d time.Duration) Option {
	return func(s *Sync) { s.backoff = d }
}

// WithClock sets the time source used for LikedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Sync) { s.now = now }
}

// New creates a Sync over st.
func New(st store.Store, opts ...Option) *Sync {
	s := &Sync{
		store:    st,
		logger:   log.Default(),
		attempts: defaultWriteAttempts,
		backoff:  defaultBackoff,
		now:      time.Now,
		pending:  make(map[string]*write),
		touched:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the user's likes, most recent first, and makes them the local
// set. Tracks toggled since the request was issued, or with a write still in
// flight, keep their local state. On failure the cached set is returned
// unchanged along with a *SyncError.
func (s *Sync) Load(ctx context.Context, userID string) ([]store.Like, error) {
	s.mu.Lock()
	since := s.toggles
	s.mu.Unlock()

	remote, err := s.store.ListByUser(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Warn("load liked tracks", "user", userID, "err", err)
		return slices.Clone(s.liked), &SyncError{Op: OpLoad, UserID: userID, Err: err}
	}

	local := func(trackID string) bool {
		key := likeKey(userID, trackID)
		if _, busy := s.pending[key]; busy {
			return true
		}
		return s.touched[key] > since
	}

	merged := make([]store.Like, 0, len(remote)+len(s.pending))
	for _, l := range remote {
		if !local(l.TrackID) {
			merged = append(merged, l)
		}
	}
	for _, l := range s.liked {
		if l.UserID == userID && local(l.TrackID) {
			merged = append(merged, l)
		}
	}
	store.SortByLikedAt(merged)

	s.liked = merged
	return slices.Clone(merged), nil
}

// ToggleLike flips t's membership locally and schedules the remote write.
// It returns the new local state. Remote failures are logged and never undo
// the local change.
func (s *Sync) ToggleLike(ctx context.Context, t playlist.Track, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	like := store.FromTrack(userID, t, s.now())
	key := likeKey(userID, t.ID)
	s.toggles++
	s.touched[key] = s.toggles

	idx := slices.IndexFunc(s.liked, func(l store.Like) bool {
		return l.UserID == userID && l.TrackID == t.ID
	})
	nowLiked := idx < 0
	if nowLiked {
		s.liked = slices.Insert(s.liked, 0, like)
	} else {
		like = s.liked[idx]
		s.liked = slices.Delete(s.liked, idx, idx+1)
	}

	if w, ok := s.pending[key]; ok {
		w.like = like
		w.liked = nowLiked
		w.version++
		return nowLiked
	}

	s.pending[key] = &write{like: like, liked: nowLiked, version: 1}
	s.wg.Add(1)
	go s.writer(context.WithoutCancel(ctx), key)
	return nowLiked
}

// IsLiked reports whether trackID is in the local set.
func (s *Sync) IsLiked(trackID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(trackID) >= 0
}

// Liked returns a copy of the local set, most recent first.
func (s *Sync) Liked() []store.Like {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.liked)
}

// Pending returns the number of tracks with a remote write in flight.
func (s *Sync) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Wait blocks until every scheduled remote write has finished or been dropped.
func (s *Sync) Wait() {
	s.wg.Wait()
}

func (s *Sync) indexLocked(trackID string) int {
	return slices.IndexFunc(s.liked, func(l store.Like) bool { return l.TrackID == trackID })
}

// writer applies the desired state of one track until no newer toggle is
// waiting.
func (s *Sync) writer(ctx context.Context, key string) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		w := s.pending[key]
		snapshot := *w
		s.mu.Unlock()

		if err := s.apply(ctx, snapshot); err != nil {
			s.logger.Error("remote like write dropped",
				"user", snapshot.like.UserID, "track", snapshot.like.TrackID, "liked", snapshot.liked, "attempts", s.attempts, "err", err)
		}

		s.mu.Lock()
		if w.version == snapshot.version {
			delete(s.pending, key)
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
	}
}

func (s *Sync) apply(ctx context.Context, w write) error {
	delay := s.backoff
	var err error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if w.liked {
			err = s.store.Upsert(ctx, w.like)
		} else {
			err = s.store.Delete(ctx, w.like.UserID, w.like.TrackID)
		}
		if err == nil {
			return nil
		}
		if attempt == s.attempts {
			break
		}
		s.logger.Warn("remote like write failed, retrying",
			"track", w.like.TrackID, "attempt", attempt, "err", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	op := OpUpsert
	if !w.liked {
		op = OpDelete
	}
	return &SyncError{Op: op, UserID: w.like.UserID, Err: err}
}
