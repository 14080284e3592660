package lastfm

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/aurora/internal/playback"
	"github.com/llehouerou/aurora/internal/state"
)

const (
	minTrackLength   = 30 * time.Second
	maxScrobbleDelay = 4 * time.Minute
	// Position jumps larger than this are seeks and do not count as listening.
	maxPositionStep = 5 * time.Second

	retryInterval    = 5 * time.Minute
	maxRetryAttempts = 10
	pendingMaxAge    = 14 * 24 * time.Hour
)

// API is the part of Client the scrobbler calls.
type API interface {
	UpdateNowPlaying(track ScrobbleTrack) error
	Scrobble(track ScrobbleTrack) error
}

// PendingQueue stores scrobbles that could not be submitted.
// *state.Manager implements it.
type PendingQueue interface {
	AddPendingScrobble(s state.PendingScrobble) error
	GetPendingScrobbles() ([]state.PendingScrobble, error)
	DeletePendingScrobble(id int64) error
	UpdatePendingScrobbleAttempt(id int64, errMsg string) error
	DeleteOldPendingScrobbles(maxAge time.Duration) error
}

// Scrobbler follows a playback session and reports plays to Last.fm.
type Scrobbler struct {
	api    API
	queue  PendingQueue
	logger *log.Logger
	now    func() time.Time

	cur *play
}

// play is the listening progress of the current track.
type play struct {
	trackID        string
	track          ScrobbleTrack
	listened       time.Duration
	lastPos        time.Duration
	nowPlayingSent bool
	scrobbled      bool
}

// NewScrobbler creates a scrobbler. queue may be nil, in which case failed
// scrobbles are dropped.
func NewScrobbler(api API, queue PendingQueue, logger *log.Logger) *Scrobbler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scrobbler{api: api, queue: queue, logger: logger, now: time.Now}
}

// Run consumes sub until ctx is done or the session closes. Pending scrobbles
// are retried at start and then periodically.
func (s *Scrobbler) Run(ctx context.Context, sub *playback.Subscription) error {
	s.RetryPending()
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.Done:
			return nil
		case e := <-sub.TrackChanged:
			s.trackChanged(e)
		case e := <-sub.StateChanged:
			s.stateChanged(e.Current)
		case e := <-sub.PositionChanged:
			s.positionChanged(e)
		case <-sub.Error:
		case <-ticker.C:
			s.RetryPending()
		}
	}
}

func (s *Scrobbler) trackChanged(e playback.TrackChange) {
	if e.Current == nil {
		s.cur = nil
		return
	}
	s.cur = &play{
		trackID: e.Current.ID,
		track:   FromTrack(*e.Current, s.now()),
	}
}

func (s *Scrobbler) stateChanged(st playback.State) {
	p := s.cur
	if p == nil || st.TrackID != p.trackID {
		return
	}
	if st.Duration > 0 {
		p.track.Duration = st.Duration
	}
	if st.Status != playback.StatusPlaying || p.nowPlayingSent || !p.track.Scrobblable() {
		return
	}
	p.nowPlayingSent = true
	if err := s.api.UpdateNowPlaying(p.track); err != nil {
		s.logger.Warn("lastfm now playing", "track", p.track.Track, "err", err)
	}
}

func (s *Scrobbler) positionChanged(e playback.PositionChange) {
	p := s.cur
	if p == nil {
		return
	}
	if e.Duration > 0 {
		p.track.Duration = e.Duration
	}
	step := e.Position - p.lastPos
	p.lastPos = e.Position
	if step > 0 && step <= maxPositionStep {
		p.listened += step
	}

	if p.scrobbled || !p.track.Scrobblable() || p.listened < scrobbleThreshold(p.track.Duration) {
		return
	}
	p.scrobbled = true
	s.submit(p.track)
}

// scrobbleThreshold is half the track or four minutes, whichever is first.
func scrobbleThreshold(d time.Duration) time.Duration {
	if d <= 0 {
		return maxScrobbleDelay
	}
	return min(d/2, maxScrobbleDelay)
}

func (s *Scrobbler) submit(t ScrobbleTrack) {
	err := s.api.Scrobble(t)
	if err == nil {
		return
	}
	s.logger.Warn("lastfm scrobble failed, queued", "track", t.Track, "err", err)
	if s.queue == nil {
		return
	}
	if qerr := s.queue.AddPendingScrobble(state.PendingScrobble{
		Artist:       t.Artist,
		Track:        t.Track,
		DurationSecs: int(t.Duration.Seconds()),
		Timestamp:    t.Timestamp,
		LastError:    err.Error(),
	}); qerr != nil {
		s.logger.Error("queue scrobble", "err", qerr)
	}
}

// RetryPending resubmits queued scrobbles. It returns how many succeeded.
func (s *Scrobbler) RetryPending() int {
	if s.queue == nil {
		return 0
	}
	if err := s.queue.DeleteOldPendingScrobbles(pendingMaxAge); err != nil {
		s.logger.Warn("prune pending scrobbles", "err", err)
	}
	pending, err := s.queue.GetPendingScrobbles()
	if err != nil {
		s.logger.Warn("load pending scrobbles", "err", err)
		return 0
	}

	var succeeded int
	for i := range pending {
		p := &pending[i]
		if p.Attempts >= maxRetryAttempts {
			continue
		}
		err := s.api.Scrobble(ScrobbleTrack{
			Artist:    p.Artist,
			Track:     p.Track,
			Duration:  time.Duration(p.DurationSecs) * time.Second,
			Timestamp: p.Timestamp,
		})
		if err != nil {
			_ = s.queue.UpdatePendingScrobbleAttempt(p.ID, err.Error())
			continue
		}
		succeeded++
		_ = s.queue.DeletePendingScrobble(p.ID)
	}
	return succeeded
}
