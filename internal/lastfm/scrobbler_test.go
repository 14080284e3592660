package lastfm

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/aurora/internal/playback"
	"github.com/llehouerou/aurora/internal/player"
	"github.com/llehouerou/aurora/internal/playlist"
	"github.com/llehouerou/aurora/internal/state"
)

type fakeAPI struct {
	mu          sync.Mutex
	nowPlaying  []ScrobbleTrack
	scrobbles   []ScrobbleTrack
	scrobbleErr error
}

func (f *fakeAPI) UpdateNowPlaying(t ScrobbleTrack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nowPlaying = append(f.nowPlaying, t)
	return nil
}

func (f *fakeAPI) Scrobble(t ScrobbleTrack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scrobbleErr != nil {
		return f.scrobbleErr
	}
	f.scrobbles = append(f.scrobbles, t)
	return nil
}

func (f *fakeAPI) counts() (nowPlaying, scrobbles int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.nowPlaying), len(f.scrobbles)
}

func song(id string, d time.Duration) *playlist.Track {
	return &playlist.Track{ID: id, Title: "Song " + id, Artist: "Band", StreamURL: "https://stream/" + id, Duration: d}
}

func newTestScrobbler(api API, queue PendingQueue) *Scrobbler {
	s := NewScrobbler(api, queue, log.New(io.Discard))
	s.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return s
}

func advance(s *Scrobbler, from, to time.Duration, total time.Duration) {
	for pos := from; pos <= to; pos += time.Second {
		s.positionChanged(playback.PositionChange{Position: pos, Duration: total})
	}
}

func TestScrobbleThreshold(t *testing.T) {
	assert.Equal(t, 100*time.Second, scrobbleThreshold(200*time.Second))
	assert.Equal(t, 4*time.Minute, scrobbleThreshold(20*time.Minute))
	assert.Equal(t, 4*time.Minute, scrobbleThreshold(0))
}

func TestScrobbler_NowPlayingOncePerTrack(t *testing.T) {
	api := &fakeAPI{}
	s := newTestScrobbler(api, nil)

	s.trackChanged(playback.TrackChange{Current: song("a", 200*time.Second)})
	s.stateChanged(playback.State{Status: playback.StatusLoading, TrackID: "a"})
	s.stateChanged(playback.State{Status: playback.StatusPlaying, TrackID: "a"})
	s.stateChanged(playback.State{Status: playback.StatusPaused, TrackID: "a"})
	s.stateChanged(playback.State{Status: playback.StatusPlaying, TrackID: "a"})

	require.Len(t, api.nowPlaying, 1)
	assert.Equal(t, "Song a", api.nowPlaying[0].Track)
	assert.Equal(t, "Band", api.nowPlaying[0].Artist)
}

func TestScrobbler_ScrobblesAtHalfway(t *testing.T) {
	api := &fakeAPI{}
	s := newTestScrobbler(api, nil)
	s.trackChanged(playback.TrackChange{Current: song("a", 200*time.Second)})

	advance(s, 0, 99*time.Second, 200*time.Second)
	assert.Empty(t, api.scrobbles)

	advance(s, 100*time.Second, 150*time.Second, 200*time.Second)
	require.Len(t, api.scrobbles, 1)
	assert.Equal(t, time.Unix(1_700_000_000, 0), api.scrobbles[0].Timestamp)
	assert.Equal(t, 200*time.Second, api.scrobbles[0].Duration)
}

func TestScrobbler_SeeksDoNotCount(t *testing.T) {
	api := &fakeAPI{}
	s := newTestScrobbler(api, nil)
	s.trackChanged(playback.TrackChange{Current: song("a", 200*time.Second)})

	advance(s, 0, 10*time.Second, 200*time.Second)
	s.positionChanged(playback.PositionChange{Position: 190 * time.Second, Duration: 200 * time.Second})
	advance(s, 191*time.Second, 200*time.Second, 200*time.Second)

	assert.Empty(t, api.scrobbles)
}

func TestScrobbler_SkipsShortTracks(t *testing.T) {
	api := &fakeAPI{}
	s := newTestScrobbler(api, nil)
	s.trackChanged(playback.TrackChange{Current: song("jingle", 20*time.Second)})

	s.stateChanged(playback.State{Status: playback.StatusPlaying, TrackID: "jingle"})
	advance(s, 0, 20*time.Second, 20*time.Second)

	assert.Empty(t, api.nowPlaying)
	assert.Empty(t, api.scrobbles)
}

func TestScrobbler_FailedScrobbleIsQueuedAndRetried(t *testing.T) {
	mgr, err := state.OpenPath(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer mgr.Close()

	api := &fakeAPI{scrobbleErr: errors.New("offline")}
	s := newTestScrobbler(api, mgr)
	s.trackChanged(playback.TrackChange{Current: song("a", 60*time.Second)})
	advance(s, 0, 30*time.Second, 60*time.Second)

	pending, err := mgr.GetPendingScrobbles()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Song a", pending[0].Track)
	assert.Equal(t, 60, pending[0].DurationSecs)

	api.mu.Lock()
	api.scrobbleErr = nil
	api.mu.Unlock()

	assert.Equal(t, 1, s.RetryPending())
	pending, err = mgr.GetPendingScrobbles()
	require.NoError(t, err)
	assert.Empty(t, pending)
	require.Len(t, api.scrobbles, 1)
}

func TestScrobbler_RunFollowsSession(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		eng := player.NewMock()
		svc := playback.New(eng, playlist.NewQueue(), nil, playback.WithLogger(log.New(io.Discard)))
		api := &fakeAPI{}
		s := newTestScrobbler(api, nil)

		done := make(chan error, 1)
		go func() { done <- s.Run(context.Background(), svc.Subscribe()) }()
		synctest.Wait()

		svc.SelectTrack(*song("a", 60*time.Second))
		synctest.Wait()
		eng.EmitCurrent(player.EventPlaying)
		synctest.Wait()

		for pos := time.Second; pos <= 30*time.Second; pos += time.Second {
			eng.Emit(player.Event{Type: player.EventTimeUpdate, Token: eng.Token(), Position: pos})
			synctest.Wait()
		}

		nowPlaying, scrobbles := api.counts()
		assert.Equal(t, 1, nowPlaying)
		assert.Equal(t, 1, scrobbles)

		require.NoError(t, svc.Close())
		require.NoError(t, <-done)
	})
}
