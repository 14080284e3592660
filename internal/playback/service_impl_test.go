// internal/playback/service_impl_test.go
package playback

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/aurora/internal/player"
	"github.com/llehouerou/aurora/internal/playlist"
)

type resolveResult struct {
	url string
	err error
}

// fakeResolver blocks each Resolve call until the test answers it.
type fakeResolver struct {
	mu      sync.Mutex
	pending map[string]chan resolveResult
	calls   []string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{pending: make(map[string]chan resolveResult)}
}

func (r *fakeResolver) ch(locator string) chan resolveResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.pending[locator]
	if !ok {
		c = make(chan resolveResult, 1)
		r.pending[locator] = c
	}
	return c
}

func (r *fakeResolver) Resolve(ctx context.Context, locator string) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, locator)
	r.mu.Unlock()

	select {
	case res := <-r.ch(locator):
		return res.url, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *fakeResolver) succeed(locator, url string) {
	r.ch(locator) <- resolveResult{url: url}
}

func (r *fakeResolver) fail(locator string, err error) {
	r.ch(locator) <- resolveResult{err: err}
}

func (r *fakeResolver) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func newTestService() (Service, *player.Mock, *fakeResolver) {
	eng := player.NewMock()
	r := newFakeResolver()
	svc := New(eng, playlist.NewQueue(), r, WithLogger(log.New(io.Discard)))
	return svc, eng, r
}

func track(id string) playlist.Track {
	return playlist.Track{
		ID:            id,
		Title:         "Title " + id,
		Artist:        "Artist",
		SourceLocator: "https://watch/" + id,
		Duration:      200 * time.Second,
	}
}

func streamed(id string) playlist.Track {
	t := track(id)
	t.StreamURL = "https://stream/" + id
	return t
}

func drainStatuses(sub *Subscription) []string {
	var got []string
	for {
		select {
		case e := <-sub.StateChanged:
			got = append(got, e.Current.Status.String()+"("+e.Current.TrackID+")")
		default:
			return got
		}
	}
}

func TestNew_StartsIdle(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()

	st := svc.State()
	assert.Equal(t, StatusIdle, st.Status)
	assert.InDelta(t, 1.0, st.Volume, 1e-9)
	assert.Nil(t, svc.CurrentTrack())
	assert.Equal(t, -1, svc.QueueCurrentIndex())
	assert.Equal(t, 1, eng.ListenerCount())
}

func TestService_SelectTrack_ResolvesThenLoadsAndPlays(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, eng, r := newTestService()
		defer svc.Close()

		svc.SelectTrack(track("a"))

		st := svc.State()
		assert.Equal(t, StatusLoading, st.Status)
		assert.Equal(t, "a", st.TrackID)
		assert.Equal(t, time.Duration(0), st.CurrentTime)

		synctest.Wait()
		assert.Equal(t, []string{"https://watch/a"}, r.Calls())
		assert.Empty(t, eng.LoadCalls())

		r.succeed("https://watch/a", "https://stream/a")
		synctest.Wait()

		loads := eng.LoadCalls()
		require.Len(t, loads, 1)
		assert.Equal(t, "https://stream/a", loads[0].StreamURL)
		assert.Equal(t, 1, eng.PlayCalls())
		assert.Equal(t, "https://stream/a", svc.QueueTracks()[0].StreamURL)
	})
}

func TestService_SelectTrack_KnownStreamSkipsResolution(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, eng, r := newTestService()
		defer svc.Close()

		svc.SelectTrack(streamed("a"))
		synctest.Wait()

		assert.Empty(t, r.Calls())
		require.Len(t, eng.LoadCalls(), 1)
		assert.Equal(t, 1, eng.PlayCalls())
	})
}

func TestService_StaleResolutionIsDiscarded(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, eng, r := newTestService()
		defer svc.Close()

		svc.SelectTrack(track("a"))
		svc.SelectTrack(track("b"))
		synctest.Wait()

		// A answers after B was selected.
		r.succeed("https://watch/a", "https://stream/a")
		synctest.Wait()
		assert.Empty(t, eng.LoadCalls())

		r.succeed("https://watch/b", "https://stream/b")
		synctest.Wait()

		loads := eng.LoadCalls()
		require.Len(t, loads, 1)
		assert.Equal(t, "https://stream/b", loads[0].StreamURL)
		assert.Equal(t, "b", svc.State().TrackID)
		assert.Equal(t, "b", svc.CurrentTrack().ID)
	})
}

func TestService_StaleResolutionAfterNewerOne(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, eng, r := newTestService()
		defer svc.Close()

		svc.SelectTrack(track("a"))
		svc.SelectTrack(track("b"))
		synctest.Wait()

		r.succeed("https://watch/b", "https://stream/b")
		synctest.Wait()
		r.succeed("https://watch/a", "https://stream/a")
		synctest.Wait()

		loads := eng.LoadCalls()
		require.Len(t, loads, 1)
		assert.Equal(t, "https://stream/b", loads[0].StreamURL)
		assert.Equal(t, "b", svc.State().TrackID)
	})
}

func TestService_StaleEngineEventsAreIgnored(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()

	svc.SelectTrack(streamed("a"))
	tokenA := eng.Token()
	svc.SelectTrack(streamed("b"))

	eng.Emit(player.Event{Type: player.EventPlaying, Token: tokenA})
	eng.Emit(player.Event{Type: player.EventEnded, Token: tokenA})
	assert.Equal(t, StatusLoading, svc.State().Status)
	assert.Equal(t, "b", svc.State().TrackID)
	assert.Equal(t, 0, svc.QueueCurrentIndex())

	eng.EmitCurrent(player.EventPlaying)
	assert.Equal(t, StatusPlaying, svc.State().Status)
}

func TestService_EndedAdvancesToNextTrack(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()
	sub := svc.Subscribe()

	svc.PlayAll([]playlist.Track{streamed("a"), streamed("b")}, 0)
	eng.EmitCurrent(player.EventPlaying)

	eng.EmitCurrent(player.EventEnded)
	assert.Equal(t, 1, svc.QueueCurrentIndex())
	loads := eng.LoadCalls()
	require.Len(t, loads, 2)
	assert.Equal(t, "https://stream/b", loads[1].StreamURL)
	assert.Equal(t, 2, eng.PlayCalls())

	eng.EmitCurrent(player.EventPlaying)

	assert.Equal(t,
		[]string{"Loading(a)", "Playing(a)", "Loading(b)", "Playing(b)"},
		drainStatuses(sub))
}

func TestService_EndedSingleTrackRestarts(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()
	sub := svc.Subscribe()

	svc.SelectTrack(streamed("a"))
	eng.EmitCurrent(player.EventPlaying)
	eng.EmitCurrent(player.EventEnded)

	assert.Equal(t, 0, svc.QueueCurrentIndex())
	assert.Equal(t, StatusLoading, svc.State().Status)
	assert.Len(t, eng.LoadCalls(), 2)

	// Two TrackChanged: the first start and the restart.
	<-sub.TrackChanged
	restart := <-sub.TrackChanged
	assert.Equal(t, "a", restart.Current.ID)
	require.NotNil(t, restart.Previous)
	assert.Equal(t, "a", restart.Previous.ID)
}

func TestService_ReadyCapturesDuration(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()

	a := streamed("a")
	a.Duration = 180 * time.Second
	svc.SelectTrack(a)
	eng.Emit(player.Event{Type: player.EventReady, Token: eng.Token(), Duration: 0})
	assert.Equal(t, 180*time.Second, svc.State().Duration)

	svc.SelectTrack(streamed("b"))
	eng.Emit(player.Event{Type: player.EventReady, Token: eng.Token(), Duration: 215 * time.Second})
	assert.Equal(t, 215*time.Second, svc.State().Duration)
	assert.Equal(t, StatusLoading, svc.State().Status)

	// Only honored while loading.
	eng.EmitCurrent(player.EventPlaying)
	eng.Emit(player.Event{Type: player.EventReady, Token: eng.Token(), Duration: 10 * time.Second})
	assert.Equal(t, 215*time.Second, svc.State().Duration)
}

func TestService_BufferingKeepsPositionAndQueue(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()

	svc.PlayAll([]playlist.Track{streamed("a"), streamed("b")}, 1)
	eng.EmitCurrent(player.EventPlaying)
	eng.Emit(player.Event{Type: player.EventTimeUpdate, Token: eng.Token(), Position: 30 * time.Second})
	eng.EmitCurrent(player.EventBuffering)

	st := svc.State()
	assert.Equal(t, StatusLoading, st.Status)
	assert.Equal(t, 30*time.Second, st.CurrentTime)
	assert.Equal(t, 1, svc.QueueCurrentIndex())

	eng.EmitCurrent(player.EventPlaying)
	assert.Equal(t, StatusPlaying, svc.State().Status)
}

func TestService_TimeUpdateIsClamped(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()
	sub := svc.Subscribe()

	svc.SelectTrack(streamed("a"))
	eng.EmitCurrent(player.EventPlaying)
	eng.Emit(player.Event{Type: player.EventTimeUpdate, Token: eng.Token(), Position: 250 * time.Second})

	assert.Equal(t, 200*time.Second, svc.State().CurrentTime)
	pos := <-sub.PositionChanged
	assert.Equal(t, 200*time.Second, pos.Position)
}

func TestService_Seek_ClampsToDuration(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()

	svc.SelectTrack(streamed("a"))
	eng.Emit(player.Event{Type: player.EventReady, Token: eng.Token(), Duration: 200 * time.Second})
	eng.EmitCurrent(player.EventPlaying)

	require.NoError(t, svc.Seek(-5*time.Second))
	assert.Equal(t, time.Duration(0), svc.State().CurrentTime)

	require.NoError(t, svc.Seek(500*time.Second))
	assert.Equal(t, 200*time.Second, svc.State().CurrentTime)

	assert.Equal(t, []time.Duration{0, 200 * time.Second}, eng.SeekCalls())
}

func TestService_Seek_IdleIsNoop(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()

	require.NoError(t, svc.Seek(10*time.Second))
	assert.Empty(t, eng.SeekCalls())
}

func TestService_SetVolume_Clamps(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()

	svc.SetVolume(1.5)
	assert.InDelta(t, 1.0, svc.State().Volume, 1e-9)
	assert.InDelta(t, 1.0, eng.Volume(), 1e-9)

	svc.SetVolume(-0.2)
	assert.InDelta(t, 0.0, svc.State().Volume, 1e-9)
	assert.InDelta(t, 0.0, eng.Volume(), 1e-9)

	svc.SetVolume(0.3)
	assert.InDelta(t, 0.3, svc.State().Volume, 1e-9)
}

func TestService_TogglePlay(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()

	// Idle: nothing to toggle.
	require.NoError(t, svc.TogglePlay())
	assert.Equal(t, 0, eng.PlayCalls())
	assert.Equal(t, 0, eng.PauseCalls())

	svc.SelectTrack(streamed("a"))
	eng.EmitCurrent(player.EventPlaying)

	require.NoError(t, svc.TogglePlay())
	assert.Equal(t, 1, eng.PauseCalls())
	eng.EmitCurrent(player.EventPaused)
	assert.Equal(t, StatusPaused, svc.State().Status)

	require.NoError(t, svc.TogglePlay())
	assert.Equal(t, 2, eng.PlayCalls())
}

func TestService_PauseWhileLoadingSettlesPaused(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()

	svc.SelectTrack(streamed("a"))
	require.Equal(t, StatusLoading, svc.State().Status)

	require.NoError(t, svc.Pause())
	assert.Equal(t, 1, eng.PauseCalls())

	// The engine reports the decoded stream, then the held pause.
	eng.Emit(player.Event{Type: player.EventReady, Token: eng.Token(), Duration: 200 * time.Second})
	eng.EmitCurrent(player.EventPaused)

	st := svc.State()
	assert.Equal(t, StatusPaused, st.Status)
	assert.Equal(t, 200*time.Second, st.Duration)

	require.NoError(t, svc.Play())
	assert.Equal(t, 2, eng.PlayCalls())
}

func TestService_TogglePlay_LoadingWithoutSourceIsNoop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, eng, _ := newTestService()
		defer svc.Close()

		svc.SelectTrack(track("a"))
		synctest.Wait()

		require.NoError(t, svc.TogglePlay())
		require.NoError(t, svc.Pause())
		assert.Equal(t, 0, eng.PlayCalls())
		assert.Equal(t, 0, eng.PauseCalls())
	})
}

func TestService_EngineErrorDoesNotAdvance(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()
	sub := svc.Subscribe()

	svc.PlayAll([]playlist.Track{streamed("a"), streamed("b")}, 0)
	cause := errors.New("decode failed")
	eng.Emit(player.Event{Type: player.EventError, Token: eng.Token(), Err: cause})

	st := svc.State()
	assert.Equal(t, StatusError, st.Status)
	require.ErrorIs(t, st.Err, ErrPlayback)
	require.ErrorIs(t, st.Err, cause)
	assert.Equal(t, 0, svc.QueueCurrentIndex())
	assert.Len(t, eng.LoadCalls(), 1)

	ev := <-sub.Error
	assert.Equal(t, "a", ev.TrackID)
	var terr *TrackError
	require.ErrorAs(t, ev.Err, &terr)
	assert.Equal(t, ErrPlayback, terr.Kind)
}

func TestService_ResolutionFailureSetsError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, eng, r := newTestService()
		defer svc.Close()

		svc.SelectTrack(track("a"))
		synctest.Wait()
		r.fail("https://watch/a", errors.New("proxy down"))
		synctest.Wait()

		st := svc.State()
		assert.Equal(t, StatusError, st.Status)
		require.ErrorIs(t, st.Err, ErrResolution)
		assert.Empty(t, eng.LoadCalls())
		assert.Len(t, r.Calls(), 1)
	})
}

func TestService_EmptyStreamURLIsResolutionFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, _, r := newTestService()
		defer svc.Close()

		svc.SelectTrack(track("a"))
		synctest.Wait()
		r.succeed("https://watch/a", "")
		synctest.Wait()

		require.ErrorIs(t, svc.State().Err, ErrResolution)
	})
}

func TestService_LoadFailureSetsError(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()
	eng.SetLoadError(errors.New("bad url"))

	svc.SelectTrack(streamed("a"))

	require.ErrorIs(t, svc.State().Err, ErrPlayback)
	assert.Equal(t, 0, eng.PlayCalls())
}

func TestService_PlayAll_EmptyGoesIdle(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()

	svc.SelectTrack(streamed("a"))
	svc.PlayAll(nil, 0)

	assert.Equal(t, StatusIdle, svc.State().Status)
	assert.Empty(t, svc.State().TrackID)
	assert.Nil(t, svc.CurrentTrack())
	assert.Equal(t, 1, eng.StopCalls())
}

func TestService_PlayAll_DedupesAndClampsStart(t *testing.T) {
	svc, _, _ := newTestService()
	defer svc.Close()

	svc.PlayAll([]playlist.Track{streamed("a"), streamed("b"), streamed("a")}, 10)

	// Index 2 collapses onto the first "a".
	assert.Len(t, svc.QueueTracks(), 2)
	assert.Equal(t, 0, svc.QueueCurrentIndex())
	assert.Equal(t, "a", svc.State().TrackID)
}

func TestService_SkipPrevWraps(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()

	svc.PlayAll([]playlist.Track{streamed("a"), streamed("b"), streamed("c")}, 0)
	svc.SkipPrev()

	assert.Equal(t, 2, svc.QueueCurrentIndex())
	assert.Equal(t, "c", svc.State().TrackID)
	loads := eng.LoadCalls()
	assert.Equal(t, "https://stream/c", loads[len(loads)-1].StreamURL)

	svc.SkipNext()
	assert.Equal(t, "a", svc.State().TrackID)
}

func TestService_SkipOnEmptyQueueIsNoop(t *testing.T) {
	svc, eng, _ := newTestService()
	defer svc.Close()

	svc.SkipNext()
	svc.SkipPrev()

	assert.Equal(t, StatusIdle, svc.State().Status)
	assert.Empty(t, eng.LoadCalls())
}

func TestService_ReplaceEngine_MovesListenerAndReloads(t *testing.T) {
	svc, old, _ := newTestService()
	defer svc.Close()

	svc.SetVolume(0.4)
	svc.SelectTrack(streamed("a"))
	oldToken := old.Token()

	next := player.NewMock()
	svc.ReplaceEngine(next)

	assert.Equal(t, 0, old.ListenerCount())
	assert.Equal(t, 1, next.ListenerCount())
	assert.Equal(t, 1, old.StopCalls())
	assert.InDelta(t, 0.4, next.Volume(), 1e-9)

	loads := next.LoadCalls()
	require.Len(t, loads, 1)
	assert.Equal(t, "https://stream/a", loads[0].StreamURL)

	// Late events from either engine with the old token are ignored.
	next.Emit(player.Event{Type: player.EventPlaying, Token: oldToken})
	assert.Equal(t, StatusLoading, svc.State().Status)
	next.EmitCurrent(player.EventPlaying)
	assert.Equal(t, StatusPlaying, svc.State().Status)

	svc.ReplaceEngine(player.NewMock())
	assert.Equal(t, 0, next.ListenerCount())
}

func TestService_Close_ReleasesEverything(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, eng, _ := newTestService()
		sub := svc.Subscribe()

		svc.SelectTrack(track("a"))
		synctest.Wait()

		require.NoError(t, svc.Close())
		require.NoError(t, svc.Close())
		synctest.Wait()

		<-sub.Done
		assert.Equal(t, 0, eng.ListenerCount())
		assert.Equal(t, 1, eng.StopCalls())
		assert.Empty(t, eng.LoadCalls())

		late := svc.Subscribe()
		<-late.Done
	})
}
