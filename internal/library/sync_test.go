package library

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

	"github.com/llehouerou/aurora/internal/playlist"
	"github.com/llehouerou/aurora/internal/store"
)

var errRemote = errors.New("remote down")

// fakeStore wraps a Memory store with failure injection and an optional gate
// that holds writes until the test releases them.
type fakeStore struct {
	*store.Memory

	mu         sync.Mutex
	failWrites bool
	failList   bool
	gate       chan struct{}
	calls      []string

	// listed is closed once ListByUser has read the remote; the answer is
	// then held until listGate is closed.
	listed   chan struct{}
	listGate chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{Memory: store.NewMemory()}
}

func (f *fakeStore) before(call string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	gate := f.gate
	fail := f.failWrites
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail {
		return errRemote
	}
	return nil
}

func (f *fakeStore) Upsert(ctx context.Context, like store.Like) error {
	if err := f.before("upsert:" + like.TrackID); err != nil {
		return err
	}
	return f.Memory.Upsert(ctx, like)
}

func (f *fakeStore) Delete(ctx context.Context, userID, trackID string) error {
	if err := f.before("delete:" + trackID); err != nil {
		return err
	}
	return f.Memory.Delete(ctx, userID, trackID)
}

func (f *fakeStore) ListByUser(ctx context.Context, userID string) ([]store.Like, error) {
	f.mu.Lock()
	fail := f.failList
	listed, listGate := f.listed, f.listGate
	f.mu.Unlock()
	if fail {
		return nil, errRemote
	}
	likes, err := f.Memory.ListByUser(ctx, userID)
	if listed != nil {
		close(listed)
		<-listGate
	}
	return likes, err
}

// holdList makes the next ListByUser answer wait for the returned release.
func (f *fakeStore) holdList() (listed <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = make(chan struct{})
	f.listGate = make(chan struct{})
	gate := f.listGate
	return f.listed, func() { close(gate) }
}

func (f *fakeStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestSync(st store.Store, opts ...Option) *Sync {
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	return New(st, opts...)
}

func track(id string) playlist.Track {
	return playlist.Track{ID: id, Title: "Title " + id, Artist: "Artist", SourceLocator: "https://watch?v=" + id}
}

func likedIDs(likes []store.Like) []string {
	ids := make([]string, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.TrackID)
	}
	return ids
}

func TestToggleLike_InsertsAtFrontAndUpserts(t *testing.T) {
	st := newFakeStore()
	s := newTestSync(st)
	ctx := context.Background()

	assert.True(t, s.ToggleLike(ctx, track("a"), "u1"))
	assert.True(t, s.ToggleLike(ctx, track("b"), "u1"))

	assert.Equal(t, []string{"b", "a"}, likedIDs(s.Liked()))
	assert.True(t, s.IsLiked("a"))

	s.Wait()
	assert.True(t, st.Has("u1", "a"))
	assert.True(t, st.Has("u1", "b"))
	assert.Zero(t, s.Pending())
}

func TestToggleLike_KeepsLocalStateWhenRemoteFails(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		st := newFakeStore()
		st.failWrites = true
		s := newTestSync(st, WithWriteAttempts(3), WithBackoff(time.Second))

		liked := s.ToggleLike(context.Background(), track("a"), "u1")

		assert.True(t, liked)
		require.Len(t, s.Liked(), 1)
		assert.Equal(t, "a", s.Liked()[0].TrackID)

		s.Wait()
		assert.Equal(t, []string{"upsert:a", "upsert:a", "upsert:a"}, st.Calls())
		assert.True(t, s.IsLiked("a"))
		assert.False(t, st.Has("u1", "a"))
	})
}

func TestToggleLike_RetryBacksOffExponentially(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		st := newFakeStore()
		st.failWrites = true
		s := newTestSync(st, WithWriteAttempts(3), WithBackoff(time.Second))

		start := time.Now()
		s.ToggleLike(context.Background(), track("a"), "u1")
		s.Wait()

		assert.Equal(t, 3*time.Second, time.Since(start))
	})
}

func TestToggleLike_TwiceConvergesToUnliked(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		st := newFakeStore()
		st.gate = make(chan struct{})
		s := newTestSync(st)
		ctx := context.Background()

		s.ToggleLike(ctx, track("a"), "u1")
		synctest.Wait()
		s.ToggleLike(ctx, track("a"), "u1")

		assert.False(t, s.IsLiked("a"))
		assert.Empty(t, s.Liked())

		close(st.gate)
		s.Wait()

		assert.Equal(t, []string{"upsert:a", "delete:a"}, st.Calls())
		assert.False(t, st.Has("u1", "a"))
		assert.Zero(t, s.Pending())
	})
}

func TestToggleLike_RapidTogglesCollapse(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		st := newFakeStore()
		st.gate = make(chan struct{})
		s := newTestSync(st)
		ctx := context.Background()

		s.ToggleLike(ctx, track("a"), "u1")
		synctest.Wait()
		s.ToggleLike(ctx, track("a"), "u1")
		s.ToggleLike(ctx, track("a"), "u1")

		close(st.gate)
		s.Wait()

		assert.Equal(t, []string{"upsert:a", "upsert:a"}, st.Calls())
		assert.True(t, s.IsLiked("a"))
		assert.True(t, st.Has("u1", "a"))
	})
}

func TestToggleLike_RemovesLikedTrack(t *testing.T) {
	st := newFakeStore()
	ctx := context.Background()
	require.NoError(t, st.Memory.Upsert(ctx, store.FromTrack("u1", track("a"), time.Unix(100, 0))))
	s := newTestSync(st)

	_, err := s.Load(ctx, "u1")
	require.NoError(t, err)

	assert.False(t, s.ToggleLike(ctx, track("a"), "u1"))
	s.Wait()
	assert.False(t, st.Has("u1", "a"))
}

func TestLoad_SortsMostRecentFirst(t *testing.T) {
	st := newFakeStore()
	ctx := context.Background()
	require.NoError(t, st.Memory.Upsert(ctx, store.FromTrack("u1", track("old"), time.Unix(100, 0))))
	require.NoError(t, st.Memory.Upsert(ctx, store.FromTrack("u1", track("new"), time.Unix(200, 0))))
	require.NoError(t, st.Memory.Upsert(ctx, store.FromTrack("u2", track("other"), time.Unix(300, 0))))
	s := newTestSync(st)

	got, err := s.Load(ctx, "u1")

	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, likedIDs(got))
	assert.Equal(t, "Title new", got[0].Title)
}

func TestLoad_FailureKeepsCache(t *testing.T) {
	st := newFakeStore()
	ctx := context.Background()
	require.NoError(t, st.Memory.Upsert(ctx, store.FromTrack("u1", track("a"), time.Unix(100, 0))))
	s := newTestSync(st)
	_, err := s.Load(ctx, "u1")
	require.NoError(t, err)

	st.failList = true
	got, err := s.Load(ctx, "u1")

	var se *SyncError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, OpLoad, se.Op)
	require.ErrorIs(t, err, errRemote)
	assert.Equal(t, []string{"a"}, likedIDs(got))
	assert.True(t, s.IsLiked("a"))
}

func TestLoad_PendingWriteWins(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		st := newFakeStore()
		ctx := context.Background()
		require.NoError(t, st.Memory.Upsert(ctx, store.FromTrack("u1", track("gone"), time.Unix(100, 0))))
		s := newTestSync(st, WithClock(func() time.Time { return time.Unix(500, 0) }))
		_, err := s.Load(ctx, "u1")
		require.NoError(t, err)

		st.gate = make(chan struct{})
		s.ToggleLike(ctx, track("new"), "u1")
		s.ToggleLike(ctx, track("gone"), "u1")
		synctest.Wait()

		got, err := s.Load(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"new"}, likedIDs(got))

		close(st.gate)
		s.Wait()
		assert.True(t, st.Has("u1", "new"))
		assert.False(t, st.Has("u1", "gone"))
	})
}

func TestLoad_LikeMadeWhileListingSurvives(t *testing.T) {
	st := newFakeStore()
	s := newTestSync(st)
	ctx := context.Background()

	listed, release := st.holdList()
	done := make(chan []store.Like)
	go func() {
		got, _ := s.Load(ctx, "u1")
		done <- got
	}()
	<-listed

	s.ToggleLike(ctx, track("a"), "u1")
	s.Wait()
	release()
	got := <-done

	assert.True(t, st.Has("u1", "a"))
	assert.True(t, s.IsLiked("a"))
	assert.Equal(t, []string{"a"}, likedIDs(got))
}

func TestLoad_UnlikeMadeWhileListingSurvives(t *testing.T) {
	st := newFakeStore()
	ctx := context.Background()
	require.NoError(t, st.Memory.Upsert(ctx, store.FromTrack("u1", track("a"), time.Unix(100, 0))))
	s := newTestSync(st)
	_, err := s.Load(ctx, "u1")
	require.NoError(t, err)

	listed, release := st.holdList()
	done := make(chan []store.Like)
	go func() {
		got, _ := s.Load(ctx, "u1")
		done <- got
	}()
	<-listed

	s.ToggleLike(ctx, track("a"), "u1")
	s.Wait()
	release()
	got := <-done

	assert.False(t, st.Has("u1", "a"))
	assert.False(t, s.IsLiked("a"))
	assert.Empty(t, got)
}

func TestLoad_LaterLoadTakesRemoteAgain(t *testing.T) {
	st := newFakeStore()
	s := newTestSync(st)
	ctx := context.Background()

	s.ToggleLike(ctx, track("a"), "u1")
	s.Wait()
	require.NoError(t, st.Memory.Delete(ctx, "u1", "a"))

	got, err := s.Load(ctx, "u1")

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, s.IsLiked("a"))
}

func TestToggleLike_WritersAreKeyedByUser(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		st := newFakeStore()
		st.gate = make(chan struct{})
		s := newTestSync(st)
		ctx := context.Background()

		s.ToggleLike(ctx, track("a"), "u1")
		synctest.Wait()
		s.ToggleLike(ctx, track("a"), "u2")
		s.ToggleLike(ctx, track("b"), "u2")
		synctest.Wait()
		assert.Equal(t, 3, s.Pending())

		close(st.gate)
		s.Wait()
		assert.True(t, st.Has("u1", "a"))
		assert.True(t, st.Has("u2", "a"))
		assert.True(t, st.Has("u2", "b"))
	})
}

func TestLiked_ReturnsCopy(t *testing.T) {
	s := newTestSync(newFakeStore())
	s.ToggleLike(context.Background(), track("a"), "u1")

	got := s.Liked()
	got[0].TrackID = "mutated"

	assert.True(t, s.IsLiked("a"))
	s.Wait()
}

func TestWithWriteAttempts_FloorsAtOne(t *testing.T) {
	s := New(newFakeStore(), WithWriteAttempts(0))
	assert.Equal(t, 1, s.attempts)
}

func TestSyncError_Message(t *testing.T) {
	err := &SyncError{Op: OpDelete, UserID: "u1", Err: errRemote}
	assert.Equal(t, "library delete for u1: remote down", err.Error())
	assert.ErrorIs(t, err, errRemote)
}
