package pgstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/aurora/internal/store"
)

// openTestStore connects to AURORA_TEST_POSTGRES_DSN or skips.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("AURORA_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("AURORA_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(ctx))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_UpsertListDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	user := "test-" + uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, s.Upsert(ctx, store.Like{UserID: user, TrackID: "a", Title: "A", LikedAt: base}))
	require.NoError(t, s.Upsert(ctx, store.Like{UserID: user, TrackID: "b", Title: "B", LikedAt: base.Add(time.Second)}))
	require.NoError(t, s.Upsert(ctx, store.Like{UserID: user, TrackID: "a", Title: "A2", LikedAt: base}))

	got, err := s.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].TrackID)
	assert.Equal(t, "A2", got[1].Title)

	require.NoError(t, s.Delete(ctx, user, "a"))
	require.NoError(t, s.Delete(ctx, user, "a"))
	got, err = s.ListByUser(ctx, user)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	require.NoError(t, s.RegisterUser(ctx, store.User{ID: user, Username: "User-x", LastSeen: time.Now()}))
}

func TestStore_RejectsInvalidLike(t *testing.T) {
	s := &Store{}
	err := s.Upsert(context.Background(), store.Like{TrackID: "a"})
	require.ErrorIs(t, err, store.ErrInvalidLike)
}
