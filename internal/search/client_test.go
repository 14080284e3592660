package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_MapsResults(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" {
			t.Errorf("expected path /api/search, got %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"a","title":"Starboy","artist":"The Weeknd","thumbnail":"https://img/a.jpg","url":"https://watch?v=a","duration":230.5},
			{"id":"","title":"no id","url":"https://watch?v=x"},
			{"id":"b","title":"Midnight City","artist":"M83","url":"https://watch?v=b"},
			{"id":"a","title":"dup","url":"https://watch?v=a2"}
		]`))
	}))
	defer server.Close()

	c := New(server.URL, WithRateLimit(0))
	tracks, err := c.Search(context.Background(), "  weeknd starboy ")

	require.NoError(t, err)
	assert.Equal(t, "weeknd starboy", gotQuery)
	require.Len(t, tracks, 2)

	assert.Equal(t, "a", tracks[0].ID)
	assert.Equal(t, "Starboy", tracks[0].Title)
	assert.Equal(t, "The Weeknd", tracks[0].Artist)
	assert.Equal(t, "https://img/a.jpg", tracks[0].CoverURL)
	assert.Equal(t, "https://watch?v=a", tracks[0].SourceLocator)
	assert.Equal(t, 230500*time.Millisecond, tracks[0].Duration)
	assert.Empty(t, tracks[0].StreamURL)

	assert.Equal(t, "b", tracks[1].ID)
	assert.Equal(t, time.Duration(0), tracks[1].Duration)
}

func TestSearch_EmptyQuery(t *testing.T) {
	_, err := New("http://unused").Search(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := New(server.URL, WithRateLimit(0)).Search(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
