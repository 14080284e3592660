//go:build linux

package mpris

import (
	"strings"
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/aurora/internal/mediabridge"
)

func TestPlayerAdapter_PlayPauseFollowsPublishedStatus(t *testing.T) {
	var plays, pauses int
	p := &playerAdapter{}
	p.setHandlers(mediabridge.Handlers{
		Play:  func() { plays++ },
		Pause: func() { pauses++ },
	})

	require.NoError(t, p.PlayPause())
	assert.Equal(t, 1, plays)

	p.setNowPlaying(mediabridge.NowPlaying{TrackID: "a", Playing: true})
	require.NoError(t, p.PlayPause())
	assert.Equal(t, 1, pauses)
}

func TestPlayerAdapter_MissingHandlersAreIgnored(t *testing.T) {
	p := &playerAdapter{}
	assert.NoError(t, p.Next())
	assert.NoError(t, p.Previous())
	assert.NoError(t, p.Play())
}

func TestPlayerAdapter_PlaybackStatus(t *testing.T) {
	p := &playerAdapter{}

	status, _ := p.PlaybackStatus()
	assert.Equal(t, types.PlaybackStatusStopped, status)

	p.setNowPlaying(mediabridge.NowPlaying{TrackID: "a"})
	status, _ = p.PlaybackStatus()
	assert.Equal(t, types.PlaybackStatusPaused, status)

	p.setNowPlaying(mediabridge.NowPlaying{TrackID: "a", Playing: true})
	status, _ = p.PlaybackStatus()
	assert.Equal(t, types.PlaybackStatusPlaying, status)
}

func TestPlayerAdapter_Metadata(t *testing.T) {
	p := &playerAdapter{}
	p.setNowPlaying(mediabridge.NowPlaying{
		TrackID:    "abc",
		Title:      "Starboy",
		Artist:     "The Weeknd",
		ArtworkURL: "https://img/a.jpg",
		Duration:   3 * time.Minute,
	})

	meta, err := p.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "Starboy", meta.Title)
	assert.Equal(t, []string{"The Weeknd"}, meta.Artist)
	assert.Equal(t, "https://img/a.jpg", meta.ArtUrl)
	assert.Equal(t, types.Microseconds(180_000_000), meta.Length)
	assert.True(t, strings.HasPrefix(string(meta.TrackId), "/org/mpris/MediaPlayer2/Track/"))
}

func TestFormatTrackID_Stable(t *testing.T) {
	assert.Equal(t, formatTrackID("abc"), formatTrackID("abc"))
	assert.NotEqual(t, formatTrackID("abc"), formatTrackID("abd"))
}
