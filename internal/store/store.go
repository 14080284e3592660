// Package store defines the remote liked-tracks store and its in-process
// implementation. Backends live in the subpackages.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/llehouerou/aurora/internal/playlist"
)

// ErrInvalidLike is returned for a like without a user or track ID.
var ErrInvalidLike = errors.New("like needs a user id and a track id")

// Like is one liked track of one user. (UserID, TrackID) is unique.
type Like struct {
	UserID        string        `json:"user_id"`
	TrackID       string        `json:"track_id"`
	Title         string        `json:"title"`
	Artist        string        `json:"artist"`
	CoverURL      string        `json:"cover_url"`
	SourceLocator string        `json:"source_locator"`
	Duration      time.Duration `json:"duration"`
	LikedAt       time.Time     `json:"liked_at"`
}

// FromTrack builds the like record for t.
func FromTrack(userID string, t playlist.Track, likedAt time.Time) Like {
	return Like{
		UserID:        userID,
		TrackID:       t.ID,
		Title:         t.Title,
		Artist:        t.Artist,
		CoverURL:      t.CoverURL,
		SourceLocator: t.SourceLocator,
		Duration:      t.Duration,
		LikedAt:       likedAt,
	}
}

// Track returns the playable track described by the like.
// The stream URL is left empty; it is resolved on play.
func (l Like) Track() playlist.Track {
	return playlist.Track{
		ID:            l.TrackID,
		Title:         l.Title,
		Artist:        l.Artist,
		CoverURL:      l.CoverURL,
		SourceLocator: l.SourceLocator,
		Duration:      l.Duration,
	}
}

// Validate checks the key fields.
func (l Like) Validate() error {
	if l.UserID == "" || l.TrackID == "" {
		return ErrInvalidLike
	}
	return nil
}

// Store persists likes. Upsert and Delete are idempotent.
type Store interface {
	Upsert(ctx context.Context, like Like) error
	Delete(ctx context.Context, userID, trackID string) error
	// ListByUser returns the user's likes, most recent first.
	ListByUser(ctx context.Context, userID string) ([]Like, error)
}

// User is the profile row announced at startup.
type User struct {
	ID        string
	Username  string
	AvatarURL string
	LastSeen  time.Time
}

// UserRegistrar is implemented by stores that keep a user directory.
type UserRegistrar interface {
	RegisterUser(ctx context.Context, u User) error
}

// SortByLikedAt orders likes most recent first. Ties keep track ID order so
// listings are stable.
func SortByLikedAt(likes []Like) {
	sort.SliceStable(likes, func(i, j int) bool {
		if likes[i].LikedAt.Equal(likes[j].LikedAt) {
			return likes[i].TrackID < likes[j].TrackID
		}
		return likes[i].LikedAt.After(likes[j].LikedAt)
	})
}
