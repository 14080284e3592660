// Package sqlitestore keeps likes in a local SQLite database for
// single-device use.
package sqlitestore

import (
	"context"
	"database/sql"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/llehouerou/aurora/internal/db"
	"github.com/llehouerou/aurora/internal/store"
)

var (
	_ store.Store         = (*Store)(nil)
	_ store.UserRegistrar = (*Store)(nil)
)

// Store is a store.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the database path under the XDG data directory.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join("aurora", "library.db"))
}

// Open opens the database at path, or DefaultPath when path is empty.
func Open(path string) (*Store, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	conn, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &Store{db: conn}, nil
}

func initSchema(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			avatar_url TEXT,
			last_seen INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS liked_songs (
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			track_id TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			cover_url TEXT,
			source_locator TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			liked_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, track_id)
		);

		CREATE INDEX IF NOT EXISTS idx_liked_songs_user_time ON liked_songs(user_id, liked_at DESC);
	`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts or replaces the like, creating the user row if needed.
func (s *Store) Upsert(ctx context.Context, like store.Like) error {
	if err := like.Validate(); err != nil {
		return err
	}
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO users (id) VALUES (?)`, like.UserID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO liked_songs
			(user_id, track_id, title, artist, cover_url, source_locator, duration_ms, liked_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id, track_id) DO UPDATE SET
				title = excluded.title,
				artist = excluded.artist,
				cover_url = excluded.cover_url,
				source_locator = excluded.source_locator,
				duration_ms = excluded.duration_ms,
				liked_at = excluded.liked_at
		`, like.UserID, like.TrackID, like.Title, like.Artist, like.CoverURL,
			like.SourceLocator, like.Duration.Milliseconds(), like.LikedAt.UnixNano())
		return err
	})
}

func (s *Store) Delete(ctx context.Context, userID, trackID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM liked_songs WHERE user_id = ? AND track_id = ?`, userID, trackID)
	return err
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]store.Like, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT track_id, title, artist, cover_url, source_locator, duration_ms, liked_at
		FROM liked_songs
		WHERE user_id = ?
		ORDER BY liked_at DESC, track_id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var likes []store.Like
	for rows.Next() {
		var l store.Like
		var cover, locator sql.NullString
		var durationMs, likedAt int64
		if err := rows.Scan(&l.TrackID, &l.Title, &l.Artist, &cover, &locator, &durationMs, &likedAt); err != nil {
			return nil, err
		}
		l.UserID = userID
		l.CoverURL = db.NullStringValue(cover)
		l.SourceLocator = db.NullStringValue(locator)
		l.Duration = time.Duration(durationMs) * time.Millisecond
		l.LikedAt = time.Unix(0, likedAt)
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

func (s *Store) RegisterUser(ctx context.Context, u store.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, avatar_url, last_seen)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			avatar_url = excluded.avatar_url,
			last_seen = excluded.last_seen
	`, u.ID, u.Username, u.AvatarURL, u.LastSeen.Unix())
	return err
}
