// Package pgstore keeps likes in Postgres (including Supabase's database).
package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/llehouerou/aurora/internal/store"
)

var (
	_ store.Store         = (*Store)(nil)
	_ store.UserRegistrar = (*Store)(nil)
)

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		last_seen TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS liked_songs (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		track_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		artist TEXT NOT NULL DEFAULT '',
		cover_url TEXT NOT NULL DEFAULT '',
		source_locator TEXT NOT NULL DEFAULT '',
		duration_ms BIGINT NOT NULL DEFAULT 0,
		liked_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, track_id)
	);

	CREATE INDEX IF NOT EXISTS liked_songs_user_time ON liked_songs (user_id, liked_at DESC);
`

// Store is a store.Store backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Upsert(ctx context.Context, like store.Like) error {
	if err := like.Validate(); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, like.UserID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO liked_songs
				(user_id, track_id, title, artist, cover_url, source_locator, duration_ms, liked_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (user_id, track_id) DO UPDATE SET
				title = EXCLUDED.title,
				artist = EXCLUDED.artist,
				cover_url = EXCLUDED.cover_url,
				source_locator = EXCLUDED.source_locator,
				duration_ms = EXCLUDED.duration_ms,
				liked_at = EXCLUDED.liked_at
		`, like.UserID, like.TrackID, like.Title, like.Artist, like.CoverURL,
			like.SourceLocator, like.Duration.Milliseconds(), like.LikedAt)
		return err
	})
}

func (s *Store) Delete(ctx context.Context, userID, trackID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM liked_songs WHERE user_id = $1 AND track_id = $2`, userID, trackID)
	return err
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]store.Like, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT track_id, title, artist, cover_url, source_locator, duration_ms, liked_at
		FROM liked_songs
		WHERE user_id = $1
		ORDER BY liked_at DESC, track_id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var likes []store.Like
	for rows.Next() {
		l := store.Like{UserID: userID}
		var durationMs int64
		if err := rows.Scan(&l.TrackID, &l.Title, &l.Artist, &l.CoverURL,
			&l.SourceLocator, &durationMs, &l.LikedAt); err != nil {
			return nil, err
		}
		l.Duration = time.Duration(durationMs) * time.Millisecond
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

func (s *Store) RegisterUser(ctx context.Context, u store.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, avatar_url, last_seen)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			avatar_url = EXCLUDED.avatar_url,
			last_seen = EXCLUDED.last_seen
	`, u.ID, u.Username, u.AvatarURL, u.LastSeen)
	return err
}
