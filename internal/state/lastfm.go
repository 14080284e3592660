package state

import (
	"database/sql"
	"errors"
	"time"

	"github.com/llehouerou/aurora/internal/db"
)

// LastfmSession is the linked Last.fm account.
type LastfmSession struct {
	Username   string
	SessionKey string
	LinkedAt   time.Time
}

// PendingScrobble is a play that Last.fm has not accepted yet.
type PendingScrobble struct {
	ID           int64
	Artist       string
	Track        string
	DurationSecs int
	Timestamp    time.Time // when playback started
	Attempts     int
	LastError    string
	CreatedAt    time.Time
}

// GetLastfmSession returns the linked account, or nil when none is linked.
func (m *Manager) GetLastfmSession() (*LastfmSession, error) {
	var s LastfmSession
	var linkedAt int64
	err := m.db.QueryRow(`SELECT username, session_key, linked_at FROM lastfm_session WHERE id = 1`).
		Scan(&s.Username, &s.SessionKey, &linkedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // not linked
	}
	if err != nil {
		return nil, err
	}
	s.LinkedAt = time.Unix(linkedAt, 0)
	return &s, nil
}

// SaveLastfmSession links an account, replacing any previous one.
func (m *Manager) SaveLastfmSession(username, sessionKey string) error {
	_, err := m.db.Exec(`
		INSERT INTO lastfm_session (id, username, session_key, linked_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			session_key = excluded.session_key,
			linked_at = excluded.linked_at
	`, username, sessionKey, time.Now().Unix())
	return err
}

// DeleteLastfmSession unlinks the account.
func (m *Manager) DeleteLastfmSession() error {
	_, err := m.db.Exec(`DELETE FROM lastfm_session WHERE id = 1`)
	return err
}

// AddPendingScrobble queues a play for retry.
func (m *Manager) AddPendingScrobble(s PendingScrobble) error {
	_, err := m.db.Exec(`
		INSERT INTO lastfm_pending_scrobbles
			(artist, track, duration_seconds, timestamp, attempts, last_error, created_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`, s.Artist, s.Track, s.DurationSecs, s.Timestamp.Unix(), s.LastError, time.Now().Unix())
	return err
}

// GetPendingScrobbles returns queued plays, oldest first.
func (m *Manager) GetPendingScrobbles() ([]PendingScrobble, error) {
	rows, err := m.db.Query(`
		SELECT id, artist, track, duration_seconds, timestamp, attempts, last_error, created_at
		FROM lastfm_pending_scrobbles
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingScrobble
	for rows.Next() {
		s, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanPending(rows *sql.Rows) (PendingScrobble, error) {
	var s PendingScrobble
	var lastError sql.NullString
	var startedAt, createdAt int64
	err := rows.Scan(&s.ID, &s.Artist, &s.Track, &s.DurationSecs, &startedAt, &s.Attempts, &lastError, &createdAt)
	s.LastError = db.NullStringValue(lastError)
	s.Timestamp = time.Unix(startedAt, 0)
	s.CreatedAt = time.Unix(createdAt, 0)
	return s, err
}

// DeletePendingScrobble drops a queued play once it is accepted.
func (m *Manager) DeletePendingScrobble(id int64) error {
	_, err := m.db.Exec(`DELETE FROM lastfm_pending_scrobbles WHERE id = ?`, id)
	return err
}

// UpdatePendingScrobbleAttempt records a failed retry.
func (m *Manager) UpdatePendingScrobbleAttempt(id int64, errMsg string) error {
	_, err := m.db.Exec(`
		UPDATE lastfm_pending_scrobbles SET attempts = attempts + 1, last_error = ? WHERE id = ?
	`, errMsg, id)
	return err
}

// DeleteOldPendingScrobbles drops plays queued longer than maxAge ago.
// Last.fm rejects scrobbles older than two weeks anyway.
func (m *Manager) DeleteOldPendingScrobbles(maxAge time.Duration) error {
	_, err := m.db.Exec(`DELETE FROM lastfm_pending_scrobbles WHERE created_at < ?`,
		time.Now().Add(-maxAge).Unix())
	return err
}
