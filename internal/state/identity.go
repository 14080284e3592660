package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/llehouerou/aurora/internal/db"
)

// ErrEmptyIdentity is returned when the generator yields an empty ID.
var ErrEmptyIdentity = errors.New("empty identity")

// Identity returns the stored installation user ID. On first use it stores
// the ID returned by generate. The stored value is never changed afterwards.
func (m *Manager) Identity(ctx context.Context, generate func() string) (string, error) {
	var userID string
	err := db.WithTx(ctx, m.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT user_id FROM identity WHERE id = 1`).Scan(&userID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		userID = generate()
		if userID == "" {
			return ErrEmptyIdentity
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO identity (id, user_id, created_at) VALUES (1, ?, ?)
		`, userID, time.Now().Unix())
		return err
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}
