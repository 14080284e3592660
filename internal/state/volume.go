package state

import (
	"database/sql"
	"errors"
)

// GetVolume returns the saved volume and whether one was saved.
func (m *Manager) GetVolume() (float64, bool, error) {
	var volume float64

	row := m.db.QueryRow(`SELECT volume FROM player_state WHERE id = 1`)
	err := row.Scan(&volume)
	if errors.Is(err, sql.ErrNoRows) {
		return 1.0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return volume, true, nil
}

// SaveVolume persists the volume level to the database.
func (m *Manager) SaveVolume(volume float64) error {
	_, err := m.db.Exec(`
		INSERT INTO player_state (id, volume)
		VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume
	`, volume)
	return err
}
