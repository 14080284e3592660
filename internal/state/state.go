// Package state persists per-installation data in a local SQLite database.
package state

import (
	"database/sql"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/llehouerou/aurora/internal/db"
)

const (
	appName    = "aurora"
	dbFileName = "state.db"
)

type Manager struct {
	db *sql.DB
}

// Open opens the state database under the XDG data directory.
func Open() (*Manager, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the state database at path.
func OpenPath(path string) (*Manager, error) {
	conn, err := db.Open(path)
	if err != nil {
		return nil, err
	}

	if err := initSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &Manager{db: conn}, nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
