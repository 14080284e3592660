package library

import "fmt"

// Op names the sync operation that failed.
type Op string

const (
	OpLoad   Op = "load"
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// SyncError is a failed exchange with the remote store.
type SyncError struct {
	Op     Op
	UserID string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("library %s for %s: %v", e.Op, e.UserID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
