package store

import (
	"context"
	"sync"
)

var (
	_ Store         = (*Memory)(nil)
	_ UserRegistrar = (*Memory)(nil)
)

// Memory is an in-process Store. It backs offline use and tests.
type Memory struct {
	mu    sync.RWMutex
	likes map[string]map[string]Like
	users map[string]User
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		likes: make(map[string]map[string]Like),
		users: make(map[string]User),
	}
}

func (m *Memory) Upsert(_ context.Context, like Like) error {
	if err := like.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	byTrack, ok := m.likes[like.UserID]
	if !ok {
		byTrack = make(map[string]Like)
		m.likes[like.UserID] = byTrack
	}
	byTrack[like.TrackID] = like
	return nil
}

func (m *Memory) Delete(_ context.Context, userID, trackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.likes[userID], trackID)
	return nil
}

func (m *Memory) ListByUser(_ context.Context, userID string) ([]Like, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Like, 0, len(m.likes[userID]))
	for _, l := range m.likes[userID] {
		out = append(out, l)
	}
	SortByLikedAt(out)
	return out, nil
}

func (m *Memory) RegisterUser(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

// Has reports whether userID likes trackID.
func (m *Memory) Has(userID, trackID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.likes[userID][trackID]
	return ok
}

// User returns the registered profile for id.
func (m *Memory) User(id string) (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok
}
