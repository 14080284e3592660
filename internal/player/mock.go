// internal/player/mock.go
package player

import (
	"sync"
	"time"
)

// LoadCall records one Load invocation on the Mock.
type LoadCall struct {
	Token     uint64
	StreamURL string
}

// Mock is a test double for an audio engine.
// It never emits events by itself; tests drive them with Emit.
type Mock struct {
	mu         sync.Mutex
	token      uint64
	source     string
	volume     float64
	loadErr    error
	playErr    error
	loadCalls  []LoadCall
	playCalls  int
	pauseCalls int
	stopCalls  int
	seekCalls  []time.Duration
	listeners  map[int]func(Event)
	nextID     int
}

// NewMock creates a new mock engine for testing.
func NewMock() *Mock {
	return &Mock{
		volume:    1,
		listeners: make(map[int]func(Event)),
	}
}

func (m *Mock) Load(token uint64, streamURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls = append(m.loadCalls, LoadCall{Token: token, StreamURL: streamURL})
	if m.loadErr != nil {
		return m.loadErr
	}
	m.token = token
	m.source = streamURL
	return nil
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
	return m.playErr
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	return nil
}

func (m *Mock) Seek(position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, position)
	return nil
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = level
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	m.source = ""
}

func (m *Mock) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Test helpers

// Emit delivers e to every subscriber on the calling goroutine.
func (m *Mock) Emit(e Event) {
	m.mu.Lock()
	fns := make([]func(Event), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// EmitCurrent emits an event of the given type tagged with the last loaded token.
func (m *Mock) EmitCurrent(t EventType) {
	m.Emit(Event{Type: t, Token: m.Token()})
}

func (m *Mock) Token() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Mock) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) LoadCalls() []LoadCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LoadCall(nil), m.loadCalls...)
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

// ListenerCount returns the number of live subscriptions.
func (m *Mock) ListenerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
