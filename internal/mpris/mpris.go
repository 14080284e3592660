//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/aurora/internal/mediabridge"
)

var _ mediabridge.Surface = (*Adapter)(nil)

// Adapter exposes the session on the MPRIS D-Bus interface.
type Adapter struct {
	server *server.Server
	events *events.EventHandler
	player *playerAdapter
}

// New creates and starts a new MPRIS adapter.
func New() (*Adapter, error) {
	player := &playerAdapter{}
	srv := server.NewServer("aurora", &rootAdapter{}, player)
	a := &Adapter{
		server: srv,
		events: events.NewEventHandler(srv),
		player: player,
	}

	go func() {
		_ = srv.Listen()
	}()

	return a, nil
}

// SetHandlers implements mediabridge.Surface.
func (a *Adapter) SetHandlers(h mediabridge.Handlers) error {
	a.player.setHandlers(h)
	return nil
}

// Publish implements mediabridge.Surface. It signals property changes so
// desktop widgets refresh without polling.
func (a *Adapter) Publish(np mediabridge.NowPlaying) error {
	prev := a.player.setNowPlaying(np)
	if prev.TrackID != np.TrackID || prev.Title != np.Title || prev.Duration != np.Duration {
		if err := a.events.Player.OnTitle(); err != nil {
			return fmt.Errorf("mpris metadata signal: %w", err)
		}
	}
	if prev.Playing != np.Playing || prev.TrackID != np.TrackID {
		if err := a.events.Player.OnPlayPause(); err != nil {
			return fmt.Errorf("mpris status signal: %w", err)
		}
	}
	return nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil
}

func (r *rootAdapter) Quit() error {
	return nil
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Aurora", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/ogg", "audio/flac", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter from the last
// published state. Transport calls go through the bridge handlers.
type playerAdapter struct {
	mu       sync.Mutex
	handlers mediabridge.Handlers
	np       mediabridge.NowPlaying
}

func (p *playerAdapter) setHandlers(h mediabridge.Handlers) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = h
}

func (p *playerAdapter) setNowPlaying(np mediabridge.NowPlaying) mediabridge.NowPlaying {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.np
	p.np = np
	return prev
}

func (p *playerAdapter) snapshot() (mediabridge.Handlers, mediabridge.NowPlaying) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handlers, p.np
}

func call(fn func()) error {
	if fn != nil {
		fn()
	}
	return nil
}

func (p *playerAdapter) Next() error {
	h, _ := p.snapshot()
	return call(h.Next)
}

func (p *playerAdapter) Previous() error {
	h, _ := p.snapshot()
	return call(h.Previous)
}

func (p *playerAdapter) Pause() error {
	h, _ := p.snapshot()
	return call(h.Pause)
}

func (p *playerAdapter) PlayPause() error {
	h, np := p.snapshot()
	if np.Playing {
		return call(h.Pause)
	}
	return call(h.Play)
}

func (p *playerAdapter) Stop() error {
	h, _ := p.snapshot()
	return call(h.Pause)
}

func (p *playerAdapter) Play() error {
	h, _ := p.snapshot()
	return call(h.Play)
}

func (p *playerAdapter) Seek(_ types.Microseconds) error {
	return nil
}

func (p *playerAdapter) SetPosition(_ string, _ types.Microseconds) error {
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	_, np := p.snapshot()
	switch {
	case np.TrackID == "":
		return types.PlaybackStatusStopped, nil
	case np.Playing:
		return types.PlaybackStatusPlaying, nil
	default:
		return types.PlaybackStatusPaused, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	_, np := p.snapshot()
	if np.TrackID == "" {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(np.TrackID)),
		Length:  types.Microseconds(np.Duration.Microseconds()),
		Title:   np.Title,
		ArtUrl:  np.ArtworkURL,
	}
	if np.Artist != "" {
		meta.Artist = []string{np.Artist}
	}
	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return 0, nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	_, np := p.snapshot()
	return np.TrackID != "", nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	_, np := p.snapshot()
	return np.TrackID != "", nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	_, np := p.snapshot()
	return np.TrackID != "", nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
