// Package mediabridge connects the playback session to OS media-control
// surfaces: lock-screen widgets, media keys, desktop notifications.
package mediabridge

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/aurora/internal/playback"
	"github.com/llehouerou/aurora/internal/playlist"
)

// Handlers are the transport callbacks a surface may invoke.
type Handlers struct {
	Play     func()
	Pause    func()
	Previous func()
	Next     func()
}

// NowPlaying is what a surface displays. The zero value means nothing is
// playing.
type NowPlaying struct {
	TrackID    string
	Title      string
	Artist     string
	ArtworkURL string
	Duration   time.Duration
	Playing    bool
}

// Surface is an OS media-control integration.
type Surface interface {
	SetHandlers(h Handlers) error
	Publish(np NowPlaying) error
}

// Controller is the part of the playback session the bridge drives.
type Controller interface {
	Play() error
	Pause() error
	SkipNext()
	SkipPrev()
	State() playback.State
	CurrentTrack() *playlist.Track
	Subscribe() *playback.Subscription
}

// Bridge forwards session changes to surfaces and surface callbacks to the
// session.
type Bridge struct {
	ctl      Controller
	surfaces []Surface
	logger   *log.Logger

	mu        sync.Mutex
	published NowPlaying
	started   bool
}

// New creates a bridge. Nil surfaces are ignored, so a platform without a
// media surface gets a bridge that only tracks state.
func New(ctl Controller, logger *log.Logger, surfaces ...Surface) *Bridge {
	if logger == nil {
		logger = log.Default()
	}
	b := &Bridge{ctl: ctl, logger: logger}
	for _, s := range surfaces {
		if s != nil {
			b.surfaces = append(b.surfaces, s)
		}
	}
	return b
}

// Handlers returns the callbacks installed on every surface.
func (b *Bridge) Handlers() Handlers {
	return Handlers{
		Play: func() {
			if err := b.ctl.Play(); err != nil {
				b.logger.Warn("media play", "err", err)
			}
		},
		Pause: func() {
			if err := b.ctl.Pause(); err != nil {
				b.logger.Warn("media pause", "err", err)
			}
		},
		Previous: b.ctl.SkipPrev,
		Next:     b.ctl.SkipNext,
	}
}

// Run installs the handlers, publishes the current state and then follows the
// session until ctx is done or the session closes.
func (b *Bridge) Run(ctx context.Context) error {
	h := b.Handlers()
	for _, s := range b.surfaces {
		if err := s.SetHandlers(h); err != nil {
			b.logger.Warn("media surface handlers", "err", err)
		}
	}

	sub := b.ctl.Subscribe()
	b.refresh(b.ctl.State())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.Done:
			return nil
		case <-sub.StateChanged:
			b.refresh(b.ctl.State())
		case <-sub.TrackChanged:
			b.refresh(b.ctl.State())
		case <-sub.Error:
		}
	}
}

// Published returns the last value sent to the surfaces.
func (b *Bridge) Published() NowPlaying {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published
}

func (b *Bridge) refresh(st playback.State) {
	np := b.nowPlaying(st)

	b.mu.Lock()
	if b.started && np == b.published {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.published = np
	b.mu.Unlock()

	for _, s := range b.surfaces {
		if err := s.Publish(np); err != nil {
			b.logger.Warn("media surface publish", "track", np.TrackID, "err", err)
		}
	}
}

func (b *Bridge) nowPlaying(st playback.State) NowPlaying {
	if st.TrackID == "" {
		return NowPlaying{}
	}
	np := NowPlaying{
		TrackID:  st.TrackID,
		Duration: st.Duration,
		Playing:  st.Status == playback.StatusPlaying,
	}
	if t := b.ctl.CurrentTrack(); t != nil && t.ID == st.TrackID {
		np.Title = t.Title
		np.Artist = t.Artist
		np.ArtworkURL = t.CoverURL
		if np.Duration <= 0 {
			np.Duration = t.Duration
		}
	}
	return np
}
