package player

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

const (
	speakerSampleRate = beep.SampleRate(44100)
	tickInterval      = 250 * time.Millisecond
	fetchTimeout      = 60 * time.Second
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10))
	})
	return speakerErr
}

// StreamPlayer plays HTTP audio streams through the system speaker.
type StreamPlayer struct {
	mu sync.Mutex

	httpClient *http.Client
	logger     *log.Logger
	maxBytes   int64

	token      uint64
	state      State
	wantPlay   bool
	holdPause  bool
	started    bool
	cancelLoad func()

	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	volumeLevel float64

	finishedCh chan uint64
	events     *dispatcher
	done       chan struct{}
	closeOnce  sync.Once
}

// Option configures a StreamPlayer.
type Option func(*StreamPlayer)

// WithHTTPClient sets the client used to fetch streams.
func WithHTTPClient(c *http.Client) Option {
	return func(p *StreamPlayer) { p.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *StreamPlayer) { p.logger = l }
}

// New creates a stream player. Call Close to release its goroutines.
func New(opts ...Option) *StreamPlayer {
	p := &StreamPlayer{
		httpClient:  &http.Client{Timeout: fetchTimeout},
		logger:      log.Default(),
		maxBytes:    maxStreamBytes,
		state:       Stopped,
		volumeLevel: 1,
		finishedCh:  make(chan uint64, 1),
		events:      newDispatcher(),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.finishLoop()
	go p.tickLoop()
	return p
}

// Subscribe registers fn for engine events.
func (p *StreamPlayer) Subscribe(fn func(Event)) func() {
	return p.events.subscribe(fn)
}

// State returns the engine state.
func (p *StreamPlayer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Position returns the current playback position.
func (p *StreamPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *StreamPlayer) positionLocked() time.Duration {
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := p.format.SampleRate.D(p.streamer.Position())
	speaker.Unlock()
	return pos
}

// Close stops playback and the event goroutines.
func (p *StreamPlayer) Close() error {
	p.Stop()
	p.closeOnce.Do(func() {
		close(p.done)
		p.events.stop()
	})
	return nil
}

func (p *StreamPlayer) emit(e Event) {
	p.events.emit(e)
}

// finishLoop turns end-of-stream callbacks into Ended events.
// The callback runs on the speaker goroutine, so it only signals.
func (p *StreamPlayer) finishLoop() {
	for {
		select {
		case <-p.done:
			return
		case token := <-p.finishedCh:
			p.mu.Lock()
			current := token == p.token
			if current {
				p.resetLocked()
			}
			p.mu.Unlock()
			if current {
				p.emit(Event{Type: EventEnded, Token: token})
			}
		}
	}
}

func (p *StreamPlayer) tickLoop() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.state != Playing {
				p.mu.Unlock()
				continue
			}
			e := Event{Type: EventTimeUpdate, Token: p.token, Position: p.positionLocked()}
			p.mu.Unlock()
			p.emit(e)
		}
	}
}
