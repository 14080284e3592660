package player

import (
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Play starts or resumes playback.
// While the stream is still loading the request is remembered.
func (p *StreamPlayer) Play() error {
	p.mu.Lock()
	switch p.state {
	case Stopped:
		p.mu.Unlock()
		return ErrNoSource
	case Loading:
		p.wantPlay = true
		p.holdPause = false
		p.mu.Unlock()
		return nil
	case Playing:
		p.mu.Unlock()
		return nil
	case Ready, Paused:
	}
	p.startLocked()
	token := p.token
	p.mu.Unlock()

	p.emit(Event{Type: EventPlaying, Token: token})
	return nil
}

// startLocked hands the stream to the speaker on first use, then unpauses it.
func (p *StreamPlayer) startLocked() {
	if !p.started {
		token := p.token
		speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
			select {
			case p.finishedCh <- token:
			default:
			}
		})))
		p.started = true
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = Playing
}

// Pause pauses playback. While loading it cancels a pending Play and the
// stream settles as Paused once decoded.
func (p *StreamPlayer) Pause() error {
	p.mu.Lock()
	switch p.state {
	case Loading:
		p.wantPlay = false
		p.holdPause = true
		p.mu.Unlock()
		return nil
	case Playing:
	default:
		p.mu.Unlock()
		return nil
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = Paused
	token := p.token
	p.mu.Unlock()

	p.emit(Event{Type: EventPaused, Token: token})
	return nil
}

// Seek moves to an absolute position, clamped to the stream length.
func (p *StreamPlayer) Seek(position time.Duration) error {
	p.mu.Lock()
	if !p.state.HasSource() || p.streamer == nil {
		p.mu.Unlock()
		return ErrNoSource
	}

	speaker.Lock()
	n := p.format.SampleRate.N(position)
	n = max(0, min(n, p.streamer.Len()-1))
	err := p.streamer.Seek(n)
	pos := p.format.SampleRate.D(p.streamer.Position())
	speaker.Unlock()
	token := p.token
	p.mu.Unlock()

	if err != nil {
		return err
	}
	p.emit(Event{Type: EventTimeUpdate, Token: token, Position: pos})
	return nil
}

// Stop stops playback and releases the current stream.
func (p *StreamPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

func (p *StreamPlayer) resetLocked() {
	if p.cancelLoad != nil {
		p.cancelLoad()
		p.cancelLoad = nil
	}
	if p.started {
		speaker.Clear()
		p.started = false
	}
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	p.ctrl = nil
	p.volume = nil
	p.wantPlay = false
	p.holdPause = false
	p.state = Stopped
}
