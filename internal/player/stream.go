package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

var (
	// ErrUnsupportedFormat is returned when a stream cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrStreamTooLarge is returned when a stream exceeds the buffer limit.
	ErrStreamTooLarge = errors.New("stream too large")
)

const maxStreamBytes = 256 << 20

type audioFormat int

const (
	formatUnknown audioFormat = iota
	formatMP3
	formatVorbis
	formatFLAC
	formatWAV
)

func (f audioFormat) String() string {
	switch f {
	case formatMP3:
		return "mp3"
	case formatVorbis:
		return "ogg"
	case formatFLAC:
		return "flac"
	case formatWAV:
		return "wav"
	default:
		return "unknown"
	}
}

// Load assigns a new source and starts fetching it in the background.
// A Play issued before the stream is decoded takes effect once it is.
func (p *StreamPlayer) Load(token uint64, streamURL string) error {
	if streamURL == "" {
		return ErrNoSource
	}
	u, err := url.Parse(streamURL)
	if err != nil {
		return fmt.Errorf("parse stream url: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	p.resetLocked()
	p.token = token
	p.state = Loading
	p.cancelLoad = cancel
	p.mu.Unlock()

	p.emit(Event{Type: EventBuffering, Token: token})
	go p.fetch(ctx, token, u)
	return nil
}

func (p *StreamPlayer) fetch(ctx context.Context, token uint64, u *url.URL) {
	streamer, format, err := p.open(ctx, u)
	if err == nil {
		if err = initSpeaker(); err != nil {
			streamer.Close()
			err = fmt.Errorf("init speaker: %w", err)
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return // superseded by another Load or Stop
		}
		p.mu.Lock()
		current := p.token == token
		if current {
			p.state = Stopped
		}
		p.mu.Unlock()
		if current {
			p.logger.Warn("stream failed", "url", u.Redacted(), "err", err)
			p.emit(Event{Type: EventError, Token: token, Err: err})
		}
		return
	}

	p.mu.Lock()
	if p.token != token || p.state != Loading {
		p.mu.Unlock()
		streamer.Close()
		return
	}

	p.streamer = streamer
	p.format = format
	var s beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		s = beep.Resample(4, format.SampleRate, speakerSampleRate, streamer)
	}
	p.ctrl = &beep.Ctrl{Streamer: s, Paused: true}
	p.volume = &effects.Volume{
		Streamer: p.ctrl,
		Base:     2,
		Volume:   levelToVolume(p.volumeLevel),
		Silent:   p.volumeLevel <= 0,
	}
	p.state = Ready
	duration := format.SampleRate.D(streamer.Len())
	play, hold := p.wantPlay, p.holdPause
	p.wantPlay, p.holdPause = false, false
	switch {
	case play:
		p.startLocked()
	case hold:
		p.state = Paused
	}
	p.mu.Unlock()

	for _, e := range settleEvents(token, duration, play, hold) {
		p.emit(e)
	}
}

// settleEvents are the events that follow a decoded stream: Ready, then
// Playing for a pending Play or Paused for a Pause made while loading.
func settleEvents(token uint64, duration time.Duration, play, hold bool) []Event {
	events := []Event{{Type: EventReady, Token: token, Duration: duration}}
	switch {
	case play:
		events = append(events, Event{Type: EventPlaying, Token: token})
	case hold:
		events = append(events, Event{Type: EventPaused, Token: token})
	}
	return events
}

func (p *StreamPlayer) open(ctx context.Context, u *url.URL) (beep.StreamSeekCloser, beep.Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, beep.Format{}, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	// Buffer the whole stream so decoders can seek.
	data, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("read stream: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, beep.Format{}, fmt.Errorf("%w: over %d bytes", ErrStreamTooLarge, p.maxBytes)
	}

	return decode(detectFormat(resp.Header.Get("Content-Type"), u.Path, data), data)
}

// memFile is an in-memory, seekable ReadCloser.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func decode(f audioFormat, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	src := memFile{bytes.NewReader(data)}
	switch f {
	case formatMP3:
		return mp3.Decode(src)
	case formatVorbis:
		return vorbis.Decode(src)
	case formatFLAC:
		return flac.Decode(src)
	case formatWAV:
		return wav.Decode(src)
	case formatUnknown:
	}
	return nil, beep.Format{}, ErrUnsupportedFormat
}

// detectFormat picks a decoder from magic bytes, then the declared content
// type, then the URL extension.
func detectFormat(contentType, urlPath string, head []byte) audioFormat {
	switch {
	case bytes.HasPrefix(head, []byte("ID3")):
		return formatMP3
	case bytes.HasPrefix(head, []byte("OggS")):
		return formatVorbis
	case bytes.HasPrefix(head, []byte("fLaC")):
		return formatFLAC
	case bytes.HasPrefix(head, []byte("RIFF")):
		return formatWAV
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return formatMP3 // MPEG frame sync
	}

	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "audio/mpeg", "audio/mp3":
			return formatMP3
		case "audio/ogg", "audio/vorbis", "application/ogg":
			return formatVorbis
		case "audio/flac", "audio/x-flac":
			return formatFLAC
		case "audio/wav", "audio/x-wav", "audio/wave":
			return formatWAV
		}
	}

	switch strings.ToLower(path.Ext(urlPath)) {
	case ".mp3":
		return formatMP3
	case ".ogg", ".oga":
		return formatVorbis
	case ".flac":
		return formatFLAC
	case ".wav":
		return formatWAV
	}
	return formatUnknown
}
