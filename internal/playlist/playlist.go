package playlist

import "time"

// Track describes a playable piece of music.
// ID is the only field used for equality.
type Track struct {
	ID            string
	Title         string
	Artist        string
	CoverURL      string
	SourceLocator string        // opaque reference handed to the stream resolver
	StreamURL     string        // empty until resolved
	Duration      time.Duration // best effort, 0 when unknown
}

// HasStream reports whether the stream URL has already been resolved.
func (t Track) HasStream() bool {
	return t.StreamURL != ""
}

// Playlist holds an ordered collection of tracks.
type Playlist struct {
	tracks []Track
}

// NewPlaylist creates a new empty playlist.
func NewPlaylist() *Playlist {
	return &Playlist{
		tracks: make([]Track, 0),
	}
}

// Add appends tracks to the playlist.
func (p *Playlist) Add(tracks ...Track) {
	p.tracks = append(p.tracks, tracks...)
}

// Prepend inserts a track at the front of the playlist.
func (p *Playlist) Prepend(t Track) {
	p.tracks = append([]Track{t}, p.tracks...)
}

// Remove removes the track at the given index.
// Returns false if index is out of bounds.
func (p *Playlist) Remove(index int) bool {
	if index < 0 || index >= len(p.tracks) {
		return false
	}
	p.tracks = append(p.tracks[:index], p.tracks[index+1:]...)
	return true
}

// RemoveID removes every track with the given ID and returns how many were removed.
func (p *Playlist) RemoveID(id string) int {
	kept := p.tracks[:0]
	removed := 0
	for _, t := range p.tracks {
		if t.ID == id {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	p.tracks = kept
	return removed
}

// IndexOf returns the index of the first track with the given ID, or -1.
func (p *Playlist) IndexOf(id string) int {
	for i := range p.tracks {
		if p.tracks[i].ID == id {
			return i
		}
	}
	return -1
}

// Clear removes all tracks from the playlist.
func (p *Playlist) Clear() {
	p.tracks = p.tracks[:0]
}

// Tracks returns a copy of all tracks.
func (p *Playlist) Tracks() []Track {
	result := make([]Track, len(p.tracks))
	copy(result, p.tracks)
	return result
}

// Track returns the track at the given index, or nil if out of bounds.
func (p *Playlist) Track(index int) *Track {
	if index < 0 || index >= len(p.tracks) {
		return nil
	}
	return &p.tracks[index]
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	return len(p.tracks)
}
