package playlist

// Queue wraps a Playlist with a "now playing" pointer.
//
// Invariants: currentIndex is -1 iff the queue is empty, otherwise it is in
// [0, Len()). No two entries share an ID.
type Queue struct {
	playlist     *Playlist
	currentIndex int
}

// NewQueue creates a new empty queue.
func NewQueue() *Queue {
	return &Queue{
		playlist:     NewPlaylist(),
		currentIndex: -1,
	}
}

// Current returns the current track, or nil if the queue is empty.
func (q *Queue) Current() *Track {
	if q.currentIndex < 0 || q.currentIndex >= q.playlist.Len() {
		return nil
	}
	return q.playlist.Track(q.currentIndex)
}

// CurrentIndex returns the index of the current track (-1 if empty).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// Select puts t at the front of the queue and makes it current.
// Existing entries with the same ID are removed first.
func (q *Queue) Select(t Track) *Track {
	q.playlist.RemoveID(t.ID)
	q.playlist.Prepend(t)
	q.currentIndex = 0
	return q.Current()
}

// Next advances to the next track, wrapping to the first one.
// Returns nil only when the queue is empty.
func (q *Queue) Next() *Track {
	n := q.playlist.Len()
	if n == 0 {
		return nil
	}
	q.currentIndex = (q.currentIndex + 1) % n
	return q.Current()
}

// Prev moves to the previous track, wrapping to the last one.
// Returns nil only when the queue is empty.
func (q *Queue) Prev() *Track {
	n := q.playlist.Len()
	if n == 0 {
		return nil
	}
	q.currentIndex = (q.currentIndex - 1 + n) % n
	return q.Current()
}

// ReplaceAll swaps the whole queue and its pointer in one step.
// Duplicate IDs collapse to their first occurrence; start is remapped onto the
// surviving entry and clamped into range. Returns the new current track.
func (q *Queue) ReplaceAll(tracks []Track, start int) *Track {
	next := NewPlaylist()
	positions := make(map[string]int, len(tracks))
	for _, t := range tracks {
		if _, dup := positions[t.ID]; dup {
			continue
		}
		positions[t.ID] = next.Len()
		next.Add(t)
	}

	index := -1
	if next.Len() > 0 {
		start = max(0, min(start, len(tracks)-1))
		index = positions[tracks[start].ID]
	}

	q.playlist = next
	q.currentIndex = index
	return q.Current()
}

// SetStreamURL records a resolved stream URL on the entry with the given ID.
// Returns false if no such entry exists.
func (q *Queue) SetStreamURL(id, streamURL string) bool {
	i := q.playlist.IndexOf(id)
	if i < 0 {
		return false
	}
	q.playlist.Track(i).StreamURL = streamURL
	return true
}

// Contains reports whether a track with the given ID is queued.
func (q *Queue) Contains(id string) bool {
	return q.playlist.IndexOf(id) >= 0
}

// Clear removes all tracks.
func (q *Queue) Clear() {
	q.playlist.Clear()
	q.currentIndex = -1
}

// Tracks returns a copy of all tracks in the queue.
func (q *Queue) Tracks() []Track {
	return q.playlist.Tracks()
}

// Len returns the number of tracks in the queue.
func (q *Queue) Len() int {
	return q.playlist.Len()
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.playlist.Len() == 0
}
