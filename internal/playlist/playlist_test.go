//nolint:goconst // test file with repeated string literals
package playlist

import "testing"

func TestNewPlaylist(t *testing.T) {
	p := NewPlaylist()

	if p.Len() != 0 {
		t.Errorf("Len() = %d, want 0", p.Len())
	}
	if p.Tracks() == nil {
		t.Error("Tracks() should return empty slice, not nil")
	}
}

func TestPlaylist_Add(t *testing.T) {
	p := NewPlaylist()

	p.Add(Track{ID: "a"}, Track{ID: "b"})

	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
	tracks := p.Tracks()
	if tracks[0].ID != "a" || tracks[1].ID != "b" {
		t.Errorf("Tracks() = %v, want [a b]", ids(tracks))
	}
}

func TestPlaylist_Prepend(t *testing.T) {
	p := NewPlaylist()
	p.Add(Track{ID: "a"})

	p.Prepend(Track{ID: "z"})

	if got := ids(p.Tracks()); got[0] != "z" || got[1] != "a" {
		t.Errorf("Tracks() = %v, want [z a]", got)
	}
}

func TestPlaylist_Remove(t *testing.T) {
	p := NewPlaylist()
	p.Add(Track{ID: "a"}, Track{ID: "b"}, Track{ID: "c"})

	if !p.Remove(1) {
		t.Error("Remove should return true")
	}
	if got := ids(p.Tracks()); len(got) != 2 || got[1] != "c" {
		t.Errorf("Tracks() = %v, want [a c]", got)
	}
	if p.Remove(5) {
		t.Error("Remove out of bounds should return false")
	}
}

func TestPlaylist_RemoveID(t *testing.T) {
	p := NewPlaylist()
	p.Add(Track{ID: "a"}, Track{ID: "b"}, Track{ID: "a"})

	n := p.RemoveID("a")

	if n != 2 {
		t.Errorf("RemoveID() = %d, want 2", n)
	}
	if got := ids(p.Tracks()); len(got) != 1 || got[0] != "b" {
		t.Errorf("Tracks() = %v, want [b]", got)
	}
}

func TestPlaylist_IndexOf(t *testing.T) {
	p := NewPlaylist()
	p.Add(Track{ID: "a"}, Track{ID: "b"})

	if p.IndexOf("b") != 1 {
		t.Errorf("IndexOf(b) = %d, want 1", p.IndexOf("b"))
	}
	if p.IndexOf("nope") != -1 {
		t.Errorf("IndexOf(nope) = %d, want -1", p.IndexOf("nope"))
	}
}

func TestPlaylist_Tracks_ReturnsCopy(t *testing.T) {
	p := NewPlaylist()
	p.Add(Track{ID: "a", Title: "original"})

	tracks := p.Tracks()
	tracks[0].Title = "mutated"

	if p.Track(0).Title != "original" {
		t.Error("Tracks() should return a copy")
	}
}

func TestTrack_HasStream(t *testing.T) {
	if (Track{}).HasStream() {
		t.Error("zero track should not have a stream")
	}
	if !(Track{StreamURL: "https://x"}).HasStream() {
		t.Error("track with StreamURL should have a stream")
	}
}
