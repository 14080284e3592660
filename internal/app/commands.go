package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/aurora/internal/playlist"
)

// TickCmd returns a command that sends TickMsg after 1 second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// WatchServiceEvents waits for the next session event and converts it to a
// tea.Msg. Each handler re-arms it.
func (m Model) WatchServiceEvents() tea.Cmd {
	sub := m.sub
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return ServiceStateChangedMsg{Previous: e.Previous, Current: e.Current}
		case e := <-sub.TrackChanged:
			return ServiceTrackChangedMsg{Current: e.Current, Index: e.Index}
		case e := <-sub.PositionChanged:
			return ServicePositionMsg{Position: e.Position, Duration: e.Duration}
		case e := <-sub.Error:
			return ServiceErrorMsg{TrackID: e.TrackID, Err: e.Err}
		case <-sub.Done:
			return ServiceClosedMsg{}
		}
	}
}

func (m Model) searchCmd(seq int, query string) tea.Cmd {
	ctx, search := m.ctx, m.deps.Search
	return func() tea.Msg {
		tracks, err := search.Search(ctx, query)
		return SearchResultMsg{Seq: seq, Query: query, Tracks: tracks, Err: err}
	}
}

func (m Model) loadLikesCmd() tea.Cmd {
	ctx, likes, user := m.ctx, m.deps.Likes, m.deps.UserID
	return func() tea.Msg {
		l, err := likes.Load(ctx, user)
		return LikesLoadedMsg{Likes: l, Err: err}
	}
}

func (m Model) accentCmd(t *playlist.Track) tea.Cmd {
	if m.deps.Artwork == nil || t == nil || t.CoverURL == "" {
		return nil
	}
	ctx, art, id, url := m.ctx, m.deps.Artwork, t.ID, t.CoverURL
	return func() tea.Msg {
		c, err := art.Accent(ctx, url)
		return AccentMsg{TrackID: id, Color: c, Err: err}
	}
}
