package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/aurora/internal/errmsg"
	"github.com/llehouerou/aurora/internal/keymap"
	"github.com/llehouerou/aurora/internal/player"
	"github.com/llehouerou/aurora/internal/playlist"
	"github.com/llehouerou/aurora/internal/ui/list"
	"github.com/llehouerou/aurora/internal/ui/playerbar"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.dialog != nil {
		if key == "esc" || key == "enter" || key == "q" {
			m.dialog = nil
		}
		return m, nil
	}

	if m.showHelp {
		m.showHelp = m.help.HandleKey(key)
		return m, nil
	}

	if m.focus == focusSearchBox {
		return m.handleSearchBoxKey(msg)
	}

	return m.handleAction(m.keys.Resolve(key))
}

func (m Model) handleSearchBoxKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyTab {
		return m, m.setFocus(focusResults)
	}
	res, cmd := m.searchBox.Update(msg)
	switch {
	case res.Submitted:
		m.searchSeq++
		m.searchBox.SetLoading(true)
		return m, m.searchCmd(m.searchSeq, res.Query)
	case res.Canceled:
		return m, m.setFocus(focusResults)
	}
	return m, cmd
}

func (m Model) handleAction(a keymap.Action) (tea.Model, tea.Cmd) {
	svc := m.deps.Playback

	switch a { //nolint:exhaustive // list actions fall through to the active list
	case "":
		return m, nil
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionSearch:
		return m, m.setFocus(focusSearchBox)
	case keymap.ActionShowLikes:
		return m, m.setFocus(focusLikes)
	case keymap.ActionSwitchFocus:
		if m.focus == focusLikes {
			return m, m.setFocus(focusResults)
		}
		return m, m.setFocus(focusLikes)
	case keymap.ActionHelp:
		m.showHelp = true
		return m, nil

	case keymap.ActionPlayPause:
		if err := svc.TogglePlay(); err != nil {
			m.showError(errmsg.OpPlaybackStart, err)
		}
	case keymap.ActionNextTrack:
		svc.SkipNext()
	case keymap.ActionPrevTrack:
		svc.SkipPrev()
	case keymap.ActionSeekForward:
		m.seek(seekStep)
	case keymap.ActionSeekBack:
		m.seek(-seekStep)
	case keymap.ActionVolumeUp:
		m.changeVolume(volumeStep)
	case keymap.ActionVolumeDown:
		m.changeVolume(-volumeStep)
	case keymap.ActionToggleLike:
		m.toggleLike()
	case keymap.ActionTogglePlayerDisplay:
		if m.displayMode == playerbar.ModeCompact {
			m.displayMode = playerbar.ModeExpanded
		} else {
			m.displayMode = playerbar.ModeCompact
		}
		m.resize()

	default:
		m.handleListAction(a)
	}
	return m, nil
}

func (m *Model) handleListAction(a keymap.Action) {
	switch m.focus { //nolint:exhaustive // search box keys never get here
	case focusResults:
		res := m.results.HandleAction(a)
		if res.Action == list.ActionSelect {
			m.deps.Playback.SelectTrack(m.results.Items()[res.Index])
			return
		}
		m.playFromList(res, m.results.Items())
	case focusLikes:
		res := m.likes.HandleAction(a)
		likes := m.likes.Items()
		tracks := make([]playlist.Track, len(likes))
		for i, l := range likes {
			tracks[i] = l.Track()
		}
		m.playFromList(res, tracks)
	}
}

// playFromList replaces the queue with the whole list and starts at the
// chosen row, so next and previous walk the list in order. Search results
// only do this for play-all; a single pick goes to the front of the queue.
func (m *Model) playFromList(res list.Result, tracks []playlist.Track) {
	switch res.Action { //nolint:exhaustive // navigation needs no playback
	case list.ActionSelect, list.ActionPlayAll:
		m.deps.Playback.PlayAll(tracks, res.Index)
	}
}

func (m *Model) seek(delta time.Duration) {
	if !m.state.Status.IsActive() {
		return
	}
	if err := m.deps.Playback.Seek(m.state.CurrentTime + delta); err != nil {
		m.showError(errmsg.OpPlaybackSeek, err)
	}
}

func (m *Model) changeVolume(delta float64) {
	level := player.ClampVolume(m.state.Volume + delta)
	m.deps.Playback.SetVolume(level)
	m.state.Volume = level
	if m.deps.OnVolume != nil {
		m.deps.OnVolume(level)
	}
}

// toggleLike flips the current track, or the selected row when nothing is
// playing.
func (m *Model) toggleLike() {
	t, ok := m.likeTarget()
	if !ok {
		return
	}
	liked := m.deps.Likes.ToggleLike(m.ctx, t, m.deps.UserID)
	m.deps.Logger.Debug("like toggled", "track", t.ID, "liked", liked)
	m.likes.SetItems(m.deps.Likes.Liked())
}

func (m Model) likeTarget() (playlist.Track, bool) {
	if m.track != nil {
		return *m.track, true
	}
	switch m.focus { //nolint:exhaustive // search box has no selection
	case focusResults:
		return m.results.Selected()
	case focusLikes:
		l, ok := m.likes.Selected()
		return l.Track(), ok
	}
	return playlist.Track{}, false
}

func (m *Model) showError(op errmsg.Op, err error) {
	m.deps.Logger.Warn("action failed", "op", op, "err", err)
	m.dialog = &dialog{title: "Error", body: errmsg.Format(op, err)}
}
