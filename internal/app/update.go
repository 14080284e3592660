package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/llehouerou/aurora/internal/errmsg"
	"github.com/llehouerou/aurora/internal/ui"
	"github.com/llehouerou/aurora/internal/ui/headerbar"
	"github.com/llehouerou/aurora/internal/ui/playerbar"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case PlaybackMessage:
		return m.handlePlaybackMsg(msg)

	case TickMsg:
		m.likes.SetItems(m.deps.Likes.Liked())
		return m, TickCmd()

	case SearchResultMsg:
		return m.handleSearchResult(msg)

	case LikesLoadedMsg:
		m.likes.SetItems(msg.Likes)
		m.likesErr = ""
		if msg.Err != nil {
			m.deps.Logger.Warn("likes load failed", "err", msg.Err)
			m.likesErr = errmsg.Format(errmsg.OpLikesLoad, msg.Err)
		}
		return m, nil

	case AccentMsg:
		if msg.Err != nil {
			m.deps.Logger.Debug("no cover accent", "track", msg.TrackID, "err", msg.Err)
			return m, nil
		}
		if m.track != nil && m.track.ID == msg.TrackID {
			m.accent = msg.Color
		}
		return m, nil
	}

	if m.focus == focusSearchBox {
		_, cmd := m.searchBox.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) resize() {
	m.searchBox.SetSize(m.width, 1)
	m.help.SetSize(m.width, m.height)
	h := max(m.height-headerbar.Height-1-playerbar.Height(m.displayMode), ui.PanelOverhead+1)
	m.results.SetSize(m.width, h)
	m.likes.SetSize(m.width, h)
}

func (m Model) handleSearchResult(msg SearchResultMsg) (tea.Model, tea.Cmd) {
	if msg.Seq != m.searchSeq {
		return m, nil
	}
	m.searchBox.SetLoading(false)
	m.lastQuery = msg.Query
	if msg.Err != nil {
		m.deps.Logger.Warn("search failed", "query", msg.Query, "err", msg.Err)
		m.searchErr = errmsg.FormatWith(errmsg.OpSearch, msg.Query, msg.Err)
		return m, m.setFocus(focusResults)
	}
	m.searchErr = ""
	m.results.SetItems(msg.Tracks)
	m.results.Select(0)
	if len(msg.Tracks) > 0 && m.focus == focusSearchBox {
		return m, m.setFocus(focusResults)
	}
	return m, nil
}

// handlePlaybackMsg updates the mirrored session state and re-arms the watcher.
func (m Model) handlePlaybackMsg(msg PlaybackMessage) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ServiceStateChangedMsg:
		m.state = msg.Current

	case ServiceTrackChangedMsg:
		m.track = msg.Current
		m.accent = colorful.Color{}
		return m, tea.Batch(m.WatchServiceEvents(), m.accentCmd(msg.Current))

	case ServicePositionMsg:
		m.state.CurrentTime = msg.Position
		m.state.Duration = msg.Duration

	case ServiceErrorMsg:
		m.deps.Logger.Warn("track failed", "track", msg.TrackID, "err", msg.Err)

	case ServiceClosedMsg:
		return m, nil
	}
	return m, m.WatchServiceEvents()
}
