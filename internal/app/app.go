// Package app implements the terminal front end: search, liked tracks and
// the now-playing bar, all driven by the playback session.
package app

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/llehouerou/aurora/internal/keymap"
	"github.com/llehouerou/aurora/internal/playback"
	"github.com/llehouerou/aurora/internal/playlist"
	"github.com/llehouerou/aurora/internal/store"
	"github.com/llehouerou/aurora/internal/ui"
	"github.com/llehouerou/aurora/internal/ui/headerbar"
	"github.com/llehouerou/aurora/internal/ui/helpbindings"
	"github.com/llehouerou/aurora/internal/ui/list"
	"github.com/llehouerou/aurora/internal/ui/playerbar"
	"github.com/llehouerou/aurora/internal/ui/textinput"
)

// Searcher finds tracks for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]playlist.Track, error)
}

// Likes is the local liked set with background persistence.
type Likes interface {
	Load(ctx context.Context, userID string) ([]store.Like, error)
	ToggleLike(ctx context.Context, t playlist.Track, userID string) bool
	IsLiked(trackID string) bool
	Liked() []store.Like
	Pending() int
}

// AccentSource derives a tint color from a cover image.
type AccentSource interface {
	Accent(ctx context.Context, url string) (colorful.Color, error)
}

// Deps are the services the front end drives.
type Deps struct {
	Playback playback.Service
	Likes    Likes
	Search   Searcher
	Artwork  AccentSource // optional
	UserID   string
	Logger   *log.Logger
	// OnVolume persists a volume change. Optional.
	OnVolume func(level float64)
	// Now is the clock for relative times. Defaults to time.Now.
	Now func() time.Time
}

type focus int

const (
	focusSearchBox focus = iota
	focusResults
	focusLikes
)

const (
	seekStep   = 5 * time.Second
	volumeStep = 0.05
)

// Model is the root bubbletea model.
type Model struct {
	deps Deps
	ctx  context.Context
	keys *keymap.Resolver

	width, height int
	view          headerbar.View
	focus         focus

	searchBox textinput.Model
	results   list.Model[playlist.Track]
	likes     list.Model[store.Like]
	help      helpbindings.Model
	showHelp  bool

	// searchSeq tags search requests so a slow answer cannot replace a newer one.
	searchSeq  int
	lastQuery  string
	searchErr  string
	likesErr   string
	dialog     *dialog
	startFocus tea.Cmd

	sub         *playback.Subscription
	state       playback.State
	track       *playlist.Track
	accent      colorful.Color
	displayMode playerbar.DisplayMode
}

type dialog struct {
	title, body string
}

// New creates the root model and subscribes to the session. ctx bounds the
// background requests the UI starts.
func New(ctx context.Context, d Deps) Model {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	m := Model{
		deps:      d,
		ctx:       ctx,
		keys:      keymap.Default(),
		view:      headerbar.ViewSearch,
		searchBox: textinput.New("Search artists, songs…"),
		results:   list.New[playlist.Track](ui.ScrollMargin),
		likes:     list.New[store.Like](ui.ScrollMargin),
		help:      helpbindings.New(),
		sub:       d.Playback.Subscribe(),
		state:     d.Playback.State(),
		track:     d.Playback.CurrentTrack(),
	}
	m.startFocus = m.searchBox.Focus()
	m.likes.SetItems(d.Likes.Liked())
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.startFocus,
		m.WatchServiceEvents(),
		m.loadLikesCmd(),
		TickCmd(),
	)
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.results.SetFocused(f == focusResults)
	m.likes.SetFocused(f == focusLikes)
	switch f {
	case focusSearchBox:
		m.view = headerbar.ViewSearch
		return m.searchBox.Focus()
	case focusResults:
		m.view = headerbar.ViewSearch
	case focusLikes:
		m.view = headerbar.ViewLikes
		m.likes.SetItems(m.deps.Likes.Liked())
	}
	m.searchBox.Blur()
	return nil
}
