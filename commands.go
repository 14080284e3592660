package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/llehouerou/aurora/internal/app"
	"github.com/llehouerou/aurora/internal/artwork"
	"github.com/llehouerou/aurora/internal/identity"
	"github.com/llehouerou/aurora/internal/lastfm"
	"github.com/llehouerou/aurora/internal/logging"
	"github.com/llehouerou/aurora/internal/state"
	"github.com/llehouerou/aurora/internal/stderr"
	"github.com/llehouerou/aurora/internal/ui/render"
)

var errNoResults = errors.New("no results")

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Open the terminal player (default)",
		Action: r.TUI,
	}
}

func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Search and play without the interface until interrupted",
		ArgsUsage: "<query>",
		Action:    r.Play,
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Print catalog results for a query",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum results", Value: 20},
		},
		Action: r.Search,
	}
}

func likesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "likes",
		Usage: "List liked tracks, most recent first",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
		},
		Action: r.Likes,
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the user ID likes are stored under",
		Action: r.Whoami,
	}
}

func lastfmAuthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "lastfm-auth",
		Usage: "Link a Last.fm account for scrobbling",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "unlink", Usage: "Forget the linked account"},
		},
		Action: r.LastfmAuth,
	}
}

// TUI runs the terminal interface. Logs go to a file since the screen
// belongs to the interface.
func (r *Runner) TUI(ctx context.Context, _ *cli.Command) error {
	logCfg := r.config.GetLogConfig()
	path := logCfg.File
	if path == "" {
		p, err := xdg.StateFile(filepath.Join("aurora", "aurora.log"))
		if err != nil {
			return fmt.Errorf("log path: %w", err)
		}
		path = p
	}
	logger, closer, err := logging.OpenFile(path, logCfg.Level)
	if err != nil {
		return err
	}
	defer closer.Close()

	// The audio backend writes to fd 2 directly.
	if capture, err := stderr.Start(); err != nil {
		logger.Warn("stderr capture unavailable", "err", err)
	} else {
		defer capture.Close()
		go stderr.Forward(ctx, capture.Lines(), logging.Component(logger, "stderr"))
	}

	svc, err := r.open(ctx, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	session, saveVolume := svc.startPlayback(r.config)
	svc.startBridge(ctx, r.config, session)
	svc.startScrobbler(ctx, r.config, session)

	model := app.New(ctx, app.Deps{
		Playback: session,
		Likes:    svc.likes,
		Search:   svc.search,
		Artwork:  artwork.New(),
		UserID:   svc.userID,
		Logger:   logging.Component(logger, "ui"),
		OnVolume: saveVolume,
	})

	logger.Info("starting", "user", svc.userID, "store", r.config.GetStoreConfig().Backend)
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// Play searches, queues every hit and prints track changes.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return cli.Exit("usage: aurora play <query>", 2)
	}

	svc, err := r.open(ctx, r.logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	tracks, err := svc.search.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(tracks) == 0 {
		return fmt.Errorf("%w for %q", errNoResults, query)
	}

	session, _ := svc.startPlayback(r.config)
	svc.startBridge(ctx, r.config, session)
	svc.startScrobbler(ctx, r.config, session)

	sub := session.Subscribe()
	session.PlayAll(tracks, 0)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Done:
			return nil
		case e := <-sub.TrackChanged:
			if e.Current != nil {
				r.writeLine("▶ %s · %s  %s", e.Current.Title, e.Current.Artist, render.Duration(e.Current.Duration))
			}
		case e := <-sub.Error:
			r.logger.Error("playback", "track", e.TrackID, "err", e.Err)
		case <-sub.StateChanged:
		case <-sub.PositionChanged:
		}
	}
}

func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return cli.Exit("usage: aurora search <query>", 2)
	}

	tracks, err := r.searchClient().Search(ctx, query)
	if err != nil {
		return err
	}
	if limit := int(cmd.Int("limit")); limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	if cmd.Bool("json") {
		return r.writeJSON(tracks)
	}
	for i, t := range tracks {
		r.writeLine("%2d. %s · %s  %s", i+1, t.Title, t.Artist, render.Duration(t.Duration))
	}
	return nil
}

func (r *Runner) Likes(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.open(ctx, r.logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	likes, err := svc.likes.Load(ctx, svc.userID)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(likes)
	}
	if len(likes) == 0 {
		r.writeLine("No liked tracks yet.")
		return nil
	}
	for _, l := range likes {
		r.writeLine("♥ %s · %s  (%s)", l.Title, l.Artist, humanize.Time(l.LikedAt))
	}
	r.writeLine("\n%s liked tracks", humanize.Comma(int64(len(likes))))
	return nil
}

func (r *Runner) Whoami(ctx context.Context, _ *cli.Command) error {
	svc, err := r.open(ctx, r.logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	name := r.config.User.Name
	if name == "" {
		name = identity.DisplayName(svc.userID)
	}
	r.writeLine("user:  %s", svc.userID)
	r.writeLine("name:  %s", name)
	r.writeLine("store: %s", r.config.GetStoreConfig().Backend)

	linked, err := svc.state.GetLastfmSession()
	switch {
	case err != nil:
		r.logger.Warn("load lastfm session", "err", err)
	case linked != nil:
		r.writeLine("lastfm: %s (linked %s)", linked.Username, humanize.Time(linked.LinkedAt))
	}
	return nil
}

// LastfmAuth runs the desktop authorization flow and stores the session.
// With --unlink it forgets the stored session instead.
func (r *Runner) LastfmAuth(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("unlink") {
		st, err := state.Open()
		if err != nil {
			return fmt.Errorf("open state: %w", err)
		}
		defer st.Close()
		if err := st.DeleteLastfmSession(); err != nil {
			return fmt.Errorf("unlink: %w", err)
		}
		r.writeLine("Last.fm account unlinked.")
		return nil
	}
	if !r.config.HasLastfmConfig() {
		return cli.Exit("set [lastfm] api_key and api_secret in config.toml first", 2)
	}

	st, err := state.Open()
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer st.Close()

	client := lastfm.New(r.config.Lastfm.APIKey, r.config.Lastfm.APISecret)
	token, err := client.GetToken()
	if err != nil {
		return fmt.Errorf("request token: %w", err)
	}

	callback, err := lastfm.ListenCallback(lastfm.CallbackAddr)
	if err != nil {
		return err
	}
	defer callback.Close()

	authURL := client.AuthURL(token, callback.URL())
	r.writeLine("Authorize aurora in your browser:\n  %s", authURL)
	if err := lastfm.OpenBrowser(authURL); err != nil {
		r.logger.Debug("open browser", "err", err)
	}

	approved, err := callback.Wait(ctx, lastfm.AuthTimeout)
	if errors.Is(err, lastfm.ErrAuthTimeout) {
		return cli.Exit(err.Error(), 1)
	}
	if err != nil {
		return err
	}

	username, key, err := client.GetSession(approved)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if err := st.SaveLastfmSession(username, key); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	r.writeLine("Linked Last.fm account %s.", username)
	return nil
}
