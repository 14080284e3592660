package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/llehouerou/aurora/internal/config"
	"github.com/llehouerou/aurora/internal/identity"
	"github.com/llehouerou/aurora/internal/lastfm"
	"github.com/llehouerou/aurora/internal/library"
	"github.com/llehouerou/aurora/internal/logging"
	"github.com/llehouerou/aurora/internal/mediabridge"
	"github.com/llehouerou/aurora/internal/mpris"
	"github.com/llehouerou/aurora/internal/notify"
	"github.com/llehouerou/aurora/internal/playback"
	"github.com/llehouerou/aurora/internal/player"
	"github.com/llehouerou/aurora/internal/playlist"
	"github.com/llehouerou/aurora/internal/resolver"
	"github.com/llehouerou/aurora/internal/search"
	"github.com/llehouerou/aurora/internal/state"
	"github.com/llehouerou/aurora/internal/store"
	"github.com/llehouerou/aurora/internal/store/pgstore"
	"github.com/llehouerou/aurora/internal/store/redisstore"
	"github.com/llehouerou/aurora/internal/store/reststore"
	"github.com/llehouerou/aurora/internal/store/sqlitestore"
)

// Runner holds the configuration shared by every command and builds the
// services each one needs.
type Runner struct {
	config *config.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts configures a Runner.
type RunnerOpts struct {
	Config *config.Config
	Logger *log.Logger
	Output io.Writer
}

func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = &config.Config{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.New(nil, opts.Config.GetLogConfig().Level)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{config: opts.Config, logger: opts.Logger, output: opts.Output}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range []func(*Runner) *cli.Command{
		tuiCommand, playCommand, searchCommand, likesCommand, whoamiCommand, lastfmAuthCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

// services are the long-lived components of one run.
type services struct {
	logger   *log.Logger
	state    *state.Manager
	userID   string
	store    store.Store
	likes    *library.Sync
	resolver *resolver.Client
	search   *search.Client

	closers []io.Closer
}

// open builds the identity, store and HTTP clients. Playback is built
// separately since not every command plays audio.
func (r *Runner) open(ctx context.Context, logger *log.Logger) (*services, error) {
	svc := &services{logger: logger}

	st, err := state.Open()
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	svc.state = st
	svc.closers = append(svc.closers, st)

	userID, err := identity.Resolve(ctx, identity.EnvProvider, st)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.userID = userID

	backend, err := r.openStore(ctx)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.store = backend
	if c, ok := backend.(io.Closer); ok {
		svc.closers = append(svc.closers, c)
	}
	r.registerUser(ctx, backend, userID, logger)

	storeCfg := r.config.GetStoreConfig()
	svc.likes = library.New(backend,
		library.WithLogger(logging.Component(logger, "library")),
		library.WithWriteAttempts(storeCfg.WriteAttempts),
	)

	resCfg := r.config.GetResolverConfig()
	svc.resolver = resolver.New(resCfg.BaseURL,
		resolver.WithMode(resolver.Mode(resCfg.Mode)),
		resolver.WithRateLimit(resCfg.RatePerSec),
		resolver.WithHTTPClient(r.httpClient()),
	)
	svc.search = r.searchClient()
	return svc, nil
}

// httpClient is shared by the proxy clients and bounded by the resolver
// timeout.
func (r *Runner) httpClient() *http.Client {
	return &http.Client{Timeout: time.Duration(r.config.GetResolverConfig().TimeoutSec) * time.Second}
}

func (r *Runner) searchClient() *search.Client {
	cfg := r.config.GetSearchConfig()
	return search.New(cfg.BaseURL,
		search.WithRateLimit(cfg.RatePerSec),
		search.WithHTTPClient(r.httpClient()),
	)
}

func (r *Runner) openStore(ctx context.Context) (store.Store, error) {
	cfg := r.config.GetStoreConfig()
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemory(), nil
	case config.BackendSQLite:
		return sqlitestore.Open(cfg.Path)
	case config.BackendPostgres:
		s, err := pgstore.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		return s, nil
	case config.BackendRedis:
		return redisstore.Open(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.BackendREST:
		return reststore.New(cfg.RestURL, cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
	}
}

// registerUser announces the profile to stores that keep users. Failure
// only costs the directory entry.
func (r *Runner) registerUser(ctx context.Context, s store.Store, userID string, logger *log.Logger) {
	reg, ok := s.(store.UserRegistrar)
	if !ok {
		return
	}
	name := r.config.User.Name
	if name == "" {
		name = identity.DisplayName(userID)
	}
	err := reg.RegisterUser(ctx, store.User{
		ID:        userID,
		Username:  name,
		AvatarURL: r.config.User.AvatarURL,
		LastSeen:  time.Now(),
	})
	if err != nil {
		logger.Warn("register user", "user", userID, "err", err)
	}
}

// startPlayback creates the audio engine and the session at the saved
// volume. Volume changes are persisted through the returned func.
func (svc *services) startPlayback(cfg *config.Config) (playback.Service, func(float64)) {
	volume := cfg.DefaultVolume()
	if saved, ok, err := svc.state.GetVolume(); err != nil {
		svc.logger.Warn("load volume", "err", err)
	} else if ok {
		volume = saved
	}

	engine := player.New(player.WithLogger(logging.Component(svc.logger, "player")))
	svc.closers = append(svc.closers, engine)

	session := playback.New(engine, playlist.NewQueue(), svc.resolver,
		playback.WithLogger(logging.Component(svc.logger, "playback")),
		playback.WithVolume(volume),
	)
	svc.closers = append(svc.closers, session)

	save := func(level float64) {
		if err := svc.state.SaveVolume(level); err != nil {
			svc.logger.Warn("save volume", "err", err)
		}
	}
	return session, save
}

// startBridge publishes the session to the desktop surfaces the config
// enables. Unavailable surfaces are skipped.
func (svc *services) startBridge(ctx context.Context, cfg *config.Config, session playback.Service) {
	logger := logging.Component(svc.logger, "media")
	var surfaces []mediabridge.Surface

	if cfg.MPRISEnabled() {
		adapter, err := mpris.New()
		if err != nil {
			logger.Warn("mpris unavailable", "err", err)
		} else {
			surfaces = append(surfaces, adapter)
			svc.closers = append(svc.closers, adapter)
		}
	}
	if cfg.NotificationsEnabled() {
		n, err := notify.New()
		if err != nil {
			logger.Warn("notifications unavailable", "err", err)
		} else {
			surfaces = append(surfaces, notify.NewSurface(n))
		}
	}

	bridge := mediabridge.New(session, logger, surfaces...)
	go func() {
		if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("media bridge stopped", "err", err)
		}
	}()
}

// startScrobbler follows the session when Last.fm is configured and linked.
func (svc *services) startScrobbler(ctx context.Context, cfg *config.Config, session playback.Service) {
	if !cfg.HasLastfmConfig() {
		return
	}
	logger := logging.Component(svc.logger, "lastfm")

	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
	key := cfg.Lastfm.SessionKey
	if key == "" {
		linked, err := svc.state.GetLastfmSession()
		if err != nil {
			logger.Warn("load session", "err", err)
		}
		if linked != nil {
			key = linked.SessionKey
		}
	}
	if key == "" {
		logger.Info("not linked, run aurora lastfm-auth to enable scrobbling")
		return
	}
	client.SetSessionKey(key)

	scrobbler := lastfm.NewScrobbler(client, svc.state, logger)
	go func() {
		if err := scrobbler.Run(ctx, session.Subscribe()); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("scrobbler stopped", "err", err)
		}
	}()
}

// Close waits for queued like writes, then releases everything in reverse
// order of creation.
func (svc *services) Close() {
	if svc.likes != nil {
		svc.likes.Wait()
	}
	for i := len(svc.closers) - 1; i >= 0; i-- {
		if err := svc.closers[i].Close(); err != nil {
			svc.logger.Debug("close", "err", err)
		}
	}
}

func (r *Runner) writeJSON(data any) error {
	enc := json.NewEncoder(r.output)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

func (r *Runner) writeLine(format string, args ...any) {
	fmt.Fprintf(r.output, format+"\n", args...)
}
