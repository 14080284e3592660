package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendREST     = "rest"
)

// Secrets read from the environment (or a .env file) override file values.
const (
	EnvStoreDSN      = "AURORA_STORE_DSN"
	EnvStoreAPIKey   = "AURORA_STORE_API_KEY"
	EnvRedisPassword = "AURORA_REDIS_PASSWORD"
	EnvLastfmSession = "AURORA_LASTFM_SESSION"
	EnvProxyURL      = "AURORA_PROXY_URL"
)

var ErrUnknownBackend = errors.New("unknown store backend")

type Config struct {
	Resolver ResolverConfig `koanf:"resolver"`
	Search   SearchConfig   `koanf:"search"`
	Store    StoreConfig    `koanf:"store"`
	User     UserConfig     `koanf:"user"`
	Lastfm   LastfmConfig   `koanf:"lastfm"`
	Log      LogConfig      `koanf:"log"`
	Media    MediaConfig    `koanf:"media"`
	Player   PlayerConfig   `koanf:"player"`
}

// ResolverConfig points at the stream proxy.
type ResolverConfig struct {
	BaseURL    string  `koanf:"base_url"`
	Mode       string  `koanf:"mode"`         // "json" or "proxy" (default: "json")
	RatePerSec float64 `koanf:"rate_per_sec"` // default: 2
	TimeoutSec int     `koanf:"timeout_sec"`  // default: 15
}

// SearchConfig points at the catalog search. BaseURL defaults to the
// resolver's.
type SearchConfig struct {
	BaseURL    string  `koanf:"base_url"`
	RatePerSec float64 `koanf:"rate_per_sec"`
}

// StoreConfig selects and configures the liked-tracks store.
type StoreConfig struct {
	Backend       string `koanf:"backend"` // memory, sqlite, postgres, redis, rest (default: sqlite)
	DSN           string `koanf:"dsn"`     // postgres connection string
	Path          string `koanf:"path"`    // sqlite file
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RestURL       string `koanf:"rest_url"` // PostgREST / Supabase project URL
	APIKey        string `koanf:"api_key"`
	WriteAttempts int    `koanf:"write_attempts"` // default: 3
}

// UserConfig is the profile announced to stores that keep users.
type UserConfig struct {
	Name      string `koanf:"name"`
	AvatarURL string `koanf:"avatar_url"`
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey     string `koanf:"api_key"`
	APISecret  string `koanf:"api_secret"`
	SessionKey string `koanf:"session_key"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error (default: info)
	File  string `koanf:"file"`
}

type MediaConfig struct {
	MPRIS         *bool `koanf:"mpris"`         // default: true
	Notifications *bool `koanf:"notifications"` // default: true
}

type PlayerConfig struct {
	Volume *float64 `koanf:"volume"` // 0..1, used when no saved volume exists (default: 0.8)
}

// Load reads .env, then the config files in priority order, then applies
// environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given TOML files (missing ones are skipped; last wins)
// and applies environment overrides.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	cfg.Resolver.BaseURL = strings.TrimSuffix(cfg.Resolver.BaseURL, "/")
	cfg.Search.BaseURL = strings.TrimSuffix(cfg.Search.BaseURL, "/")
	cfg.Store.RestURL = strings.TrimSuffix(cfg.Store.RestURL, "/")
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if cfg.Store.Path != "" {
		cfg.Store.Path = expandPath(cfg.Store.Path)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Store.DSN, EnvStoreDSN)
	set(&cfg.Store.APIKey, EnvStoreAPIKey)
	set(&cfg.Store.RedisPassword, EnvRedisPassword)
	set(&cfg.Lastfm.SessionKey, EnvLastfmSession)
	set(&cfg.Resolver.BaseURL, EnvProxyURL)
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "", BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store backend %q needs dsn or %s", BackendPostgres, EnvStoreDSN)
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store backend %q needs redis_addr", BackendRedis)
		}
	case BackendREST:
		if c.Store.RestURL == "" {
			return fmt.Errorf("store backend %q needs rest_url", BackendREST)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Store.Backend)
	}
	return nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/aurora/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "aurora", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// GetResolverConfig returns the resolver configuration with defaults applied.
func (c *Config) GetResolverConfig() ResolverConfig {
	cfg := c.Resolver
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Mode != "proxy" {
		cfg.Mode = "json"
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 2
	}
	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = 15
	}
	return cfg
}

// GetSearchConfig returns the search configuration with defaults applied.
func (c *Config) GetSearchConfig() SearchConfig {
	cfg := c.Search
	if cfg.BaseURL == "" {
		cfg.BaseURL = c.GetResolverConfig().BaseURL
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 2
	}
	return cfg
}

// GetStoreConfig returns the store configuration with defaults applied.
func (c *Config) GetStoreConfig() StoreConfig {
	cfg := c.Store
	if cfg.Backend == "" {
		cfg.Backend = BackendSQLite
	}
	if cfg.WriteAttempts <= 0 {
		cfg.WriteAttempts = 3
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	return cfg
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// MPRISEnabled reports whether the MPRIS surface should be started.
func (c *Config) MPRISEnabled() bool {
	return c.Media.MPRIS == nil || *c.Media.MPRIS
}

// NotificationsEnabled reports whether track-change notifications are shown.
func (c *Config) NotificationsEnabled() bool {
	return c.Media.Notifications == nil || *c.Media.Notifications
}

// DefaultVolume returns the configured startup volume clamped to [0, 1].
func (c *Config) DefaultVolume() float64 {
	if c.Player.Volume == nil {
		return 0.8
	}
	return min(max(*c.Player.Volume, 0), 1)
}
