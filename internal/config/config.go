package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// DefaultFileName is the expected file name under the config directory.
	DefaultFileName = "config.toml"
	// DefaultEndpoint is the public models.dev catalog.
	DefaultEndpoint = "https://models.dev/api.json"
	// DefaultLinkBase prefixes copied shareable links.
	DefaultLinkBase = "https://models.dev/"
	// HomeEnv overrides the ~/.mdb directory.
	HomeEnv = "MDB_HOME"
)

// Config captures user settings. Values come from defaults, then
// config.toml, then MDB_* environment variables.
type Config struct {
	// Endpoint is the catalog URL.
	Endpoint string `mapstructure:"endpoint" toml:"endpoint"`
	// CacheDir holds cached catalog responses; empty means <home>/cache.
	CacheDir string `mapstructure:"cache_dir" toml:"cache_dir"`
	// CacheTTL is how long a cached catalog is served without revalidation.
	CacheTTL string `mapstructure:"cache_ttl" toml:"cache_ttl"`
	NoCache  bool   `mapstructure:"no_cache" toml:"no_cache"`
	// Timeout bounds the catalog request.
	Timeout  string `mapstructure:"timeout" toml:"timeout"`
	LogLevel string `mapstructure:"log_level" toml:"log_level"`
	// LogFile receives logs while the terminal UI owns the screen; empty
	// means <home>/mdb.log.
	LogFile  string `mapstructure:"log_file" toml:"log_file"`
	LinkBase string `mapstructure:"link_base" toml:"link_base"`
}

// Default returns config populated with safe defaults.
func Default() Config {
	return Config{
		Endpoint: DefaultEndpoint,
		CacheTTL: "1h",
		Timeout:  "30s",
		LogLevel: "info",
		LinkBase: DefaultLinkBase,
	}
}

// TTL parses CacheTTL.
func (c Config) TTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("parsing cache_ttl: %w", err)
	}
	return d, nil
}

// RequestTimeout parses Timeout.
func (c Config) RequestTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("parsing timeout: %w", err)
	}
	return d, nil
}

// HomeDir resolves ~/.mdb (or $MDB_HOME), creating it if necessary.
func HomeDir() (string, error) {
	if custom := os.Getenv(HomeEnv); custom != "" {
		if err := os.MkdirAll(custom, 0o755); err != nil {
			return "", fmt.Errorf("ensuring %s dir: %w", HomeEnv, err)
		}
		return custom, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	dir := filepath.Join(home, ".mdb")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensuring config dir: %w", err)
	}
	return dir, nil
}

// DefaultPath resolves ~/.mdb/config.toml.
func DefaultPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultFileName), nil
}

// Load reads config from path; when missing, returns defaults with any MDB_*
// environment overrides applied.
func Load(path string) (Config, error) {
	def := Default()
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return def, err
		}
	}

	v := viper.New()
	v.SetDefault("endpoint", def.Endpoint)
	v.SetDefault("cache_dir", def.CacheDir)
	v.SetDefault("cache_ttl", def.CacheTTL)
	v.SetDefault("no_cache", def.NoCache)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("link_base", def.LinkBase)

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("MDB")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return def, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return def, fmt.Errorf("parsing config: %w", err)
	}
	cfg = normalize(cfg)
	if _, err := cfg.TTL(); err != nil {
		return def, err
	}
	if _, err := cfg.RequestTimeout(); err != nil {
		return def, err
	}
	return cfg, nil
}

// Save writes the provided config to path (defaulting to ~/.mdb/config.toml when empty).
func Save(path string, cfg Config) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}
	cfg = normalize(cfg)
	data, err := toml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func normalize(cfg Config) Config {
	def := Default()
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if strings.TrimSpace(cfg.CacheTTL) == "" {
		cfg.CacheTTL = def.CacheTTL
	}
	if strings.TrimSpace(cfg.Timeout) == "" {
		cfg.Timeout = def.Timeout
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.LinkBase == "" {
		cfg.LinkBase = def.LinkBase
	}
	return cfg
}

// ResolveCacheDir returns CacheDir or <home>/cache.
func (c Config) ResolveCacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache"), nil
}

// ResolveLogFile returns LogFile or <home>/mdb.log.
func (c Config) ResolveLogFile() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mdb.log"), nil
}

// SaveExample writes a commented example config.
func SaveExample(path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}
	content := []byte(exampleConfig)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("writing example config: %w", err)
	}
	return nil
}

const exampleConfig = `# mdb configuration
#
# Every key can also be set through the environment, e.g. MDB_ENDPOINT or
# MDB_LOG_LEVEL=debug.

# Catalog to browse. Any server speaking the models.dev api.json shape works.
endpoint = "https://models.dev/api.json"

# Responses are cached on disk and served without a request for cache_ttl.
# Older entries are revalidated with ETag / Last-Modified.
# cache_dir = "~/.mdb/cache"
cache_ttl = "1h"
no_cache = false

# Upper bound for the catalog request.
timeout = "30s"

# debug, info, warn or error. The terminal UI logs to log_file.
log_level = "info"
# log_file = "~/.mdb/mdb.log"

# Prefix for links copied with L.
link_base = "https://models.dev/"
`
