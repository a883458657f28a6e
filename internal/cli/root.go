package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fbettag/mdb/internal/catalog"
	"github.com/fbettag/mdb/internal/config"
	"github.com/fbettag/mdb/internal/feed"
	"github.com/fbettag/mdb/internal/logging"
	"github.com/fbettag/mdb/internal/theme"
	"github.com/fbettag/mdb/internal/tui"
)

var (
	cfgFile  string
	endpoint string
	noCache  bool
	openLink string
)

// Execute boots the CLI.
func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mdb: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mdb",
		Short:        "mdb browses the models.dev catalog in the terminal",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to mdb config file (defaults to ~/.mdb/config.toml)")
	cmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Catalog URL (overrides config)")
	cmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Always fetch a fresh catalog")
	cmd.Flags().StringVar(&openLink, "open", "", "Open a shared link fragment once loaded, e.g. '#compare=openai/gpt-4o,anthropic/claude-3-5-haiku'")

	cmd.AddCommand(
		newListCommand(),
		newShowCommand(),
		newCompareCommand(),
		newConfigCommand(),
	)

	return cmd
}

// env is what every command needs: settings, a logger and a catalog source.
type env struct {
	cfg     config.Config
	log     *log.Logger
	fetcher *feed.Client
	closer  io.Closer
}

func (e env) Close() error {
	return e.closer.Close()
}

// setup loads config and logging. Interactive runs log to the log file since
// the screen belongs to the UI.
func setup(interactive bool) (env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return env{}, err
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if noCache {
		cfg.NoCache = true
	}

	logPath := ""
	if interactive {
		if logPath, err = cfg.ResolveLogFile(); err != nil {
			return env{}, err
		}
	}
	logger, closer, err := logging.Setup(cfg.LogLevel, logPath)
	if err != nil {
		return env{}, err
	}

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		closer.Close()
		return env{}, err
	}
	return env{cfg: cfg, log: logger, fetcher: fetcher, closer: closer}, nil
}

func newFetcher(cfg config.Config, logger *log.Logger) (*feed.Client, error) {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}
	opts := []feed.Option{feed.WithTimeout(timeout), feed.WithLogger(logger)}
	if cfg.NoCache {
		opts = append(opts, feed.WithNoCache())
	} else {
		ttl, err := cfg.TTL()
		if err != nil {
			return nil, err
		}
		dir, err := cfg.ResolveCacheDir()
		if err != nil {
			return nil, err
		}
		cache, err := feed.NewFileCache(dir, ttl)
		if err != nil {
			// A broken cache directory only costs the cache.
			logger.Warn("catalog cache disabled", "dir", dir, "err", err)
		} else {
			opts = append(opts, feed.WithCache(cache))
		}
	}
	return feed.New(cfg.Endpoint, opts...), nil
}

func runRoot(ctx context.Context) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.Close()

	prefs, err := config.LoadPrefs()
	if err != nil {
		e.log.Warn("ignoring unreadable prefs", "err", err)
	}
	name := theme.Resolve(prefs.Theme, lipgloss.HasDarkBackground)
	e.log.Info("starting browser", "endpoint", e.fetcher.Endpoint(), "theme", name)

	return tui.Run(ctx, tui.Options{
		Fetcher:   e.fetcher,
		Open:      openLink,
		LinkBase:  e.cfg.LinkBase,
		Theme:     name,
		Logger:    e.log,
		SavePrefs: config.SavePrefs,
	})
}

// load fetches the catalog for the non-interactive commands.
func load(ctx context.Context) (*catalog.Store, env, error) {
	e, err := setup(false)
	if err != nil {
		return nil, env{}, err
	}
	store, err := catalog.Load(ctx, e.fetcher)
	if err != nil {
		e.Close()
		return nil, env{}, err
	}
	e.log.Debug("catalog loaded", "records", store.Len(), "providers", len(store.Providers()))
	return store, e, nil
}
