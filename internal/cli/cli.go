package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/collage/pkg/buildinfo"
	"github.com/matzehuels/collage/pkg/cache"
	"github.com/matzehuels/collage/pkg/config"
	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/feed"
	"github.com/matzehuels/collage/pkg/feed/httpfeed"
	"github.com/matzehuels/collage/pkg/feed/mongofeed"
	"github.com/matzehuels/collage/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "collage"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The configuration file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Collage arranges photos on a zoomable canvas",
		Long: `Collage loads photos from a feed, scatters them on a deep-zoom canvas and
lets a force simulation push them apart until nothing overlaps. Selecting a
photo spreads its tags around it; clicking a tag pulls in more photos.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.feedCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration and applies its log level unless
// --verbose asked for debug output.
func (c *CLI) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.verbose {
		c.SetLogLevel(LogDebug)
	} else {
		c.SetLogLevel(cfg.LogLevel())
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

// newCache opens the configured cache backend. A file cache that cannot be
// created degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisURL, c.Config.Cache.Prefix)
	}
	dir, err := c.resolveCacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Feed Factory
// =============================================================================

// source is a feed.Source that may hold a connection.
type source interface {
	feed.Source
	Close(ctx context.Context) error
}

// nopCloser adds a no-op Close to sources without connections.
type nopCloser struct{ feed.Source }

func (nopCloser) Close(context.Context) error { return nil }

// newSource opens the configured feed. HTTP responses share the runner's
// cache backend.
func (c *CLI) newSource(ctx context.Context, noCache bool) (source, error) {
	f := c.Config.Feed
	switch f.Kind {
	case config.FeedDir:
		src := feed.NewDirSource(f.Path)
		src.Limit = f.Limit
		return nopCloser{src}, nil
	case config.FeedFile:
		return nopCloser{feed.NewFileSource(f.Path)}, nil
	case config.FeedHTTP:
		cache, err := c.newCache(ctx, noCache)
		if err != nil {
			return nil, err
		}
		return nopCloser{httpfeed.New(httpfeed.Options{
			BaseURL: f.URL,
			APIKey:  f.APIKey,
			Cache:   cache,
			Logger:  c.Logger,
		})}, nil
	case config.FeedMongo:
		src, err := mongofeed.Connect(ctx, f.MongoURI, f.Database, f.Collection)
		if err != nil {
			return nil, err
		}
		src.SetListLimit(f.Limit)
		return src, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown feed kind %q", f.Kind)
}

// =============================================================================
// Paths
// =============================================================================

// resolveCacheDir returns the configured cache directory, or the XDG
// default.
func (c *CLI) resolveCacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/collage/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions seeds pipeline options from the configuration.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Limit:  c.Config.Feed.Limit,
		Engine: c.Config.CollageOptions(c.Logger),
		Width:  c.Config.Viewport.Width,
		Height: c.Config.Viewport.Height,
		Logger: c.Logger,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return parts
}
