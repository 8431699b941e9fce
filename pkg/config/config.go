// Package config loads collage settings.
//
// Settings are layered: built-in defaults, then a TOML file, then
// environment variables prefixed with COLLAGE (COLLAGE_ENGINE_DAMPING,
// COLLAGE_FEED_URL, COLLAGE_SERVER_ADDR, ...). Command-line flags are applied
// by the caller on top of the result.
//
//	[engine]
//	damping = 0.2
//	stagger = "200ms"
//
//	[feed]
//	kind = "dir"
//	path = "./slides"
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/kelseyhightower/envconfig"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/geom"
	"github.com/matzehuels/collage/pkg/viewport/headless"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COLLAGE"

// Feed kinds.
const (
	FeedDir   = "dir"
	FeedFile  = "file"
	FeedHTTP  = "http"
	FeedMongo = "mongo"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the full configuration.
type Config struct {
	Engine   Engine   `toml:"engine" envconfig:"ENGINE"`
	Viewport Viewport `toml:"viewport" envconfig:"VIEWPORT"`
	Feed     Feed     `toml:"feed" envconfig:"FEED"`
	Cache    Cache    `toml:"cache" envconfig:"CACHE"`
	Server   Server   `toml:"server" envconfig:"SERVER"`
	Log      Log      `toml:"log" envconfig:"LOG"`
}

// Engine holds the collage tunables.
type Engine struct {
	Damping            float64       `toml:"damping" envconfig:"DAMPING"`
	MaxStep            float64       `toml:"max_step" envconfig:"MAX_STEP"`
	LabelBuffer        float64       `toml:"label_buffer" envconfig:"LABEL_BUFFER"`
	GrowthSteps        float64       `toml:"growth_steps" envconfig:"GROWTH_STEPS"`
	TargetWidth        float64       `toml:"target_width" envconfig:"TARGET_WIDTH"`
	TargetHeight       float64       `toml:"target_height" envconfig:"TARGET_HEIGHT"`
	SelectPadding      float64       `toml:"select_padding" envconfig:"SELECT_PADDING"`
	TouchSelectPadding float64       `toml:"touch_select_padding" envconfig:"TOUCH_SELECT_PADDING"`
	Stagger            time.Duration `toml:"stagger" envconfig:"STAGGER"`
	FPS                int           `toml:"fps" envconfig:"FPS"`
	Seed               uint64        `toml:"seed" envconfig:"SEED"`
	Touch              bool          `toml:"touch" envconfig:"TOUCH"`
}

// Viewport sizes the headless camera.
type Viewport struct {
	Width          int `toml:"width" envconfig:"WIDTH"`
	Height         int `toml:"height" envconfig:"HEIGHT"`
	AnimationSteps int `toml:"animation_steps" envconfig:"ANIMATION_STEPS"`
}

// Feed selects the record source.
type Feed struct {
	Kind       string `toml:"kind" envconfig:"KIND"`
	Path       string `toml:"path" envconfig:"PATH"`
	URL        string `toml:"url" envconfig:"URL"`
	APIKey     string `toml:"api_key" envconfig:"API_KEY"`
	MongoURI   string `toml:"mongo_uri" envconfig:"MONGO_URI"`
	Database   string `toml:"database" envconfig:"DATABASE"`
	Collection string `toml:"collection" envconfig:"COLLECTION"`
	Limit      int    `toml:"limit" envconfig:"LIMIT"`
}

// Cache selects the cache backend.
type Cache struct {
	Backend  string `toml:"backend" envconfig:"BACKEND"`
	Dir      string `toml:"dir" envconfig:"DIR"`
	RedisURL string `toml:"redis_url" envconfig:"REDIS_URL"`
	Prefix   string `toml:"prefix" envconfig:"PREFIX"`
}

// Server configures collage serve.
type Server struct {
	Addr          string        `toml:"addr" envconfig:"ADDR"`
	LogFile       string        `toml:"log_file" envconfig:"LOG_FILE"`
	LogMaxSizeMB  int           `toml:"log_max_size_mb" envconfig:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int           `toml:"log_max_backups" envconfig:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int           `toml:"log_max_age_days" envconfig:"LOG_MAX_AGE_DAYS"`
	Auto          bool          `toml:"auto" envconfig:"AUTO"`
	AutoInterval  time.Duration `toml:"auto_interval" envconfig:"AUTO_INTERVAL"`
	StreamFPS     int           `toml:"stream_fps" envconfig:"STREAM_FPS"`
}

// Log sets the log level.
type Log struct {
	Level string `toml:"level" envconfig:"LEVEL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: Engine{
			Damping:            collage.DefaultDamping,
			MaxStep:            collage.DefaultMaxStep,
			LabelBuffer:        collage.DefaultLabelBuffer,
			GrowthSteps:        collage.DefaultGrowthSteps,
			TargetWidth:        collage.DefaultTargetSize.W,
			TargetHeight:       collage.DefaultTargetSize.H,
			SelectPadding:      collage.DefaultSelectPadding,
			TouchSelectPadding: collage.DefaultTouchSelectPadding,
			Stagger:            collage.DefaultStagger,
			FPS:                collage.DefaultFrameRate,
			Seed:               collage.DefaultSeed,
		},
		Viewport: Viewport{
			Width:          headless.DefaultWidth,
			Height:         headless.DefaultHeight,
			AnimationSteps: headless.DefaultAnimationSteps,
		},
		Feed: Feed{
			Kind:       FeedDir,
			Path:       ".",
			Database:   "collage",
			Collection: "photos",
			Limit:      10,
		},
		Cache: Cache{
			Backend: CacheFile,
			Prefix:  "collage:",
		},
		Server: Server{
			Addr:          ":8050",
			LogMaxSizeMB:  50,
			LogMaxBackups: 3,
			LogMaxAgeDays: 28,
			AutoInterval:  collage.DefaultAutoInterval,
			StreamFPS:     10,
		},
		Log: Log{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/collage/config.toml, or
// ~/.config/collage/config.toml.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "collage", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "collage", "config.toml")
}

// Load layers the file at path and the environment over the defaults. An
// empty path tries DefaultPath and skips it when missing; an explicit path
// must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			if err := decodeFile(path, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "environment")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	opts := c.CollageOptions(nil)
	if err := opts.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "engine")
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport size must be positive, got %dx%d", c.Viewport.Width, c.Viewport.Height)
	}
	switch c.Feed.Kind {
	case FeedDir, FeedFile:
		if c.Feed.Path == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "feed kind %q needs a path", c.Feed.Kind)
		}
	case FeedHTTP:
		if c.Feed.URL == "" && c.Feed.APIKey == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "http feed needs a url or an api key")
		}
	case FeedMongo:
		if c.Feed.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "mongo feed needs mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown feed kind %q", c.Feed.Kind)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "redis cache needs redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "log level")
	}
	return nil
}

// CollageOptions converts the engine section.
func (c Config) CollageOptions(logger *log.Logger) collage.Options {
	e := c.Engine
	opts := collage.Options{
		Damping:            e.Damping,
		MaxStep:            e.MaxStep,
		LabelBuffer:        e.LabelBuffer,
		GrowthSteps:        e.GrowthSteps,
		TargetSize:         geom.Size{W: e.TargetWidth, H: e.TargetHeight},
		SelectPadding:      e.SelectPadding,
		TouchSelectPadding: e.TouchSelectPadding,
		Stagger:            e.Stagger,
		FrameRate:          e.FPS,
		Seed:               e.Seed,
		Touch:              e.Touch,
		Logger:             logger,
	}
	opts.SetDefaults()
	return opts
}

// ViewportOptions converts the viewport section.
func (c Config) ViewportOptions() headless.Options {
	return headless.Options{
		Width:          c.Viewport.Width,
		Height:         c.Viewport.Height,
		AnimationSteps: c.Viewport.AnimationSteps,
	}
}

// LogLevel returns the parsed log level, or info.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
