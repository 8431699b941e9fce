package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultMatchesEngine(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	opts := cfg.CollageOptions(nil)
	want := collage.DefaultOptions()
	if opts.Damping != want.Damping || opts.MaxStep != want.MaxStep || opts.TargetSize != want.TargetSize ||
		opts.Stagger != want.Stagger || opts.Seed != want.Seed || opts.GrowthSteps != want.GrowthSteps {
		t.Errorf("options = %+v, want %+v", opts, want)
	}
}

func TestLoadLayers(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := writeConfig(t, `
[engine]
damping = 0.5
stagger = "50ms"

[feed]
kind = "http"
url = "http://localhost:8050"

[server]
addr = ":9000"
`)
	t.Setenv("COLLAGE_ENGINE_DAMPING", "0.3")
	t.Setenv("COLLAGE_CACHE_BACKEND", "none")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"env beats file", cfg.Engine.Damping, 0.3},
		{"file beats default", cfg.Engine.Stagger, 50 * time.Millisecond},
		{"file feed", cfg.Feed.Kind, FeedHTTP},
		{"server addr", cfg.Server.Addr, ":9000"},
		{"env cache", cfg.Cache.Backend, CacheNone},
		{"default kept", cfg.Engine.MaxStep, collage.DefaultMaxStep},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadMissingDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Feed.Kind != FeedDir {
		t.Errorf("feed kind = %q", cfg.Feed.Kind)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		code errors.Code
	}{
		{"explicit missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.toml") }, errors.ErrCodeNotFound},
		{"syntax", func(t *testing.T) string { return writeConfig(t, "[engine\n") }, errors.ErrCodeInvalidConfig},
		{"unknown key", func(t *testing.T) string { return writeConfig(t, "[engine]\nspeed = 3\n") }, errors.ErrCodeInvalidConfig},
		{"bad damping", func(t *testing.T) string { return writeConfig(t, "[engine]\ndamping = 2.0\n") }, errors.ErrCodeInvalidConfig},
		{"bad feed", func(t *testing.T) string { return writeConfig(t, "[feed]\nkind = \"ftp\"\n") }, errors.ErrCodeInvalidConfig},
		{"redis without url", func(t *testing.T) string { return writeConfig(t, "[cache]\nbackend = \"redis\"\n") }, errors.ErrCodeInvalidConfig},
		{"mongo without uri", func(t *testing.T) string { return writeConfig(t, "[feed]\nkind = \"mongo\"\n") }, errors.ErrCodeInvalidConfig},
		{"log level", func(t *testing.T) string { return writeConfig(t, "[log]\nlevel = \"loud\"\n") }, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := Default()
	cfg.Engine.Damping = 0.25
	cfg.Feed.Path = "/data/slides"

	var buf bytes.Buffer
	if err := Write(&buf, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(writeConfig(t, buf.String()))
	if err != nil {
		t.Fatalf("reload: %v\n%s", err, buf.String())
	}
	if got.Engine.Damping != 0.25 || got.Feed.Path != "/data/slides" || got.Engine.Stagger != cfg.Engine.Stagger {
		t.Errorf("round trip = %+v", got)
	}
}

func TestViewportOptions(t *testing.T) {
	cfg := Default()
	cfg.Viewport.Width = 640
	if v := cfg.ViewportOptions(); v.Width != 640 || v.Height != cfg.Viewport.Height {
		t.Errorf("viewport = %+v", v)
	}
}
