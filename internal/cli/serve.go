package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/config"
	"github.com/matzehuels/collage/pkg/feed"
	"github.com/matzehuels/collage/pkg/server"
	"github.com/matzehuels/collage/pkg/viewport/headless"
)

// serveCommand creates the serve command for the live collage server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		auto     bool
		interval time.Duration
		logFile  string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live collage over HTTP and websockets",
		Long: `Serve a live collage over HTTP and websockets.

The server keeps one collage running at the configured frame rate, loads the
configured feed into it and streams snapshots to websocket clients. Clicks,
hovers, selections and tag searches arrive as websocket messages or POST
requests under /collage.

With --auto the collage drives itself: every interval it selects a random
photo and searches for one of its tags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.Config.Server
			if cmd.Flags().Changed("addr") {
				s.Addr = addr
			}
			if cmd.Flags().Changed("auto") {
				s.Auto = auto
			}
			if cmd.Flags().Changed("interval") {
				s.AutoInterval = interval
			}
			if cmd.Flags().Changed("log-file") {
				s.LogFile = logFile
			}
			return c.runServe(cmd.Context(), s, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&auto, "auto", false, "run the auto-pilot")
	cmd.Flags().DurationVar(&interval, "interval", collage.DefaultAutoInterval, "auto-pilot interval")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write the access log to a rotating file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching of feed responses")

	return cmd
}

// runServe builds the collage, its frame loop and the server, and blocks
// until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, s config.Server, noCache bool) error {
	src, err := c.newSource(ctx, noCache)
	if err != nil {
		return fmt.Errorf("open feed: %w", err)
	}
	defer src.Close(context.Background())

	loop := c.newLoop(src)

	accessLog := c.Logger
	if s.LogFile != "" {
		var closer io.Closer
		accessLog, closer = server.NewFileLogger(server.FileLogOptions{
			Path:       s.LogFile,
			MaxSizeMB:  s.LogMaxSizeMB,
			MaxBackups: s.LogMaxBackups,
			MaxAgeDays: s.LogMaxAgeDays,
			Level:      log.InfoLevel,
		})
		defer closer.Close()
	}

	srv := server.New(loop, src, server.Options{
		Addr:         s.Addr,
		Logger:       c.Logger,
		AccessLog:    accessLog,
		StreamFPS:    s.StreamFPS,
		Auto:         s.Auto,
		AutoInterval: s.AutoInterval,
		Render:       c.pipelineOptions(),
	})

	printInfo("Serving collage on %s", StyleLink.Render("http://"+displayAddr(s.Addr)))
	printKeyValue("Feed", c.Config.Feed.Kind)
	if s.Auto {
		printKeyValue("Auto-pilot", s.AutoInterval.String())
	}
	if s.LogFile != "" {
		printKeyValue("Access log", s.LogFile)
	}
	printNextStep("Open the stream", "ws://"+displayAddr(s.Addr)+"/collage/ws")

	err = srv.Run(ctx)
	if ctx.Err() != nil {
		printNewline()
		printSuccess("Server stopped")
		return nil
	}
	return err
}

// newLoop builds a collage over a headless viewport with the configured
// engine options. Tag searches go to src.
func (c *CLI) newLoop(src feed.Source) *collage.Loop {
	vp := headless.New(c.Config.ViewportOptions())
	col := collage.New(vp, nil, c.Config.CollageOptions(c.Logger))
	return collage.NewLoop(col, feed.NewFinder(src, c.Config.Feed.Limit))
}

// displayAddr turns a listen address into something a browser can open.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
