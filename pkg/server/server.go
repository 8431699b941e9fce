package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/feed"
	"github.com/matzehuels/collage/pkg/geom"
	"github.com/matzehuels/collage/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address.
	DefaultAddr = ":8050"

	// DefaultStreamFPS is the websocket snapshot rate.
	DefaultStreamFPS = 10

	shutdownTimeout = 10 * time.Second
	readTimeout     = 15 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 60 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr string

	// Logger receives lifecycle messages. AccessLog receives one line per
	// request and defaults to Logger.
	Logger    *log.Logger
	AccessLog *log.Logger

	StreamFPS int

	// Auto starts the auto-pilot, selecting a random item and searching one
	// of its tags every AutoInterval.
	Auto         bool
	AutoInterval time.Duration

	// Render controls snapshot routes (width, labels, images).
	Render pipeline.Options

	// OriginPatterns are extra hosts allowed to open the websocket.
	OriginPatterns []string
}

func (o *Options) setDefaults() {
	if o.Addr == "" {
		o.Addr = DefaultAddr
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.AccessLog == nil {
		o.AccessLog = o.Logger
	}
	if o.StreamFPS <= 0 {
		o.StreamFPS = DefaultStreamFPS
	}
	if o.AutoInterval <= 0 {
		o.AutoInterval = collage.DefaultAutoInterval
	}
}

// Server serves one collage.
type Server struct {
	opts   Options
	loop   *collage.Loop
	src    feed.Source
	hub    *hub
	router chi.Router
	logger *log.Logger
}

// New builds a server around loop. src backs the feed route and the initial
// load and may be nil.
func New(loop *collage.Loop, src feed.Source, opts Options) *Server {
	opts.setDefaults()
	s := &Server{
		opts:   opts,
		loop:   loop,
		src:    src,
		hub:    newHub(opts.Logger),
		logger: opts.Logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.opts.AccessLog))

	r.Get("/healthz", s.handleHealth)
	r.Get("/wsickr/get_list.json", s.handleList)

	r.Route("/collage", func(r chi.Router) {
		r.Get("/snapshot.{format}", s.handleSnapshot)
		r.Get("/overlaps.svg", s.handleOverlaps)
		r.Post("/click", s.handleClick)
		r.Post("/hover", s.handleHover)
		r.Post("/select", s.handleSelect)
		r.Post("/tag", s.handleTag)
		r.Post("/zoom", s.handleZoom)
		r.Get("/ws", s.handleWS)
	})
	return r
}

// Run loads the initial feed, drives the frame loop, streams snapshots and
// serves HTTP until ctx is cancelled. The server shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.loop.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.stream(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		s.logger.Info("server starting", "addr", s.opts.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if err := s.LoadInitial(ctx); err != nil {
		s.logger.Warn("initial load", "err", err)
	}
	if s.opts.Auto {
		s.loop.StartAuto(ctx, s.opts.AutoInterval)
	}
	return g.Wait()
}

// LoadInitial lists the feed and loads it into the collage around the
// camera center.
func (s *Server) LoadInitial(ctx context.Context) error {
	if s.src == nil {
		return nil
	}
	recs, err := s.src.List(ctx)
	if err != nil {
		return err
	}
	ds := feed.Descriptors(recs)
	var center geom.Point
	if err := s.loop.Call(ctx, func(c *collage.Collage) { center = c.Viewport().Bounds(false).Center() }); err != nil {
		return err
	}
	s.loop.Load(ctx, ds, center, func(rep collage.BatchReport) {
		s.logger.Info("feed loaded", "loaded", rep.Loaded, "rejected", rep.Rejected)
	})
	return nil
}

// snapshot copies the scene on the loop goroutine.
func (s *Server) snapshot(ctx context.Context) (collage.Snapshot, error) {
	var snap collage.Snapshot
	err := s.loop.Call(ctx, func(c *collage.Collage) { snap = c.Snapshot() })
	return snap, err
}
