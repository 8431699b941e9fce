package server

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/observability"
)

var (
	errInvalidFactor = errors.New(errors.ErrCodeInvalidInput, "factor must be a positive number")
	errMissingText   = errors.New(errors.ErrCodeInvalidInput, "text is required")
)

func errUnknownMessage(kind string) error {
	return errors.New(errors.ErrCodeUnsupported, "unknown message type %q", kind)
}

// FileLogOptions configures NewFileLogger.
type FileLogOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Level      log.Level
}

// NewFileLogger returns a logger writing JSON lines to a rotating file. Close
// the returned closer on shutdown.
func NewFileLogger(opts FileLogOptions) (*log.Logger, io.Closer) {
	w := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       log.JSONFormatter,
	})
	return logger, w
}

// requestLogger logs one line per request and fires the HTTP hooks.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			observability.HTTP().OnRequest(ctx, r.Method, r.Host, r.URL.Path)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			dur := time.Since(start)
			observability.HTTP().OnResponse(ctx, r.Method, r.Host, r.URL.Path, status, dur)

			logFn := logger.Info
			if status >= http.StatusInternalServerError {
				logFn = logger.Error
			} else if r.URL.Path == "/healthz" {
				logFn = logger.Debug
			}
			logFn("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", dur,
				"request_id", middleware.GetReqID(ctx))
		})
	}
}
