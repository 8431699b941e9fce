package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  string
	}{
		{"feed opened at info", log.InfoLevel, func(l *log.Logger) { l.Info("feed opened", "kind", "dir") }, "feed opened"},
		{"batch debug hidden at info", log.InfoLevel, func(l *log.Logger) { l.Debug("batch finished", "loaded", 3) }, ""},
		{"batch debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("batch finished", "loaded", 3) }, "loaded=3"},
		{"rejection warning at error", log.ErrorLevel, func(l *log.Logger) { l.Warn("record rejected", "id", "slide-1") }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if tt.want == "" {
				if buf.Len() != 0 {
					t.Errorf("unexpected output %q", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q missing %q", buf.String(), tt.want)
			}
		})
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("serving")
	if !regexp.MustCompile(`^\d\d:\d\d:\d\d\.\d\d `).MatchString(buf.String()) {
		t.Errorf("line %q does not start with HH:MM:SS.cc", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Settled 6 photos")
	if !regexp.MustCompile(`Settled 6 photos \(\d+(\.\d+)?[µnm]?s\)`).MatchString(buf.String()) {
		t.Errorf("progress line = %q", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should fall back to the default logger")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), l)
	if loggerFromContext(ctx) != l {
		t.Fatal("attached logger not returned")
	}
	loggerFromContext(ctx).Info("cache cleared", "entries", 4)
	if !strings.Contains(buf.String(), "entries=4") {
		t.Errorf("output = %q", buf.String())
	}
}
