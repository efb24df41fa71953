package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// levelTip sits between info and warn so tips reach the console with their own prefix
const levelTip = slog.LevelInfo + 2

var consolePrefixes = map[slog.Level]string{
	levelTip:        "💡 ",
	slog.LevelWarn:  "⚠️  ",
	slog.LevelError: "❌ ",
}

// consoleHandler prints bare messages. Debug records only pass when DEBUG is set.
type consoleHandler struct {
	writer io.Writer
	debug  bool
	quiet  *atomic.Bool
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level > slog.LevelDebug || h.debug
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if h.quiet.Load() {
		return nil
	}
	_, err := fmt.Fprintln(h.writer, consolePrefixes[record.Level]+record.Message)
	return err
}

func (h *consoleHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *consoleHandler) WithGroup(string) slog.Handler      { return h }

// fanout hands each record to every handler that accepts its level
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// newRotatingFile opens the log file with rotation limits, each of which can
// be overridden through SNIFFER_LOG_MAX_SIZE (MB), SNIFFER_LOG_MAX_BACKUPS and
// SNIFFER_LOG_MAX_AGE (days).
func newRotatingFile(path string) *lumberjack.Logger {
	file := &lumberjack.Logger{Filename: path, MaxSize: 1, MaxBackups: 2, MaxAge: 30}
	for _, limit := range []struct {
		env   string
		min   int
		value *int
	}{
		{"SNIFFER_LOG_MAX_SIZE", 1, &file.MaxSize},
		{"SNIFFER_LOG_MAX_BACKUPS", 0, &file.MaxBackups},
		{"SNIFFER_LOG_MAX_AGE", 1, &file.MaxAge},
	} {
		if n, err := strconv.Atoi(os.Getenv(limit.env)); err == nil && n >= limit.min {
			*limit.value = n
		}
	}
	return file
}

func fileAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		return slog.String(a.Key, a.Value.Time().Format("2006-01-02 15:04:05.000"))
	case slog.LevelKey:
		if level, ok := a.Value.Any().(slog.Level); ok && level == levelTip {
			return slog.String(a.Key, "TIP")
		}
	}
	return a
}

// Splog is the run log: short messages on the console, and every message,
// debug included, with timestamps in an optional rotating log file.
type Splog struct {
	logger *slog.Logger
	writer io.Writer
	file   io.Closer
	quiet  atomic.Bool
}

// NewSplog logs to writer and, when logFilePath is not empty, to that file
func NewSplog(writer io.Writer, logFilePath string) (*Splog, error) {
	splog := &Splog{writer: writer}
	handlers := fanout{&consoleHandler{
		writer: writer,
		debug:  os.Getenv("DEBUG") != "",
		quiet:  &splog.quiet,
	}}

	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file := newRotatingFile(logFilePath)
		splog.file = file
		handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{
			Level:       slog.LevelDebug,
			ReplaceAttr: fileAttr,
		}))
	}

	splog.logger = slog.New(handlers)
	return splog, nil
}

// SetQuiet silences the console while a progress display owns the terminal.
// The log file keeps receiving messages.
func (s *Splog) SetQuiet(quiet bool) {
	s.quiet.Store(quiet)
}

func (s *Splog) log(level slog.Level, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	s.logger.Log(context.Background(), level, msg)
}

// Info writes an info message
func (s *Splog) Info(format string, args ...interface{}) { s.log(slog.LevelInfo, format, args) }

// Warn writes a warning
func (s *Splog) Warn(format string, args ...interface{}) { s.log(slog.LevelWarn, format, args) }

// Error writes an error
func (s *Splog) Error(format string, args ...interface{}) { s.log(slog.LevelError, format, args) }

// Debug writes a message that only shows on the console when DEBUG is set
func (s *Splog) Debug(format string, args ...interface{}) { s.log(slog.LevelDebug, format, args) }

// Tip writes a hint for the user
func (s *Splog) Tip(format string, args ...interface{}) { s.log(levelTip, format, args) }

// Newline writes an empty console line
func (s *Splog) Newline() {
	if s.quiet.Load() {
		return
	}
	_, _ = fmt.Fprintln(s.writer)
}

// Close closes the log file if one was opened
func (s *Splog) Close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
