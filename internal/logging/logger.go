// Package logging wraps the standard logger with levels and a rotating file sink.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/naka-gawa/github-trending/internal/config"
	"github.com/rotisserie/eris"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level orders log severities.
type Level int

// Severities from most to least verbose.
const (
	// LevelDebug covers retries, shared runs and other detail.
	LevelDebug Level = iota
	// LevelInfo covers the normal progress of a run.
	LevelInfo
	// LevelWarn covers degraded but recoverable outcomes.
	LevelWarn
	// LevelError covers failed operations.
	LevelError
)

// ParseLevel accepts the usual names in any case. Unknown names map to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "TRACE":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR", "CRITICAL":
		return LevelError
	default:
		return LevelInfo
	}
}

// String returns the upper-case name used as the entry prefix.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Logger is a leveled front for *log.Logger.
type Logger struct {
	base  *log.Logger
	level Level
}

// New creates a Logger writing entries at or above level to w.
func New(w io.Writer, level Level) *Logger {
	return &Logger{base: log.New(w, "", log.LstdFlags), level: level}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return &Logger{base: log.New(io.Discard, "", 0), level: LevelError + 1}
}

// Writer exposes the underlying destination, e.g. for HTTP access logs.
func (l *Logger) Writer() io.Writer {
	return l.base.Writer()
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if level < l.level {
		return
	}
	l.base.Output(3, fmt.Sprintf("["+level.String()+"] "+format, args...))
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) { l.logf(LevelInfo, format, args...) }

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...any) { l.logf(LevelWarn, format, args...) }

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

// Setup builds the process logger from the logging settings. Entries go to the log
// file (when configured) and, if verbose, to stderr as well. The returned closer
// releases the file.
func Setup(s config.LoggingSettings, verbose bool) (*Logger, io.Closer, error) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if s.File != "" {
		if err := os.MkdirAll(filepath.Dir(s.File), 0755); err != nil {
			return nil, nil, eris.Wrapf(err, "failed to create log directory for %s", s.File)
		}
		sink := &lumberjack.Logger{
			Filename: s.File,
			MaxSize:  parseQuantity(s.Rotation, "mb", 10),
			MaxAge:   parseQuantity(s.Retention, "day", 30),
		}
		writers = append(writers, sink)
		closer = sink
	}
	if verbose {
		writers = append(writers, os.Stderr)
	}
	if len(writers) == 0 {
		return Discard(), closer, nil
	}
	return New(io.MultiWriter(writers...), ParseLevel(s.Level)), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// parseQuantity reads values like "10 MB" or "30 days". Anything whose unit does not
// start with unit falls back to def.
func parseQuantity(s, unit string, def int) int {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return def
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return def
	}
	if len(fields) > 1 && !strings.HasPrefix(fields[1], unit) {
		return def
	}
	return n
}
