// Package rlog is rstracer's structured logger, a thin zerolog wrapper in
// the style of cuemby/warren's pkg/log.
package rlog

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Options configures the logger. Level is one of TRACE, DEBUG, INFO, WARN,
// ERROR (case-insensitive). Output, when nil, defaults to stderr.
type Options struct {
	Level  string
	Output io.Writer
}

// Logger wraps a zerolog.Logger and adds the With* component-scoping helpers
// the teacher's log package offers.
type Logger struct {
	zerolog.Logger
}

// New builds a Logger from Options.
func New(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := parseLevel(opts.Level)
	base := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return Logger{Logger: base}
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO", "":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithComponent scopes subsequent log lines to a named component, e.g. the
// adapter or task emitting them.
func (l Logger) WithComponent(name string) Logger {
	return Logger{Logger: l.Logger.With().Str("component", name).Logger()}
}

// WithTask scopes subsequent log lines to a named scheduled task.
func (l Logger) WithTask(name string) Logger {
	return Logger{Logger: l.Logger.With().Str("task", name).Logger()}
}

// WithRunID tags every subsequent log line with the process's ingester run
// id, for correlating log lines with a particular rstracer.db across
// restarts.
func (l Logger) WithRunID(id string) Logger {
	return Logger{Logger: l.Logger.With().Str("run_id", id).Logger()}
}
