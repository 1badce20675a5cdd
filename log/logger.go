// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"math"
	"os"
	"sync/atomic"
	"time"
)

const (
	LevelTrace slog.Level = slog.LevelDebug - 4
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = slog.LevelError + 4

	// levelMaxVerbosity enables all records regardless of level.
	levelMaxVerbosity slog.Level = math.MinInt
)

// Legacy level values, kept for the numeric -verbosity flag (log15 numbering).
const (
	LegacyLevelCrit = iota
	LegacyLevelError
	LegacyLevelWarn
	LegacyLevelInfo
	LegacyLevelDebug
	LegacyLevelTrace
)

// FromLegacyLevel converts a legacy verbosity number to a slog level.
func FromLegacyLevel(lvl int) slog.Level {
	switch lvl {
	case LegacyLevelCrit:
		return LevelCrit
	case LegacyLevelError:
		return LevelError
	case LegacyLevelWarn:
		return LevelWarn
	case LegacyLevelInfo:
		return LevelInfo
	case LegacyLevelDebug:
		return LevelDebug
	case LegacyLevelTrace:
		return LevelTrace
	default:
		return LevelTrace
	}
}

// LevelString returns a short name for the given level.
func LevelString(l slog.Level) string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelCrit:
		return "crit"
	default:
		return "unknown"
	}
}

// Logger writes key/value pairs to a slog.Handler.
type Logger interface {
	// With returns a new Logger that has this logger's attributes plus ctx.
	With(ctx ...any) Logger

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)

	// Crit logs at the crit level and exits the process.
	Crit(msg string, ctx ...any)

	// Handler returns the underlying handler.
	Handler() slog.Handler
}

type logger struct {
	inner *slog.Logger
}

// NewLogger returns a Logger backed by the given handler.
func NewLogger(h slog.Handler) Logger {
	return &logger{slog.New(h)}
}

func (l *logger) write(level slog.Level, msg string, attrs ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.Add(attrs...)
	l.inner.Handler().Handle(context.Background(), r)
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx...) }

func (l *logger) Crit(msg string, ctx ...any) {
	l.write(LevelCrit, msg, ctx...)
	os.Exit(1)
}

func (l *logger) Handler() slog.Handler {
	return l.inner.Handler()
}

var root atomic.Value

func init() {
	root.Store(&logger{slog.New(LogfmtHandler(os.Stderr))})
}

// SetDefault sets the default global logger.
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the root logger.
func Root() Logger {
	return root.Load().(Logger)
}

// WithContext returns a logger derived from the root logger carrying the
// given attributes. Packages use it to declare their own logger:
//
//	var logger = log.WithContext("pkg", "staking")
func WithContext(ctx ...any) Logger {
	return Root().With(ctx...)
}

func Trace(msg string, ctx ...any) { Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { Root().Crit(msg, ctx...) }
