// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/holiman/uint256"
)

const (
	timeFormat     = "2006-01-02T15:04:05-0700"
	termTimeFormat = "Jan 02 15:04:05"
)

type discardHandler struct{}

// DiscardHandler returns a no-op handler
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

func (h *discardHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

func (h *discardHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

func (h *discardHandler) WithGroup(_ string) slog.Handler {
	panic("not implemented")
}

func (h *discardHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return &discardHandler{}
}

// TerminalHandler formats records for human readability on a terminal:
//
//	[LEVEL] [TIME] MESSAGE key=value key=value ...
type TerminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	lvl      *slog.LevelVar
	useColor bool
	attrs    []slog.Attr

	buf []byte
}

// NewTerminalHandler returns a handler which formats log records at all levels
// optimized for human readability on a terminal, with color-coded level output.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	var level slog.LevelVar
	level.Set(levelMaxVerbosity)
	return NewTerminalHandlerWithLevel(wr, &level, useColor)
}

// NewTerminalHandlerWithLevel returns the same handler as NewTerminalHandler but only outputs
// records which are less than or equal to the specified verbosity level.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl *slog.LevelVar, useColor bool) *TerminalHandler {
	return &TerminalHandler{
		wr:       wr,
		lvl:      lvl,
		useColor: useColor,
	}
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf := h.format(h.buf, r)
	h.wr.Write(buf)
	h.buf = buf[:0]
	return nil
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level.Level() >= h.lvl.Level()
}

func (h *TerminalHandler) WithGroup(_ string) slog.Handler {
	panic("not implemented")
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		wr:       h.wr,
		lvl:      h.lvl,
		useColor: h.useColor,
		attrs:    append(h.attrs, attrs...),
	}
}

func (h *TerminalHandler) format(buf []byte, r slog.Record) []byte {
	label, color := levelLabel(r.Level)
	if h.useColor && color != "" {
		buf = append(buf, fmt.Sprintf("\x1b[%sm%s\x1b[0m", color, label)...)
	} else {
		buf = append(buf, label...)
	}
	buf = append(buf, " ["...)
	buf = append(buf, r.Time.Format(termTimeFormat)...)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)

	for _, attr := range h.attrs {
		buf = appendAttr(buf, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		buf = appendAttr(buf, attr)
		return true
	})
	return append(buf, '\n')
}

func appendAttr(buf []byte, attr slog.Attr) []byte {
	attr = builtinReplace(nil, attr, true)
	buf = append(buf, ' ')
	buf = append(buf, attr.Key...)
	buf = append(buf, '=')
	val := attr.Value.String()
	if needsQuoting(val) {
		return strconv.AppendQuote(buf, val)
	}
	return append(buf, val...)
}

func needsQuoting(s string) bool {
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}

func levelLabel(l slog.Level) (label, color string) {
	switch l {
	case LevelCrit:
		return "[CRIT]", "35"
	case LevelError:
		return "[EROR]", "31"
	case LevelWarn:
		return "[WARN]", "33"
	case LevelInfo:
		return "[INFO]", "32"
	case LevelDebug:
		return "[DBUG]", "36"
	case LevelTrace:
		return "[TRCE]", "34"
	default:
		return "[UNKN]", ""
	}
}

type leveler struct{ minLevel *slog.LevelVar }

func (l *leveler) Level() slog.Level {
	return l.minLevel.Level()
}

// JSONHandler returns a handler which prints records in JSON format.
func JSONHandler(wr io.Writer) slog.Handler {
	var level slog.LevelVar
	level.Set(levelMaxVerbosity)
	return JSONHandlerWithLevel(wr, &level)
}

// JSONHandlerWithLevel returns a handler which prints records in JSON format that are less than or equal to
// the specified verbosity level.
func JSONHandlerWithLevel(wr io.Writer, level *slog.LevelVar) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: builtinReplaceJSON,
		Level:       &leveler{level},
	})
}

// LogfmtHandler returns a handler which prints records in logfmt format, an easy machine-parseable but human-readable
// format for key/value pairs.
func LogfmtHandler(wr io.Writer) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: builtinReplaceLogfmt,
	})
}

// LogfmtHandlerWithLevel returns the same handler as LogfmtHandler but it only outputs
// records which are less than or equal to the specified verbosity level.
func LogfmtHandlerWithLevel(wr io.Writer, level *slog.LevelVar) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: builtinReplaceLogfmt,
		Level:       &leveler{level},
	})
}

func builtinReplaceLogfmt(_ []string, attr slog.Attr) slog.Attr {
	return builtinReplace(nil, attr, true)
}

func builtinReplaceJSON(_ []string, attr slog.Attr) slog.Attr {
	return builtinReplace(nil, attr, false)
}

func builtinReplace(_ []string, attr slog.Attr, logfmt bool) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() == slog.KindTime {
			if logfmt {
				return slog.String("t", attr.Value.Time().Format(timeFormat))
			}
			return slog.Attr{Key: "t", Value: attr.Value}
		}
	case slog.LevelKey:
		if l, ok := attr.Value.Any().(slog.Level); ok {
			attr = slog.Any("lvl", LevelString(l))
			return attr
		}
	}

	switch v := attr.Value.Any().(type) {
	case time.Time:
		if logfmt {
			attr = slog.String(attr.Key, v.Format(timeFormat))
		}
	case *big.Int:
		if v == nil {
			attr.Value = slog.StringValue("<nil>")
		} else {
			attr.Value = slog.StringValue(v.String())
		}
	case *uint256.Int:
		if v == nil {
			attr.Value = slog.StringValue("<nil>")
		} else {
			attr.Value = slog.StringValue(v.Dec())
		}
	case fmt.Stringer:
		if v == nil || (reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil()) {
			attr.Value = slog.StringValue("<nil>")
		} else {
			attr.Value = slog.StringValue(v.String())
		}
	}
	return attr
}
