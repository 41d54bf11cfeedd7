// Package logging builds the slog logger used by the command line.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

// New returns a logger writing one line per record to w.
func New(w io.Writer, level slog.Level, noColor bool) *slog.Logger {
	return slog.New(NewConsoleHandler(w, level, noColor))
}

// ConsoleHandler prints compact, optionally colored lines:
//
//	15:04:05.000 INFO: prizes loaded count=3 dir=img
type ConsoleHandler struct {
	mu      *sync.Mutex
	w       io.Writer
	level   slog.Level
	noColor bool
	attrs   []slog.Attr
	group   string
}

// NewConsoleHandler creates a ConsoleHandler.
func NewConsoleHandler(w io.Writer, level slog.Level, noColor bool) *ConsoleHandler {
	return &ConsoleHandler{mu: &sync.Mutex{}, w: w, level: level, noColor: noColor}
}

// Enabled implements slog.Handler.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	if !r.Time.IsZero() {
		b.WriteString(r.Time.Format("15:04:05.000"))
		b.WriteByte(' ')
	}
	b.WriteString(h.paint(levelColor(r.Level), r.Level.String()+":"))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		h.writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		h.writeAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs implements slog.Handler.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

// WithGroup implements slog.Handler.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func (h *ConsoleHandler) writeAttr(b *strings.Builder, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	b.WriteByte(' ')
	b.WriteString(h.paint(color.New(color.FgGreen), a.Key))
	b.WriteByte('=')
	b.WriteString(a.Value.String())
}

func (h *ConsoleHandler) paint(c *color.Color, s string) string {
	if h.noColor {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

func levelColor(level slog.Level) *color.Color {
	switch {
	case level >= slog.LevelError:
		return color.New(color.FgRed)
	case level >= slog.LevelWarn:
		return color.New(color.FgYellow)
	case level >= slog.LevelInfo:
		return color.New(color.FgHiBlue)
	default:
		return color.New(color.FgMagenta)
	}
}
