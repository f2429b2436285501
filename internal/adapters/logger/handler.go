// Package logger implements a logging adapter using log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/crate/internal/ui/output"
	"go.trai.ch/crate/internal/ui/style"
)

// PrettyHandler is a custom slog.Handler that produces human-readable,
// colored output using the shared UI components. Ungrouped package and target
// attributes label the message as [package:target] instead of trailing it.
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewPrettyHandler creates a new PrettyHandler writing to the provided writer.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level.Level()
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(level)

	return &PrettyHandler{
		out:   output.New(w),
		level: levelVar,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var glyph string
	var color termenv.Color

	switch r.Level {
	case slog.LevelWarn:
		glyph = style.Warning + " "
		color = termenv.RGBColor(string(style.Yellow))
	case slog.LevelError:
		glyph = style.Cross + " "
		color = termenv.RGBColor(string(style.Red))
	default:
		color = termenv.RGBColor(string(style.Slate))
	}
	msg := r.Message

	var subject recordSubject
	attrParts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	add := func(attr slog.Attr) bool {
		if h.group == "" && subject.take(attr) {
			return true
		}
		attrParts = append(attrParts, formatAttr(h.group, attr))
		return true
	}
	for _, attr := range h.attrs {
		add(attr)
	}
	r.Attrs(add)

	if label := subject.String(); label != "" {
		msg = "[" + label + "] " + msg
	}
	if len(attrParts) > 0 {
		msg += " " + strings.Join(attrParts, " ")
	}

	styled := h.out.String(glyph + msg).Foreground(color)
	_, err := h.out.WriteString(styled.String() + "\n")

	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &PrettyHandler{
		out:   h.out,
		level: h.level,
		attrs: newAttrs,
		group: h.group,
	}
}

// WithGroup returns a new Handler with the given group name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return &PrettyHandler{
		out:   h.out,
		level: h.level,
		attrs: h.attrs,
		group: name,
	}
}

// formatAttr formats a single attribute for output.
// If a group is set, the key is prefixed with the group name.
func formatAttr(group string, attr slog.Attr) string {
	key := attr.Key
	if group != "" {
		key = group + "." + key
	}
	return key + "=" + attr.Value.String()
}

// recordSubject collects the package and target a record is about.
type recordSubject struct {
	pkg    string
	target string
}

func (s *recordSubject) take(attr slog.Attr) bool {
	switch attr.Key {
	case "package":
		s.pkg = attr.Value.String()
	case "target":
		s.target = attr.Value.String()
	default:
		return false
	}
	return true
}

func (s recordSubject) String() string {
	switch {
	case s.pkg == "":
		return s.target
	case s.target == "":
		return s.pkg
	default:
		return s.pkg + ":" + s.target
	}
}
