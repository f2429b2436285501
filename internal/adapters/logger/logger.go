// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/crate/internal/core/ports"
)

// messager describes an error that can report its own message without the chain.
// zerr.Error and domain.BuildError both satisfy it.
type messager interface {
	Message() string
}

// metadataCarrier describes an error that carries structured context,
// such as the offending package, target or channel.
type metadataCarrier interface {
	Metadata() map[string]any
}

// errorEntry is one link of an error chain as presented to the user.
type errorEntry struct {
	Message  string
	Metadata map[string]any
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	jsonMode bool
	output   io.Writer
}

// New creates a new Logger writing pretty output to stderr.
func New() ports.Logger {
	return &Logger{
		logger: slog.New(newHandler(os.Stderr, false)),
		output: os.Stderr,
	}
}

func newHandler(w io.Writer, jsonMode bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if jsonMode {
		return slog.NewJSONHandler(w, opts)
	}
	return NewPrettyHandler(w, opts)
}

// SetOutput updates the logger's output destination, keeping the current mode.
// A nil writer selects os.Stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.logger = slog.New(newHandler(w, l.jsonMode))
}

// SetJSON switches between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	w := l.output
	if w == nil {
		w = os.Stderr
	}
	l.logger = slog.New(newHandler(w, enable))
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs err together with its cause chain and attached context.
func (l *Logger) Error(err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err == nil {
		return
	}

	entries := collectErrorEntries(err)

	if l.jsonMode {
		attrs := []any{"error", err.Error()}
		for _, e := range entries {
			for _, k := range sortedKeys(e.Metadata) {
				attrs = append(attrs, k, e.Metadata[k])
			}
		}
		l.logger.Error("operation failed", attrs...)
		return
	}

	var subject []any
	if len(entries) > 0 {
		subject, entries[0].Metadata = liftSubject(entries[0].Metadata)
	}
	l.logger.Error(formatErrorEntries(entries), subject...)
}

// liftSubject moves the package and target of a headline into log attributes,
// which the pretty handler shows as the message label.
func liftSubject(meta map[string]any) ([]any, map[string]any) {
	var attrs []any
	rest := make(map[string]any, len(meta))
	for _, k := range sortedKeys(meta) {
		if k == "package" || k == "target" {
			attrs = append(attrs, k, fmt.Sprint(meta[k]))
			continue
		}
		rest[k] = meta[k]
	}
	return attrs, rest
}

// collectErrorEntries walks the error chain. Links without a message of their
// own (metadata-only wrappers) fold their context into the nearest visible link.
func collectErrorEntries(err error) []errorEntry {
	var entries []errorEntry
	var pending map[string]any

	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			entries = append(entries, errorEntry{Message: current.Error(), Metadata: pending})
			pending = nil
			break
		}

		var meta map[string]any
		if c, ok := current.(metadataCarrier); ok {
			meta = c.Metadata()
		}

		if m.Message() == "" {
			pending = mergeMetadata(pending, meta)
		} else {
			entries = append(entries, errorEntry{Message: m.Message(), Metadata: mergeMetadata(pending, meta)})
			pending = nil
		}
		current = errors.Unwrap(current)
	}

	if len(pending) > 0 && len(entries) > 0 {
		last := &entries[len(entries)-1]
		last.Metadata = mergeMetadata(last.Metadata, pending)
	}
	return entries
}

func mergeMetadata(a, b map[string]any) map[string]any {
	if len(a) == 0 {
		return b
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// formatErrorEntries renders entries as a headline followed by an indented cause list.
func formatErrorEntries(entries []errorEntry) string {
	var lines []string

	for i, e := range entries {
		msgLines := strings.Split(e.Message, "\n")

		head, body := "    → ", "      "
		if i == 0 {
			head, body = "Error: ", "       "
		} else if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}

		lines = append(lines, head+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, body+line)
		}
		for _, k := range sortedKeys(e.Metadata) {
			lines = append(lines, fmt.Sprintf("%s%s: %v", body, k, e.Metadata[k]))
		}
	}

	return strings.Join(lines, "\n")
}
