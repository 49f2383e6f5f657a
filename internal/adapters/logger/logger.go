// Package logger implements ports.Logger on log/slog.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/zerr"
)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	output   io.Writer
	jsonMode bool
}

// New creates a Logger writing human-readable output to stderr.
func New() *Logger {
	l := &Logger{}
	l.SetOutput(os.Stderr)
	return l
}

// SetOutput redirects the logger to w, keeping the current format. A nil w means stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON and pretty output.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jsonMode = enable
	l.rebuild()
}

func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if l.jsonMode {
		l.logger = slog.New(slog.NewJSONHandler(l.output, opts))
		return
	}
	l.logger = slog.New(NewPrettyHandler(l.output, opts))
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

// Error logs err. In JSON mode the metadata of the error chain becomes structured fields.
// Otherwise the chain is printed one cause per line followed by its metadata.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		zerr.Log(context.Background(), l.logger, err)
		return
	}
	l.logger.Error(formatChain(err))
}

// formatChain renders the messages of a zerr chain from outermost to innermost.
func formatChain(err error) string {
	var lines []string
	var meta []string
	for current := err; current != nil; {
		msg := current.Error()
		var z *zerr.Error
		if errors.As(current, &z) && z == current {
			msg = z.Message()
			md := z.Metadata()
			for _, k := range slices.Sorted(maps.Keys(md)) {
				meta = append(meta, fmt.Sprintf("%s=%v", k, md[k]))
			}
		}
		if msg != "" {
			if len(lines) == 0 {
				lines = append(lines, "Error: "+msg)
			} else {
				if len(lines) == 1 {
					lines = append(lines, "  Caused by:")
				}
				lines = append(lines, "    -> "+msg)
			}
		}
		if z == nil || z != current {
			break
		}
		current = errors.Unwrap(current)
	}
	if len(meta) > 0 {
		lines = append(lines, "  "+strings.Join(meta, " "))
	}
	return strings.Join(lines, "\n")
}
