// Package cli implements the panels command-line interface.
//
// The commands manage saved workspaces, render them as text previews or
// adjacency graphs, serve the HTTP API over a live store, and open the
// interactive terminal editor. The CLI is built using cobra; settings come
// from internal/config and logging uses charmbracelet/log.
//
// # Commands
//
//   - workspace: List, show, delete, export and import saved workspaces
//   - preview: Draw a workspace as boxes in the terminal
//   - graph: Export the panel adjacency graph as DOT, SVG, PDF or PNG
//   - serve: Run the HTTP API
//   - edit: Open the interactive editor
//   - config: Print, create or show the config file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging; log.level in
// the config file can also lower the threshold. Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with the elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Rendered graph (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
