// Package cronlog adapts slog to the robfig/cron logger interface.
package cronlog

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

type logger struct {
	l *slog.Logger
}

// New returns a cron.Logger that writes to l. Cron's routine Info output goes to debug level.
func New(l *slog.Logger) cron.Logger {
	return &logger{l: l.With("component", "cron")}
}

func (c *logger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c *logger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
