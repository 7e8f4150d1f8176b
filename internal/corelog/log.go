// Package corelog is a small slog-backed logging facade, trimmed down
// from the structured logger used elsewhere in this family of
// repositories. The core never requires a Logger: callers that don't
// configure one get Discard, which drops everything.
package corelog

import (
	"log/slog"
	"os"
)

// Logger writes leveled, structured log entries. Methods take
// alternating key/value pairs, the slog convention.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)

	// With returns a Logger that prepends the given key/value pairs to
	// every subsequent call.
	With(kv ...any) Logger
}

type logger struct {
	inner *slog.Logger
}

// New returns a Logger that writes text-formatted records to os.Stderr,
// tagged with the given component name.
func New(name string) Logger {
	h := slog.NewTextHandler(os.Stderr, nil)
	return &logger{inner: slog.New(h).With("component", name)}
}

func (l *logger) Debug(msg string, kv ...any) { l.inner.Debug(msg, kv...) }
func (l *logger) Info(msg string, kv ...any)  { l.inner.Info(msg, kv...) }
func (l *logger) Warn(msg string, kv ...any)  { l.inner.Warn(msg, kv...) }
func (l *logger) Error(msg string, kv ...any) { l.inner.Error(msg, kv...) }

func (l *logger) With(kv ...any) Logger {
	return &logger{inner: l.inner.With(kv...)}
}

type discard struct{}

func (discard) Debug(string, ...any)  {}
func (discard) Info(string, ...any)   {}
func (discard) Warn(string, ...any)   {}
func (discard) Error(string, ...any)  {}
func (d discard) With(...any) Logger  { return d }

// Discard is a Logger that drops every record. It is the default used
// by a Builder that was not given an explicit Logger.
var Discard Logger = discard{}
