// Package log provides the structured logger used throughout the cmpp30
// client: a thin wrapper around go-kit/log so session, codec and CLI code
// all emit the same JSON shape.
package log

import (
	"io"

	kitlog "github.com/go-kit/kit/log"
)

// Logger is the logging API the session engine and its collaborators depend
// on. Implementations must be safe for concurrent use: the session loop and
// the inbound dispatcher both log from separate goroutines.
type Logger interface {
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

var _ Logger = (*logger)(nil)

type logger struct {
	kit kitlog.Logger
}

// New returns a Logger that writes newline-delimited JSON to out, one object
// per call, with a "ts" field set to the current UTC time.
func New(out io.Writer) Logger {
	l := kitlog.NewJSONLogger(kitlog.NewSyncWriter(out))
	l = kitlog.With(l, "ts", kitlog.DefaultTimestampUTC)
	return &logger{kit: l}
}

func (l *logger) Info(msg string, kv ...any) {
	l.log("info", msg, kv...)
}

func (l *logger) Warn(msg string, kv ...any) {
	l.log("warn", msg, kv...)
}

func (l *logger) Error(msg string, kv ...any) {
	l.log("error", msg, kv...)
}

func (l *logger) log(level, msg string, kv ...any) {
	args := make([]any, 0, 4+len(kv))
	args = append(args, "level", level, "message", msg)
	args = append(args, kv...)
	_ = l.kit.Log(args...)
}

// Nop returns a Logger that discards everything. Used as the default when a
// session.Client is constructed without WithLogger.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
