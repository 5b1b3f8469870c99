package mpi

import "go.uber.org/zap"

// Logger provides unstructured debug logging hooks so any backend (or
// none) can be plugged in without this package importing a concrete
// logging library at the call site.
type Logger interface {
	Debugf(format string, args ...any)
}

// StructuredLogger emits key/value pairs, the preferred logging path when
// available; Manager and peerTransport prefer it over Logger.
type StructuredLogger interface {
	Debugw(msg string, keyvals ...any)
}

// noopLogger discards everything; it is the default when no logger is
// configured.
type noopLogger struct{}

func (noopLogger) Debugf(string, ...any)   {}
func (noopLogger) Debugw(string, ...any) {}

// ZapLogger adapts a *zap.SugaredLogger to the Logger/StructuredLogger
// interfaces (zap.SugaredLogger already satisfies Debugw(msg, kv...)
// directly).
type ZapLogger struct {
	S *zap.SugaredLogger
}

// NewZapLogger wraps an existing zap logger for use as a StructuredLogger.
func NewZapLogger(l *zap.Logger) ZapLogger {
	return ZapLogger{S: l.Sugar()}
}

func (z ZapLogger) Debugf(format string, args ...any) {
	z.S.Debugf(format, args...)
}

func (z ZapLogger) Debugw(msg string, keyvals ...any) {
	z.S.Debugw(msg, keyvals...)
}
