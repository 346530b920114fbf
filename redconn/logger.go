package redconn

import "go.uber.org/zap"

// Logger is the pluggable sink for the client's own diagnostic events:
// reconnect attempts and their outcome, failed background pings, and the
// name (and key, when it has one) of a command whose exchange broke the
// connection. Pub/sub mode transitions and ordinary command traffic are
// not logged.
type Logger interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
}

// zapLogger adapts a *zap.SugaredLogger to Logger. It's the default used
// when Opts.Logger is left nil.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger wraps z as a Logger.
func NewZapLogger(z *zap.Logger) Logger {
	return &zapLogger{s: z.Sugar()}
}

func (l *zapLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l *zapLogger) Info(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
func (l *zapLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l *zapLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }

// nopLogger discards everything. Used when zap construction itself fails,
// which should not be possible for zap.NewProduction but is handled
// defensively at the one call site that constructs the default.
type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func defaultLogger() Logger {
	z, err := zap.NewProduction()
	if err != nil {
		return nopLogger{}
	}
	return NewZapLogger(z)
}
