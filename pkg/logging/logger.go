package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// LogLevel defines the severity of the message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// Logger interface defines structured logging operations.
// Every method takes a message followed by alternating key/value pairs.
//
//go:generate mockery --name=Logger --output=./mocks
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	With(keysAndValues ...any) Logger
	SetOutput(w io.Writer)
	SetLevel(level LogLevel)
}

// DefaultLogger provides a zap backed implementation emitting JSON lines
type DefaultLogger struct {
	sugar  *zap.SugaredLogger
	level  zap.AtomicLevel
	fields []any
}

// NewDefaultLogger creates a new logger instance writing to stdout
func NewDefaultLogger() *DefaultLogger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	return &DefaultLogger{
		sugar: zap.New(newCore(os.Stdout, level)).Sugar(),
		level: level,
	}
}

// NewMockLogger returns a logger that discards everything, for tests
func NewMockLogger() *DefaultLogger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	return &DefaultLogger{
		sugar: zap.NewNop().Sugar(),
		level: level,
	}
}

// NewObservedLogger returns a logger whose entries can be inspected in tests
func NewObservedLogger(level LogLevel) (*DefaultLogger, *observer.ObservedLogs) {
	atomic := zap.NewAtomicLevelAt(toZapLevel(level))
	core, logs := observer.New(atomic)
	return &DefaultLogger{
		sugar: zap.New(core).Sugar(),
		level: atomic,
	}, logs
}

func newCore(w io.Writer, level zap.AtomicLevel) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), level)
}

// Debug logs debug messages
func (l *DefaultLogger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs informational messages
func (l *DefaultLogger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs warning messages
func (l *DefaultLogger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs error messages
func (l *DefaultLogger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// With returns a child logger that adds the given fields to every entry
func (l *DefaultLogger) With(keysAndValues ...any) Logger {
	fields := make([]any, 0, len(l.fields)+len(keysAndValues))
	fields = append(fields, l.fields...)
	fields = append(fields, keysAndValues...)
	return &DefaultLogger{
		sugar:  l.sugar.With(keysAndValues...),
		level:  l.level,
		fields: fields,
	}
}

// SetOutput sets the output destination for the logger.
// Fields attached through With are kept.
func (l *DefaultLogger) SetOutput(w io.Writer) {
	l.sugar = zap.New(newCore(w, l.level)).Sugar().With(l.fields...)
}

// SetLevel sets the logging level
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.level.SetLevel(toZapLevel(level))
}

// Sync flushes any buffered entries
func (l *DefaultLogger) Sync() error {
	return l.sugar.Sync()
}

func toZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// StringToLogLevel converts a string representation to a LogLevel
func StringToLogLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}
