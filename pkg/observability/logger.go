package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/frezendesp/GroupManagement/pkg/contextkeys"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	return l.slogLevel().String()
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger writes JSON lines through slog. Derived loggers share the level
// of the logger they were derived from.
type Logger struct {
	slog  *slog.Logger
	level *slog.LevelVar
	// keys already attached, so request fields are not repeated
	bound map[string]bool
}

// NewLogger creates a JSON logger writing to output (stdout when nil)
func NewLogger(level LogLevel, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}

	lv := new(slog.LevelVar)
	lv.Set(level.slogLevel())

	return &Logger{
		slog:  slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: lv})),
		level: lv,
	}
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *Logger {
	return NewLogger(ErrorLevel, io.Discard)
}

// Level returns the current level
func (l *Logger) Level() LogLevel {
	switch lv := l.level.Level(); {
	case lv <= slog.LevelDebug:
		return DebugLevel
	case lv <= slog.LevelInfo:
		return InfoLevel
	case lv <= slog.LevelWarn:
		return WarnLevel
	default:
		return ErrorLevel
	}
}

// SetLevel changes the level of l and every logger derived from it
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Set(level.slogLevel())
}

func (l *Logger) with(args []any, keys ...string) *Logger {
	bound := make(map[string]bool, len(l.bound)+len(keys))
	for k := range l.bound {
		bound[k] = true
	}
	for _, k := range keys {
		bound[k] = true
	}
	return &Logger{
		slog:  l.slog.With(args...),
		level: l.level,
		bound: bound,
	}
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.with([]any{key, value}, key)
}

// WithFields adds multiple fields to the logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]any, 0, len(fields)*2)
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		args = append(args, k, v)
		keys = append(keys, k)
	}
	return l.with(args, keys...)
}

// WithError adds an error to the logger context
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *Logger) log(level slog.Level, msg string) {
	l.slog.Log(context.Background(), level, msg)
}

func (l *Logger) logf(level slog.Level, format string, args []any) {
	if !l.slog.Enabled(context.Background(), level) {
		return
	}
	l.log(level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(message string) { l.log(slog.LevelDebug, message) }
func (l *Logger) Info(message string)  { l.log(slog.LevelInfo, message) }
func (l *Logger) Warn(message string)  { l.log(slog.LevelWarn, message) }
func (l *Logger) Error(message string) { l.log(slog.LevelError, message) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(slog.LevelDebug, format, args) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(slog.LevelInfo, format, args) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(slog.LevelWarn, format, args) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(slog.LevelError, format, args) }

var (
	defaultLogger     *Logger
	defaultLoggerOnce sync.Once
)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return contextkeys.WithLogger(ctx, logger)
}

// GetLogger returns the context logger, or a shared info-level logger on
// stdout when none is set
func GetLogger(ctx context.Context) *Logger {
	if logger, ok := contextkeys.Logger(ctx).(*Logger); ok {
		return logger
	}
	defaultLoggerOnce.Do(func() {
		defaultLogger = NewLogger(InfoLevel, os.Stdout)
	})
	return defaultLogger
}

// FromContext returns the context logger carrying the request and user ids
// found in ctx
func FromContext(ctx context.Context) *Logger {
	logger := GetLogger(ctx)

	if requestID := contextkeys.GetRequestID(ctx); requestID != "" && !logger.bound["request_id"] {
		logger = logger.WithField("request_id", requestID)
	}
	if userID := contextkeys.GetUserID(ctx); userID != "" && !logger.bound["user_id"] {
		logger = logger.WithField("user_id", userID)
	}

	return logger
}
