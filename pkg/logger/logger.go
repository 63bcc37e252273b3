package logger

import (
	"context"
	"io"
	"os"

	"notification-dispatch/pkg/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// Logger wraps a configured logrus instance plus the closer of its
// file sink, if any.
type Logger struct {
	l      *logrus.Logger
	closer io.Closer
}

// NewLogger builds a logger from the log section of the config.
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Log.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	s := &Logger{l: l}
	if cfg.Log.Output == "file" && cfg.Log.Filename != "" {
		sink := &lumberjack.Logger{
			Filename:   cfg.Log.Filename,
			MaxSize:    cfg.Log.MaxSize,
			MaxAge:     cfg.Log.MaxAge,
			MaxBackups: cfg.Log.MaxBackups,
			Compress:   cfg.Log.Compress,
		}
		l.SetOutput(sink)
		s.closer = sink
	} else {
		l.SetOutput(os.Stdout)
	}
	return s
}

// Close flushes and closes the file sink if one is configured.
func (s *Logger) Close() {
	if s != nil && s.closer != nil {
		_ = s.closer.Close()
	}
}

var global *Logger

// SetGlobalLogger installs the process-wide logger used by the package
// level helpers. Should be called once during startup.
func SetGlobalLogger(l *Logger) {
	global = l
}

func std() *logrus.Logger {
	if global != nil {
		return global.l
	}
	return logrus.StandardLogger()
}

// ContextWithRequestID stores a request id for later retrieval by WithContext.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request id stored on the context, if any.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithContext returns an entry carrying the request id from ctx.
func WithContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(std())
	if rid := RequestIDFromContext(ctx); rid != "" {
		entry = entry.WithField("request_id", rid)
	}
	return entry
}

func Debugf(format string, args ...interface{}) {
	std().Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	std().Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	std().Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	std().Errorf(format, args...)
}

// Fatal logs the message and exits the process.
func Fatal(msg string) {
	std().Fatal(msg)
}
