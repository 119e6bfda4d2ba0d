package logging

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogrusLogger adapts a *logrus.Entry to Logger.
type LogrusLogger struct {
	e *logrus.Entry
}

func NewLogrusLogger(e *logrus.Entry) *LogrusLogger {
	return &LogrusLogger{e: e}
}

func (l *LogrusLogger) entry(ctx context.Context, args []any) *logrus.Entry {
	fields := logrus.Fields{}
	pairs(args, func(key string, value any) {
		fields[key] = value
	})
	return l.e.WithContext(ctx).WithFields(fields)
}

func (l *LogrusLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.entry(ctx, args).Debug(msg)
}

func (l *LogrusLogger) Info(ctx context.Context, msg string, args ...any) {
	l.entry(ctx, args).Info(msg)
}

func (l *LogrusLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.entry(ctx, args).Warn(msg)
}

func (l *LogrusLogger) Error(ctx context.Context, msg string, args ...any) {
	l.entry(ctx, args).Error(msg)
}

func (l *LogrusLogger) With(args ...any) Logger {
	return &LogrusLogger{e: l.entry(context.Background(), args)}
}
