package logging

import (
	"context"

	"go.uber.org/zap"
)

// ZapLogger adapts a *zap.Logger to Logger.
type ZapLogger struct {
	l *zap.Logger
}

func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{l: l}
}

func (z *ZapLogger) fields(args []any) []zap.Field {
	fields := make([]zap.Field, 0, len(args)/2)
	pairs(args, func(key string, value any) {
		fields = append(fields, zap.Any(key, value))
	})
	return fields
}

func (z *ZapLogger) Debug(_ context.Context, msg string, args ...any) {
	z.l.Debug(msg, z.fields(args)...)
}

func (z *ZapLogger) Info(_ context.Context, msg string, args ...any) {
	z.l.Info(msg, z.fields(args)...)
}

func (z *ZapLogger) Warn(_ context.Context, msg string, args ...any) {
	z.l.Warn(msg, z.fields(args)...)
}

func (z *ZapLogger) Error(_ context.Context, msg string, args ...any) {
	z.l.Error(msg, z.fields(args)...)
}

func (z *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{l: z.l.With(z.fields(args)...)}
}
