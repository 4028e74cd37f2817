package logger

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

var nop = zap.NewNop()

// ContextWithLogger returns ctx carrying l. Request and ask scoped loggers
// travel this way so deeper layers log with the same ids.
func ContextWithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return nop
}

// With derives a child logger carrying fields and stores it in ctx. The logger
// already in ctx is the parent; fallback is used only when ctx has none.
func With(ctx context.Context, fallback *zap.Logger, fields ...zap.Field) (context.Context, *zap.Logger) {
	parent, ok := ctx.Value(loggerKey{}).(*zap.Logger)
	if !ok || parent == nil {
		parent = fallback
	}
	if parent == nil {
		parent = nop
	}
	l := parent.With(fields...)
	return ContextWithLogger(ctx, l), l
}
