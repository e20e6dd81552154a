package logging

import (
	"context"
	"maps"
	"slices"

	"github.com/goliatone/go-partials/pkg/interfaces"
)

// OrNoOp returns logger, or a no-op logger when it is nil.
func OrNoOp(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	return logger
}

// WithFields attaches fields to logger. Loggers implementing FieldsLogger
// receive a copy of the map; any other logger gets the fields appended as
// key/value arguments, in key order, to every entry.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fl, ok := logger.(interfaces.FieldsLogger); ok {
		return fl.WithFields(maps.Clone(fields))
	}

	args := make([]any, 0, len(fields)*2)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		args = append(args, key, fields[key])
	}
	if bound, ok := logger.(*boundLogger); ok {
		return &boundLogger{inner: bound.inner, args: append(slices.Clone(bound.args), args...)}
	}
	return &boundLogger{inner: logger, args: args}
}

type boundLogger struct {
	inner interfaces.Logger
	args  []any
}

func (b *boundLogger) with(args []any) []any {
	return append(slices.Clone(args), b.args...)
}

func (b *boundLogger) Trace(msg string, args ...any) { b.inner.Trace(msg, b.with(args)...) }
func (b *boundLogger) Debug(msg string, args ...any) { b.inner.Debug(msg, b.with(args)...) }
func (b *boundLogger) Info(msg string, args ...any)  { b.inner.Info(msg, b.with(args)...) }
func (b *boundLogger) Warn(msg string, args ...any)  { b.inner.Warn(msg, b.with(args)...) }
func (b *boundLogger) Error(msg string, args ...any) { b.inner.Error(msg, b.with(args)...) }
func (b *boundLogger) Fatal(msg string, args ...any) { b.inner.Fatal(msg, b.with(args)...) }

func (b *boundLogger) WithContext(ctx context.Context) interfaces.Logger {
	return &boundLogger{inner: b.inner.WithContext(ctx), args: b.args}
}
