package logging

import (
	"context"
	"maps"
	"strings"
)

type contextKey struct{}

// ContextWithFields returns a context carrying fields that context-aware
// loggers merge into every entry. Fields already on ctx are kept unless
// overwritten.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextKey{}, merged)
}

// ContextWithRun tags ctx with the directory and modes of a site run.
func ContextWithRun(ctx context.Context, directory, modes string) context.Context {
	fields := map[string]any{}
	if d := strings.TrimSpace(directory); d != "" {
		fields["run_directory"] = d
	}
	if m := strings.TrimSpace(modes); m != "" {
		fields["run_modes"] = m
	}
	return ContextWithFields(ctx, fields)
}

// ContextFields returns a copy of the fields stored on ctx, or nil.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(contextKey{}).(map[string]any)
	if len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}
