package noop

import (
	"context"
	"time"

	"github.com/goliatone/go-partials/pkg/interfaces"
)

// Cache returns an interfaces.CacheProvider that stores nothing; every Get
// misses.
func Cache() interfaces.CacheProvider {
	return cacheAdapter{}
}

type cacheAdapter struct{}

func (cacheAdapter) Get(context.Context, string) (any, error) {
	return nil, interfaces.ErrCacheMiss
}

func (cacheAdapter) Set(context.Context, string, any, time.Duration) error {
	return nil
}

func (cacheAdapter) Delete(context.Context, string) error {
	return nil
}

func (cacheAdapter) Clear(context.Context) error {
	return nil
}

// Sink returns a diagnostics sink that discards everything.
func Sink() interfaces.DiagnosticSink {
	return sinkAdapter{}
}

type sinkAdapter struct{}

func (sinkAdapter) Report(interfaces.Diagnostic) {}
