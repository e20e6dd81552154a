package noop_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-partials/internal/adapters/noop"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

func TestAdaptersImplementInterfaces(t *testing.T) {
	var (
		_ interfaces.CacheProvider  = noop.Cache()
		_ interfaces.DiagnosticSink = noop.Sink()
	)
}

func TestCacheAlwaysMisses(t *testing.T) {
	cache := noop.Cache()
	ctx := context.Background()
	if err := cache.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := cache.Get(ctx, "k"); !errors.Is(err, interfaces.ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}
}
