package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-partials/internal/logging"
	"github.com/goliatone/go-partials/internal/logging/console"
)

func TestConsoleLoggerFormatsEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)
	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := logging.ModuleLogger(provider, "partials.includes")
	logger = logging.WithPageContext(logger, "docs/pages/okta.mdx", "18.x", "lint")
	ctx := logging.ContextWithRun(context.Background(), "docs", "lint")
	logger = logger.WithContext(ctx)

	runID := uuid.MustParse("8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999")
	logger.Warn("includes.engine.partial_missing",
		"partial", "docs/pages/includes/intro.mdx",
		"run_id", runID,
		"error", errors.New("file does not exist"),
	)

	got := strings.TrimSpace(buf.String())
	want := "2024-03-14T15:09:26.535Z WRN [partials.includes] includes.engine.partial_missing" +
		" page_path=docs/pages/okta.mdx version=18.x action=lint partial=docs/pages/includes/intro.mdx" +
		` error="file does not exist" run_directory=docs run_id=8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999 run_modes=lint`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelInfo
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &minLevel})

	logger := provider.GetLogger("partials.site")
	logger.Debug("site.resolve.written", "page", "a.mdx")
	logger.Info("site.resolve.completed", "pages", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected a single line, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "INF [partials.site] site.resolve.completed pages=2") {
		t.Fatalf("unexpected line %s", lines[0])
	}
}

func TestConsoleLoggerBadKeys(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("").Info("watcher.change", 42, "x", "dangling")

	line := strings.TrimSpace(buf.String())
	if !strings.HasSuffix(line, "INF watcher.change !BADKEY=dangling") {
		t.Fatalf("unexpected line %s", line)
	}
}

func TestParseLevel(t *testing.T) {
	level, ok := console.ParseLevel("WARN")
	if !ok || level != console.LevelWarn {
		t.Fatalf("expected warn level, got %v %v", level, ok)
	}
	if _, ok := console.ParseLevel("verbose"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
	if console.LevelError.String() != "ERR" {
		t.Fatalf("unexpected tag %s", console.LevelError)
	}
}
