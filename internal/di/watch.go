package di

import (
	"context"
	"path/filepath"
	"strings"

	partialscmd "github.com/goliatone/go-partials/internal/commands/partials"
	"github.com/goliatone/go-partials/internal/logging"
	"github.com/goliatone/go-partials/internal/site"
	"github.com/goliatone/go-partials/internal/watcher"
)

// WatchOptions tunes a watch session.
type WatchOptions struct {
	// Directory is the content directory passed to every run.
	Directory string
	// OnRun receives the summary of every run, including the initial one.
	OnRun func(site.Summary)
}

// WatchFilter selects the changes that trigger a re-run: any visible file
// under the project root, since partials need not be documents (.txt or
// .yaml snippets). Resolved output and the sqlite report database are
// ignored so a run never triggers itself.
func (c *Container) WatchFilter() watcher.Filter {
	filters := []watcher.Filter{watcher.NoHiddenFilter}
	if c.Config.Modes.Resolve {
		filters = append(filters, watcher.ExcludeDirFilter(c.Config.Output.Dir))
	}
	if db := c.reportFile(); db != "" {
		filters = append(filters, watcher.ExcludePrefixFilter(db))
	}
	return watcher.All(filters...)
}

// reportFile returns the file behind the sqlite report DSN, or "" for
// in-memory databases and other drivers.
func (c *Container) reportFile() string {
	if !c.Config.Report.Enabled || !strings.EqualFold(strings.TrimSpace(c.Config.Report.Driver), "sqlite") {
		return ""
	}
	dsn := strings.TrimPrefix(strings.TrimSpace(c.Config.Report.DSN), "file:")
	name, query, _ := strings.Cut(dsn, "?")
	if name == "" || strings.Contains(name, ":memory:") || strings.Contains(query, "mode=memory") {
		return ""
	}
	return name
}

// Watch runs the configured modes over opts.Directory once, then again
// every time a file under the project root changes, until ctx is done.
// The partial cache is dropped before each re-run.
func (c *Container) Watch(ctx context.Context, opts WatchOptions) error {
	logger := logging.WatcherLogger(c.loggerProvider)

	w, err := watcher.New(
		watcher.WithDebounce(c.Config.Watch.Debounce),
		watcher.WithFilter(c.WatchFilter()),
		watcher.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	if err := w.AddRecursive(filepath.FromSlash(c.layout.ProjectRoot)); err != nil {
		if closeErr := w.Close(); closeErr != nil {
			logger.Warn("watcher.close.failed", "error", closeErr)
		}
		return err
	}

	c.runModes(ctx, opts)
	w.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		logger.Info("watcher.change", "files", len(events), "first", events[0].Path)
		if err := c.InvalidatePartials(ctx); err != nil {
			return err
		}
		c.runModes(ctx, opts)
		return nil
	})

	logger.Info("watcher.started", "root", c.layout.ProjectRoot, "directory", opts.Directory)
	return w.Run(ctx)
}

func (c *Container) runModes(ctx context.Context, opts WatchOptions) {
	logger := logging.WatcherLogger(c.loggerProvider)

	if c.Config.Modes.Lint {
		var summary site.Summary
		err := c.handlers.Lint.Execute(ctx, partialscmd.LintDirectoryCommand{
			Directory: opts.Directory,
			Persist:   c.reports != nil,
			Result:    &summary,
		})
		if err != nil {
			logger.Warn("watcher.lint.failed", "error", err)
		}
		if opts.OnRun != nil {
			opts.OnRun(summary)
		}
	}
	if c.Config.Modes.Resolve {
		var summary site.Summary
		err := c.handlers.Resolve.Execute(ctx, partialscmd.ResolveDirectoryCommand{
			Directory: opts.Directory,
			OutputDir: c.Config.Output.Dir,
			Format:    c.Config.Output.Format,
			Result:    &summary,
		})
		if err != nil {
			logger.Warn("watcher.resolve.failed", "error", err)
		}
		if opts.OnRun != nil {
			opts.OnRun(summary)
		}
	}
}
