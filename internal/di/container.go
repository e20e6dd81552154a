package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/spf13/afero"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-partials/internal/adapters/memory"
	"github.com/goliatone/go-partials/internal/adapters/noop"
	partialscmd "github.com/goliatone/go-partials/internal/commands/partials"
	"github.com/goliatone/go-partials/internal/includes"
	"github.com/goliatone/go-partials/internal/logging"
	"github.com/goliatone/go-partials/internal/logging/console"
	"github.com/goliatone/go-partials/internal/logging/gologger"
	"github.com/goliatone/go-partials/internal/markdown"
	"github.com/goliatone/go-partials/internal/partials"
	"github.com/goliatone/go-partials/internal/paths"
	"github.com/goliatone/go-partials/internal/report"
	"github.com/goliatone/go-partials/internal/runtimeconfig"
	"github.com/goliatone/go-partials/internal/site"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

// Container wires module dependencies from a validated configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	contentFS      fs.FS
	outputFS       afero.Fs
	cache          interfaces.CacheProvider
	sink           interfaces.DiagnosticSink

	bunDB   *bun.DB
	ownsDB  bool
	reports report.Repository

	layout   paths.Layout
	parser   *markdown.GoldmarkParser
	partials *partials.Loader
	engine   *includes.Engine
	pages    *markdown.Loader
	siteSvc  *site.Service
	handlers *partialscmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithContentFS overrides the filesystem pages and partials are read from.
// It must be rooted at the project root.
func WithContentFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.contentFS = fsys
	}
}

// WithOutputFS overrides the filesystem resolved pages are written to.
func WithOutputFS(fsys afero.Fs) Option {
	return func(c *Container) {
		c.outputFS = fsys
	}
}

// WithCache overrides the partial cache.
func WithCache(cache interfaces.CacheProvider) Option {
	return func(c *Container) {
		c.cache = cache
	}
}

// WithDiagnosticSink receives every diagnostic as it is raised.
func WithDiagnosticSink(sink interfaces.DiagnosticSink) Option {
	return func(c *Container) {
		c.sink = sink
	}
}

// WithBunDB supplies the database used by the sqlite report driver. The
// container does not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithReportRepository overrides the report repository built from Config.Report.
func WithReportRepository(repo report.Repository) Option {
	return func(c *Container) {
		c.reports = repo
	}
}

// NewContainer validates cfg and wires the engine, the site service and the
// command handlers.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureReports(); err != nil {
		return nil, err
	}
	c.configureEngine()

	handlers, err := partialscmd.RegisterCommands(nil, c.siteSvc, c.loggerProvider)
	if err != nil {
		return nil, err
	}
	c.handlers = handlers

	logging.ModuleLogger(c.loggerProvider, "partials").Debug("container.configured",
		"project_root", c.layout.ProjectRoot,
		"latest_version", c.layout.LatestVersion,
		"reports", c.reports != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{Writer: os.Stderr}
		if level, ok := console.ParseLevel(c.Config.Logging.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureReports() error {
	if c.reports != nil || !c.Config.Report.Enabled {
		return nil
	}
	driver := strings.ToLower(strings.TrimSpace(c.Config.Report.Driver))
	defer func() {
		if c.reports != nil {
			logging.ReportLogger(c.loggerProvider).Debug("report.store.ready", "driver", driver)
		}
	}()
	switch driver {
	case "sqlite":
		if c.bunDB == nil {
			db, err := report.OpenSQLite(c.Config.Report.DSN)
			if err != nil {
				return fmt.Errorf("di: open report database: %w", err)
			}
			c.bunDB = db
			c.ownsDB = true
		}
		if err := report.EnsureSchema(context.Background(), c.bunDB); err != nil {
			return fmt.Errorf("di: report schema: %w", err)
		}
		c.reports = report.NewBunRepository(c.bunDB)
	default:
		c.reports = report.NewMemoryRepository()
	}
	return nil
}

func (c *Container) configureEngine() {
	cfg := c.Config
	root := filepath.Clean(cfg.ProjectRoot)
	if c.contentFS == nil {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		c.contentFS = os.DirFS(root)
	}

	c.layout = paths.Layout{
		ProjectRoot:        filepath.ToSlash(root),
		LatestVersion:      cfg.LatestVersion,
		LegacyContentDir:   cfg.Layout.LegacyContentDir,
		LegacyPagesDir:     cfg.Layout.LegacyPagesDir,
		DocsDir:            cfg.Layout.DocsDir,
		VersionedDocsDir:   cfg.Layout.VersionedDocsDir,
		VersionPrefix:      cfg.Layout.VersionPrefix,
		DocumentExtensions: append([]string(nil), cfg.Layout.DocumentExtensions...),
	}

	if c.outputFS == nil {
		c.outputFS = afero.NewOsFs()
	}
	if c.cache == nil {
		if cfg.Includes.Cache.Enabled {
			c.cache = memory.NewCache()
		} else {
			c.cache = noop.Cache()
		}
	}
	if c.sink == nil {
		c.sink = noop.Sink()
	}

	c.parser = markdown.NewGoldmarkParser(interfaces.ParseOptions{
		Extensions:   cfg.Markdown.Parser.Extensions,
		HardWraps:    cfg.Markdown.Parser.HardWraps,
		SafeMode:     cfg.Markdown.Parser.SafeMode,
		FlowElements: cfg.Markdown.Parser.FlowElements,
	})
	c.partials = partials.NewLoader(c.contentFS,
		partials.WithCache(c.cache, cfg.Includes.Cache.TTL),
		partials.WithLogger(logging.EngineLogger(c.loggerProvider)),
	)
	c.engine = includes.NewEngine(c.layout, c.parser, c.partials,
		includes.WithLogger(logging.EngineLogger(c.loggerProvider)),
		includes.WithMaxDepth(cfg.Includes.MaxDepth),
		includes.WithAssetRebase(cfg.Assets.Rebase),
		includes.WithSink(c.sink),
	)
	c.pages = markdown.NewLoader(c.contentFS, markdown.LoaderConfig{
		BasePath:   root,
		Pattern:    cfg.Markdown.Pattern,
		Extensions: cfg.Layout.DocumentExtensions,
		Recursive:  cfg.Markdown.Recursive,
	})

	siteOpts := []site.Option{
		site.WithRenderer(c.parser),
		site.WithOutputFS(c.outputFS),
		site.WithLogger(logging.SiteLogger(c.loggerProvider)),
	}
	if c.reports != nil {
		siteOpts = append(siteOpts, site.WithReports(c.reports))
	}
	c.siteSvc = site.NewService(c.engine, c.pages, siteOpts...)
}

// SubscribeDispatcher routes lint and resolve commands sent through
// go-command's dispatcher to this container's handlers. The returned function
// removes the subscriptions.
func (c *Container) SubscribeDispatcher(opts ...runner.Option) func() {
	lint := dispatcher.SubscribeCommand(c.handlers.Lint, opts...)
	resolve := dispatcher.SubscribeCommand(c.handlers.Resolve, opts...)
	return func() {
		lint.Unsubscribe()
		resolve.Unsubscribe()
	}
}

// Close releases the report database when the container opened it.
func (c *Container) Close() error {
	if c.ownsDB && c.bunDB != nil {
		err := c.bunDB.Close()
		c.bunDB = nil
		return err
	}
	return nil
}

// InvalidatePartials drops every cached partial.
func (c *Container) InvalidatePartials(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	err := c.cache.Clear(ctx)
	if errors.Is(err, interfaces.ErrCacheMiss) {
		return nil
	}
	return err
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) Layout() paths.Layout { return c.layout }

func (c *Container) Parser() *markdown.GoldmarkParser { return c.parser }

func (c *Container) Engine() *includes.Engine { return c.engine }

func (c *Container) Pages() *markdown.Loader { return c.pages }

func (c *Container) Site() *site.Service { return c.siteSvc }

// Reports returns the report repository, nil when reports are disabled.
func (c *Container) Reports() report.Repository { return c.reports }

func (c *Container) Commands() *partialscmd.HandlerSet { return c.handlers }
