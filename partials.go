// Package partials expands `(!path k="v"!)` inclusion directives in
// documentation pages, retargets the relative links of included content and
// reports inclusion problems as lint diagnostics.
package partials

import (
	"context"

	partialscmd "github.com/goliatone/go-partials/internal/commands/partials"
	"github.com/goliatone/go-partials/internal/di"
	"github.com/goliatone/go-partials/internal/includes"
	"github.com/goliatone/go-partials/internal/mdast"
	"github.com/goliatone/go-partials/internal/paths"
	"github.com/goliatone/go-partials/internal/report"
	"github.com/goliatone/go-partials/internal/site"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

// Modes selects what a pass does.
type Modes = includes.Modes

var (
	// Lint only reports diagnostics.
	Lint = includes.Lint
	// Resolve only rewrites.
	Resolve = includes.Resolve
)

// Result summarises one pass over a page.
type Result = includes.Result

// Summary aggregates a run over a content directory.
type Summary = site.Summary

// PageResult is the outcome of one page in a run.
type PageResult = site.PageResult

// Format selects how resolved pages are written.
type Format = site.Format

const (
	FormatMarkdown = site.FormatMarkdown
	FormatHTML     = site.FormatHTML
)

// PageContext carries the version and layout attributes of a page path.
type PageContext = paths.Context

// Diagnostic is a lint finding.
type Diagnostic = interfaces.Diagnostic

// ReportRepository stores lint runs.
type ReportRepository = report.Repository

// Option overrides a collaborator of the module.
type Option = di.Option

var (
	WithLoggerProvider   = di.WithLoggerProvider
	WithContentFS        = di.WithContentFS
	WithOutputFS         = di.WithOutputFS
	WithCache            = di.WithCache
	WithDiagnosticSink   = di.WithDiagnosticSink
	WithBunDB            = di.WithBunDB
	WithReportRepository = di.WithReportRepository
)

// Module represents the top level runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases resources opened by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// Process runs one pass over a page's source and returns the resulting tree
// serialised back to Markdown.
func (m *Module) Process(ctx context.Context, source []byte, filePath string, modes Modes) (string, Result, error) {
	tree, result, err := m.container.Engine().ProcessSource(ctx, source, filePath, modes)
	if tree == nil {
		return "", result, err
	}
	return mdast.Markdown(tree, tree.Root()), result, err
}

// Lint reports diagnostics for every page under dir. persist stores the run
// when reports are enabled.
func (m *Module) Lint(ctx context.Context, dir string, persist bool) (Summary, error) {
	var summary Summary
	err := m.container.Commands().Lint.Execute(ctx, partialscmd.LintDirectoryCommand{
		Directory: dir,
		Persist:   persist,
		Result:    &summary,
	})
	return summary, err
}

// Resolve expands every page under dir and writes it below outDir.
func (m *Module) Resolve(ctx context.Context, dir, outDir string, format Format, validate bool) (Summary, error) {
	var summary Summary
	err := m.container.Commands().Resolve.Execute(ctx, partialscmd.ResolveDirectoryCommand{
		Directory:   dir,
		OutputDir:   outDir,
		Format:      string(format),
		ValidateRun: validate,
		Result:      &summary,
	})
	return summary, err
}

// Watch re-runs the configured modes over dir whenever a page or partial
// changes. onRun receives every summary.
func (m *Module) Watch(ctx context.Context, dir string, onRun func(Summary)) error {
	return m.container.Watch(ctx, di.WatchOptions{Directory: dir, OnRun: onRun})
}

// PageContext classifies a page path into its version and layout.
func (m *Module) PageContext(filePath string) (PageContext, error) {
	return m.container.Layout().Context(filePath)
}

// Reports returns the report repository, nil when reports are disabled.
func (m *Module) Reports() ReportRepository {
	return m.container.Reports()
}
