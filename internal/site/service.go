// Package site runs the inclusion engine over a content directory: every
// page is loaded with its front matter split off, processed, and either
// reported on (lint) or written out resolved as Markdown or HTML.
package site

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/goliatone/go-partials/internal/includes"
	"github.com/goliatone/go-partials/internal/logging"
	"github.com/goliatone/go-partials/internal/markdown"
	"github.com/goliatone/go-partials/internal/mdast"
	"github.com/goliatone/go-partials/internal/report"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

// Format selects how resolved pages are written.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ErrUnknownFormat is returned for output formats other than markdown and html.
var ErrUnknownFormat = errors.New("site: unknown output format")

// ErrRendererRequired is returned when HTML output is requested without a renderer.
var ErrRendererRequired = errors.New("site: html output requires a markdown renderer")

// ErrOutputDirRequired is returned by Resolve without an output directory.
var ErrOutputDirRequired = errors.New("site: output directory is required")

// ParseFormat validates a format name. Empty means markdown.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// LintOptions tunes a lint run.
type LintOptions struct {
	// Persist stores the run when a report repository is configured.
	Persist bool
}

// ResolveOptions tunes a resolve run.
type ResolveOptions struct {
	OutputDir string
	Format    Format
	// Validate also collects lint diagnostics while resolving.
	Validate bool
}

// Service processes content directories.
type Service struct {
	engine   *includes.Engine
	pages    interfaces.PageSource
	renderer interfaces.MarkdownRenderer
	reports  report.Repository
	output   afero.Fs
	loadOpts interfaces.LoadOptions
	logger   interfaces.Logger
	now      func() time.Time
}

// Option configures the service at construction time.
type Option func(*Service)

// WithRenderer sets the renderer used for HTML output.
func WithRenderer(renderer interfaces.MarkdownRenderer) Option {
	return func(s *Service) {
		s.renderer = renderer
	}
}

// WithReports enables persisting lint runs.
func WithReports(repo report.Repository) Option {
	return func(s *Service) {
		s.reports = repo
	}
}

// WithOutputFS overrides the filesystem resolved pages are written to.
func WithOutputFS(fs afero.Fs) Option {
	return func(s *Service) {
		if fs != nil {
			s.output = fs
		}
	}
}

// WithLoadOptions overrides page discovery for every run.
func WithLoadOptions(opts interfaces.LoadOptions) Option {
	return func(s *Service) {
		s.loadOpts = opts
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used to stamp runs.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewService constructs a site service over an engine and a page source.
func NewService(engine *includes.Engine, pages interfaces.PageSource, opts ...Option) *Service {
	s := &Service{
		engine: engine,
		pages:  pages,
		output: afero.NewOsFs(),
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lint reports diagnostics for every page under dir without writing anything.
func (s *Service) Lint(ctx context.Context, dir string, opts LintOptions) (Summary, error) {
	summary, err := s.run(ctx, dir, includes.Lint, func(*interfaces.Document, PageResult, *mdast.Tree) (string, error) {
		return "", nil
	})
	if err != nil {
		return summary, err
	}

	if opts.Persist && s.reports != nil {
		run, err := s.reports.SaveRun(ctx, report.Run{
			Directory:   summary.Directory,
			Modes:       summary.Modes,
			StartedAt:   summary.StartedAt,
			FinishedAt:  summary.FinishedAt,
			Pages:       len(summary.Pages),
			Diagnostics: summary.Diagnostics(),
		})
		if err != nil {
			return summary, fmt.Errorf("site: save lint run: %w", err)
		}
		summary.RunID = run.ID
	}

	s.logger.Info("site.lint.completed",
		"directory", dir,
		"pages", len(summary.Pages),
		"errors", summary.Errors,
		"warnings", summary.Warnings,
		"failed", summary.Failed,
	)
	return summary, nil
}

// Resolve expands every page under dir and writes the result below
// opts.OutputDir, keeping the directory structure. Pages whose pass failed
// are not written.
func (s *Service) Resolve(ctx context.Context, dir string, opts ResolveOptions) (Summary, error) {
	if strings.TrimSpace(opts.OutputDir) == "" {
		return Summary{}, ErrOutputDirRequired
	}
	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return Summary{}, err
	}
	if format == FormatHTML && s.renderer == nil {
		return Summary{}, ErrRendererRequired
	}

	relDir := s.relativeDir(dir)
	modes := includes.Modes{Validate: opts.Validate, Rewrite: true}

	summary, err := s.run(ctx, dir, modes, func(doc *interfaces.Document, _ PageResult, tree *mdast.Tree) (string, error) {
		body := []byte(mdast.Markdown(tree, tree.Root()))
		target := outputPath(opts.OutputDir, relDir, doc.FilePath)

		var out []byte
		if format == FormatHTML {
			html, err := s.renderer.Render(body)
			if err != nil {
				return "", fmt.Errorf("render %s: %w", doc.FilePath, err)
			}
			out = html
			target = strings.TrimSuffix(target, filepath.Ext(target)) + ".html"
		} else {
			out = markdown.Assemble(doc, body)
		}

		if err := s.output.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return "", err
		}
		if err := afero.WriteFile(s.output, target, out, 0o644); err != nil {
			return "", err
		}
		s.logger.Debug("site.resolve.written", "page", doc.FilePath, "output", target)
		return target, nil
	})
	if err != nil {
		return summary, err
	}

	s.logger.Info("site.resolve.completed",
		"directory", dir,
		"output", opts.OutputDir,
		"format", string(format),
		"pages", len(summary.Pages),
		"failed", summary.Failed,
	)
	return summary, nil
}

type pageWriter func(doc *interfaces.Document, result PageResult, tree *mdast.Tree) (string, error)

func (s *Service) run(ctx context.Context, dir string, modes includes.Modes, write pageWriter) (Summary, error) {
	summary := Summary{
		Directory: dir,
		Modes:     modes.String(),
		StartedAt: s.now().UTC(),
	}

	ctx = logging.ContextWithRun(ctx, dir, summary.Modes)
	logger := s.logger.WithContext(ctx)

	docs, err := s.pages.LoadDirectory(ctx, dir, s.loadOpts)
	if err != nil {
		return summary, fmt.Errorf("site: load %s: %w", dir, err)
	}

	root := s.engine.Layout().ProjectRoot
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		pagePath := path.Join(root, doc.FilePath)
		tree, result, err := s.engine.ProcessSource(ctx, doc.Body, pagePath, modes)
		page := PageResult{
			Path:        pagePath,
			Version:     result.Version,
			Diagnostics: result.Diagnostics,
			Partials:    result.Partials,
			Expanded:    result.Expanded,
			err:         err,
		}

		if err != nil {
			logging.WithPageContext(logger, pagePath, result.Version, summary.Modes).
				Warn("site.page.failed", "error", err)
		} else if modes.Rewrite {
			output, err := write(doc, page, tree)
			if err != nil {
				return summary, fmt.Errorf("site: write %s: %w", doc.FilePath, err)
			}
			page.Output = output
		}
		summary.add(page)
	}

	summary.FinishedAt = s.now().UTC()
	return summary, nil
}

// relativeDir expresses dir relative to the project root, the root of the
// page source.
func (s *Service) relativeDir(dir string) string {
	clean := filepath.Clean(dir)
	root := s.engine.Layout().ProjectRoot
	if filepath.IsAbs(clean) && root != "" {
		if rel, err := filepath.Rel(root, clean); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(clean)
}

func outputPath(outDir, relDir, pagePath string) string {
	rel := pagePath
	if relDir != "." && relDir != "" {
		rel = strings.TrimPrefix(pagePath, strings.TrimSuffix(relDir, "/")+"/")
	}
	return filepath.Join(outDir, filepath.FromSlash(rel))
}
