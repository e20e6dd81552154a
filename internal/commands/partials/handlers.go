package partialscmd

import (
	"context"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-partials/internal/commands"
	"github.com/goliatone/go-partials/internal/logging"
	"github.com/goliatone/go-partials/internal/site"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

const (
	lintOperation    = "partials.lint_directory"
	resolveOperation = "partials.resolve_directory"
)

// SiteService is the directory runner the handlers delegate to.
type SiteService interface {
	Lint(ctx context.Context, dir string, opts site.LintOptions) (site.Summary, error)
	Resolve(ctx context.Context, dir string, opts site.ResolveOptions) (site.Summary, error)
}

var (
	_ SiteService                                = (*site.Service)(nil)
	_ command.Commander[LintDirectoryCommand]    = (*LintDirectoryHandler)(nil)
	_ command.Commander[ResolveDirectoryCommand] = (*ResolveDirectoryHandler)(nil)
)

// LintDirectoryHandler runs lint passes through the shared command handler.
type LintDirectoryHandler struct {
	inner *commands.Handler[LintDirectoryCommand]
}

// NewLintDirectoryHandler creates a handler bound to the supplied site service.
// Page failures in the run (malformed directives, unresolvable versions) fail
// the command; diagnostics do not.
func NewLintDirectoryHandler(service SiteService, logger interfaces.Logger, opts ...commands.HandlerOption[LintDirectoryCommand]) *LintDirectoryHandler {
	baseLogger := logging.OrNoOp(logger)

	exec := func(ctx context.Context, msg LintDirectoryCommand) error {
		summary, err := service.Lint(ctx, msg.Directory, site.LintOptions{Persist: msg.Persist})
		if msg.Result != nil {
			*msg.Result = summary
		}
		if err != nil {
			return err
		}
		return summary.Err()
	}

	handlerOpts := []commands.HandlerOption[LintDirectoryCommand]{
		commands.WithLogger[LintDirectoryCommand](baseLogger),
		commands.WithOperation[LintDirectoryCommand](lintOperation),
		commands.WithMessageFields(func(msg LintDirectoryCommand) map[string]any {
			fields := map[string]any{"directory": msg.Directory}
			if msg.Persist {
				fields["persist"] = true
			}
			return fields
		}),
		commands.WithResultFields(func(msg LintDirectoryCommand) map[string]any {
			return summaryFields(msg.Result)
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &LintDirectoryHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[LintDirectoryCommand].
func (h *LintDirectoryHandler) Execute(ctx context.Context, msg LintDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ResolveDirectoryHandler runs resolve passes through the shared command handler.
type ResolveDirectoryHandler struct {
	inner *commands.Handler[ResolveDirectoryCommand]
}

// NewResolveDirectoryHandler creates a handler bound to the supplied site service.
func NewResolveDirectoryHandler(service SiteService, logger interfaces.Logger, opts ...commands.HandlerOption[ResolveDirectoryCommand]) *ResolveDirectoryHandler {
	baseLogger := logging.OrNoOp(logger)

	exec := func(ctx context.Context, msg ResolveDirectoryCommand) error {
		format, err := site.ParseFormat(msg.Format)
		if err != nil {
			return err
		}
		summary, err := service.Resolve(ctx, msg.Directory, site.ResolveOptions{
			OutputDir: msg.OutputDir,
			Format:    format,
			Validate:  msg.ValidateRun,
		})
		if msg.Result != nil {
			*msg.Result = summary
		}
		if err != nil {
			return err
		}
		return summary.Err()
	}

	handlerOpts := []commands.HandlerOption[ResolveDirectoryCommand]{
		commands.WithLogger[ResolveDirectoryCommand](baseLogger),
		commands.WithOperation[ResolveDirectoryCommand](resolveOperation),
		commands.WithMessageFields(func(msg ResolveDirectoryCommand) map[string]any {
			return map[string]any{
				"directory":  msg.Directory,
				"output_dir": msg.OutputDir,
				"format":     msg.Format,
			}
		}),
		commands.WithResultFields(func(msg ResolveDirectoryCommand) map[string]any {
			return summaryFields(msg.Result)
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ResolveDirectoryHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ResolveDirectoryCommand].
func (h *ResolveDirectoryHandler) Execute(ctx context.Context, msg ResolveDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// summaryFields reports the counters of a run on the command's final log
// entry.
func summaryFields(summary *site.Summary) map[string]any {
	if summary == nil {
		return nil
	}
	fields := map[string]any{
		"pages":    len(summary.Pages),
		"errors":   summary.Errors,
		"warnings": summary.Warnings,
		"failed":   summary.Failed,
	}
	if summary.RunID != uuid.Nil {
		fields["run_id"] = summary.RunID.String()
	}
	return fields
}
