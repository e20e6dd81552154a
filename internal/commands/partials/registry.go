package partialscmd

import (
	"errors"

	"github.com/goliatone/go-partials/internal/commands"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers produced by RegisterCommands.
type HandlerSet struct {
	Lint    *LintDirectoryHandler
	Resolve *ResolveDirectoryHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	lintHandlerOpts    []commands.HandlerOption[LintDirectoryCommand]
	resolveHandlerOpts []commands.HandlerOption[ResolveDirectoryCommand]
}

// WithLintHandlerOptions forwards options to the LintDirectoryHandler constructor.
func WithLintHandlerOptions(opts ...commands.HandlerOption[LintDirectoryCommand]) Option {
	return func(cfg *options) {
		cfg.lintHandlerOpts = append(cfg.lintHandlerOpts, opts...)
	}
}

// WithResolveHandlerOptions forwards options to the ResolveDirectoryHandler constructor.
func WithResolveHandlerOptions(opts ...commands.HandlerOption[ResolveDirectoryCommand]) Option {
	return func(cfg *options) {
		cfg.resolveHandlerOpts = append(cfg.resolveHandlerOpts, opts...)
	}
}

// RegisterCommands builds the lint and resolve handlers and registers them
// with reg when it is not nil.
func RegisterCommands(reg CommandRegistry, service SiteService, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("partials command registration: service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "partials")
	set := &HandlerSet{
		Lint:    NewLintDirectoryHandler(service, logger, cfg.lintHandlerOpts...),
		Resolve: NewResolveDirectoryHandler(service, logger, cfg.resolveHandlerOpts...),
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Lint); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(set.Resolve); err != nil {
			return nil, err
		}
	}
	return set, nil
}
