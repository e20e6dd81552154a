package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-partials/pkg/interfaces"
)

// Logger names, one per component. Console output prints them in brackets.
const (
	rootModule     = "partials"
	engineModule   = rootModule + ".includes"
	siteModule     = rootModule + ".site"
	reportModule   = rootModule + ".report"
	watcherModule  = rootModule + ".watcher"
	commandsModule = rootModule + ".commands"
)

// ModuleLogger asks provider for the named logger and tags it with a module
// field. A nil provider, or one returning nil, yields a no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module = strings.TrimSpace(module); module == "" {
		module = rootModule
	}
	var logger interfaces.Logger
	if provider != nil {
		logger = provider.GetLogger(module)
	}
	return WithFields(OrNoOp(logger), map[string]any{"module": module})
}

func EngineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, engineModule)
}

func SiteLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, siteModule)
}

func ReportLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, reportModule)
}

func WatcherLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, watcherModule)
}

func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithPageContext binds the page path, its version and the action being
// taken (lint, resolve). Blank values are left out.
func WithPageContext(logger interfaces.Logger, pagePath, version, action string) interfaces.Logger {
	fields := make(map[string]any, 3)
	for key, value := range map[string]string{
		"page_path": pagePath,
		"version":   version,
		"action":    action,
	} {
		if value = strings.TrimSpace(value); value != "" {
			fields[key] = value
		}
	}
	return WithFields(logger, fields)
}

// NoOp discards everything.
func NoOp() interfaces.Logger {
	return discard{}
}

type discard struct{}

func (discard) Trace(string, ...any) {}
func (discard) Debug(string, ...any) {}
func (discard) Info(string, ...any)  {}
func (discard) Warn(string, ...any)  {}
func (discard) Error(string, ...any) {}
func (discard) Fatal(string, ...any) {}

func (d discard) WithFields(map[string]any) interfaces.Logger   { return d }
func (d discard) WithContext(context.Context) interfaces.Logger { return d }
