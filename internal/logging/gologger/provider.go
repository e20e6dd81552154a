// Package gologger adapts github.com/goliatone/go-logger to the partials
// logging contract.
package gologger

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-partials/internal/logging"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

// Config mirrors the logging section of the module configuration.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	// Focus limits output to the named loggers, e.g. "partials.includes".
	Focus []string
}

var formats = map[string]func() glog.Option{
	"":        glog.WithLoggerTypeJSON,
	"json":    glog.WithLoggerTypeJSON,
	"console": glog.WithLoggerTypeConsole,
	"pretty":  glog.WithLoggerTypePretty,
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// Provider hands out go-logger children, one per module name.
type Provider struct {
	root *glog.BaseLogger

	mu       sync.Mutex
	children map[string]glog.Logger
}

// NewProvider builds the root go-logger from cfg.
func NewProvider(cfg Config) (*Provider, error) {
	format, ok := formats[strings.ToLower(strings.TrimSpace(cfg.Format))]
	if !ok {
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}
	options := []glog.Option{format()}
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	focus := slices.DeleteFunc(slices.Clone(cfg.Focus), func(name string) bool {
		return strings.TrimSpace(name) == ""
	})
	if len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root, children: map[string]glog.Logger{}}, nil
}

// GetLogger returns the child logger registered under name, creating it on
// first use. An empty name returns the root logger.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return wrap(p.root)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	child, ok := p.children[name]
	if !ok {
		child = p.root.GetLogger(name)
		p.children[name] = child
	}
	return wrap(child)
}

func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

// adapter forwards to go-logger. Loggers without field support get their
// fields appended to every call instead.
type adapter struct {
	inner glog.Logger
	extra []any
}

func (l *adapter) args(args []any) []any {
	if len(l.extra) == 0 {
		return args
	}
	return append(slices.Clone(args), l.extra...)
}

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, l.args(args)...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, l.args(args)...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, l.args(args)...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, l.args(args)...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, l.args(args)...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, l.args(args)...) }

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	if fl, ok := l.inner.(glog.FieldsLogger); ok {
		return &adapter{inner: fl.WithFields(maps.Clone(fields)), extra: l.extra}
	}
	extra := slices.Clone(l.extra)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		extra = append(extra, key, fields[key])
	}
	return &adapter{inner: l.inner, extra: extra}
}

// WithContext passes ctx to go-logger and attaches the fields stored on it
// with logging.ContextWithFields, which go-logger cannot see on its own.
func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	next := &adapter{inner: l.inner.WithContext(ctx), extra: l.extra}
	if fields := logging.ContextFields(ctx); len(fields) > 0 {
		return next.WithFields(fields)
	}
	return next
}
