package partials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-partials/internal/identity"
	"github.com/goliatone/go-partials/internal/logging"
	"github.com/goliatone/go-partials/internal/params"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

// NotFoundError reports a partial path that could not be read.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("partial %q not found", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Rendered is a partial body after parameter substitution.
type Rendered struct {
	Path string
	Text string
	// Values are the resolved parameters the body was rendered with.
	Values map[string]string
	// Unresolved names placeholders that had no value.
	Unresolved []string
}

// Loader reads partials from a filesystem and renders them. Rendered output
// is cached per (path, resolved parameters) when a cache is configured.
type Loader struct {
	fs     fs.FS
	cache  interfaces.CacheProvider
	ttl    time.Duration
	logger interfaces.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache enables render caching. A zero ttl keeps entries until the cache
// is cleared.
func WithCache(cache interfaces.CacheProvider, ttl time.Duration) Option {
	return func(l *Loader) {
		l.cache = cache
		l.ttl = ttl
	}
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader constructs a Loader over fsys.
func NewLoader(fsys fs.FS, opts ...Option) *Loader {
	l := &Loader{
		fs:     fsys,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and parses the partial at partialPath, a slash-separated path
// relative to the loader's filesystem root.
func (l *Loader) Load(ctx context.Context, partialPath string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	clean := strings.TrimPrefix(path.Clean(partialPath), "/")
	data, err := fs.ReadFile(l.fs, clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return Document{}, &NotFoundError{Path: partialPath, Err: err}
		}
		return Document{}, fmt.Errorf("partials: read %s: %w", partialPath, err)
	}
	return Parse(string(data))
}

// Render loads the partial, merges its defaults with overrides and
// substitutes the resolved values into the body.
func (l *Loader) Render(ctx context.Context, partialPath string, overrides params.Assignments) (Rendered, error) {
	cacheKey := ""
	if l.cache != nil {
		if key, ok := l.overrideKey(partialPath, overrides); ok {
			cacheKey = key
			if cached, err := l.cache.Get(ctx, cacheKey); err == nil {
				if rendered, ok := cached.(Rendered); ok {
					l.logger.Debug("partials.cache.hit", "partial", partialPath)
					return rendered, nil
				}
			}
		}
	}

	doc, err := l.Load(ctx, partialPath)
	if err != nil {
		return Rendered{}, err
	}

	values, err := params.Resolve(params.Merge(doc.Defaults, overrides))
	if err != nil {
		return Rendered{}, err
	}

	text, unresolved := Substitute(doc.Body, values)
	rendered := Rendered{
		Path:       partialPath,
		Text:       text,
		Values:     values,
		Unresolved: unresolved,
	}

	if cacheKey != "" {
		if err := l.cache.Set(ctx, cacheKey, rendered, l.ttl); err != nil {
			l.logger.Warn("partials.cache.set_failed", "partial", partialPath, "error", err)
		}
	}
	return rendered, nil
}

// overrideKey derives the cache key from the call-site overrides. Defaults
// live in the file itself, so the file path plus the overrides determine the
// rendered output for as long as the file is unchanged.
func (l *Loader) overrideKey(partialPath string, overrides params.Assignments) (string, bool) {
	values, err := params.Resolve(overrides)
	if err != nil {
		return "", false
	}
	return "partial:" + identity.PartialUUID(path.Clean(partialPath), params.Format(values)).String(), true
}
