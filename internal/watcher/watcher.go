// Package watcher reports debounced batches of file changes under a set of
// directory trees.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-partials/internal/logging"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

// DefaultDebounce is the quiet period before a batch is delivered.
const DefaultDebounce = 300 * time.Millisecond

// EventType classifies a change.
type EventType int

const (
	EventCreated EventType = iota
	EventModified
	EventDeleted
	EventRenamed
)

// String returns the lower-case name of the event type.
func (e EventType) String() string {
	switch e {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	case EventRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// ChangeEvent is one changed path. Within a batch each path appears once,
// carrying its last event type.
type ChangeEvent struct {
	Type EventType
	Path string
}

// Filter reports whether a changed path is of interest.
type Filter func(path string) bool

// Handler receives a debounced batch sorted by path.
type Handler func(ctx context.Context, events []ChangeEvent) error

// Watcher watches directory trees and hands debounced batches to its handlers.
type Watcher struct {
	notify   *fsnotify.Watcher
	delay    time.Duration
	filters  []Filter
	handlers []Handler
	logger   interfaces.Logger

	mu      sync.Mutex
	pending map[string]ChangeEvent
	timer   *time.Timer
	batches chan []ChangeEvent
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce. Zero delivers every event on its own.
func WithDebounce(delay time.Duration) Option {
	return func(w *Watcher) {
		if delay >= 0 {
			w.delay = delay
		}
	}
}

// WithFilter adds a filter; a path must pass all filters.
func WithFilter(filter Filter) Option {
	return func(w *Watcher) {
		if filter != nil {
			w.filters = append(w.filters, filter)
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher. Call Close when Run is never started.
func New(opts ...Option) (*Watcher, error) {
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		notify:  notify,
		delay:   DefaultDebounce,
		logger:  logging.NoOp(),
		pending: map[string]ChangeEvent{},
		batches: make(chan []ChangeEvent, 8),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// AddHandler registers a batch handler. Handlers run in registration order.
func (w *Watcher) AddHandler(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// AddRecursive watches root and every directory below it, skipping hidden
// directories.
func (w *Watcher) AddRecursive(root string) error {
	root = filepath.Clean(root)
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && isHidden(p) {
			return filepath.SkipDir
		}
		return w.notify.Add(p)
	})
}

// Run delivers batches until ctx is done, then releases the underlying
// watcher. Handler errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.notify.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.notify.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher.notify.error", "error", err)
		case batch := <-w.batches:
			w.dispatch(ctx, batch)
		}
	}
}

// Close stops pending timers and releases the fsnotify watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.notify.Close()
	if errors.Is(err, fsnotify.ErrClosed) {
		return nil
	}
	return err
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.AddRecursive(event.Name); err != nil {
				w.logger.Warn("watcher.add_failed", "path", event.Name, "error", err)
			}
			return
		}
	}
	if !w.accept(event.Name) {
		return
	}
	w.queue(ChangeEvent{Type: eventType(event.Op), Path: event.Name})
}

func (w *Watcher) accept(path string) bool {
	for _, filter := range w.filters {
		if !filter(path) {
			return false
		}
	}
	return true
}

func (w *Watcher) queue(event ChangeEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[event.Path] = event
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) == 0 {
		return
	}
	batch := make([]ChangeEvent, 0, len(w.pending))
	for _, event := range w.pending {
		batch = append(batch, event)
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })

	select {
	case w.batches <- batch:
		w.pending = map[string]ChangeEvent{}
	default:
		// Consumer is behind; keep the events for the next flush.
		w.timer = time.AfterFunc(w.delay, w.flush)
	}
}

func (w *Watcher) dispatch(ctx context.Context, batch []ChangeEvent) {
	w.mu.Lock()
	handlers := append([]Handler(nil), w.handlers...)
	w.mu.Unlock()

	w.logger.Debug("watcher.batch", "events", len(batch))
	for _, handler := range handlers {
		if err := handler(ctx, batch); err != nil {
			w.logger.Error("watcher.handler.failed", "error", err)
		}
	}
}

func eventType(op fsnotify.Op) EventType {
	switch {
	case op.Has(fsnotify.Create):
		return EventCreated
	case op.Has(fsnotify.Remove):
		return EventDeleted
	case op.Has(fsnotify.Rename):
		return EventRenamed
	default:
		return EventModified
	}
}

// All accepts a path only when every filter accepts it.
func All(filters ...Filter) Filter {
	return func(path string) bool {
		for _, filter := range filters {
			if filter != nil && !filter(path) {
				return false
			}
		}
		return true
	}
}

// NoHiddenFilter rejects paths with a segment starting with a dot.
func NoHiddenFilter(path string) bool {
	return !isHidden(path)
}

func isHidden(path string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(filepath.Clean(path)), "/") {
		if len(segment) > 1 && segment[0] == '.' && segment != ".." {
			return true
		}
	}
	return false
}

// ExcludeDirFilter rejects paths inside dir.
func ExcludeDirFilter(dir string) Filter {
	root, err := filepath.Abs(dir)
	if err != nil {
		root = filepath.Clean(dir)
	}
	return func(path string) bool {
		abs, err := filepath.Abs(path)
		if err != nil {
			return true
		}
		return abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator))
	}
}

// ExcludePrefixFilter rejects the file at name and its siblings sharing the
// name as a prefix, such as a sqlite database and its -journal or -wal files.
func ExcludePrefixFilter(name string) Filter {
	prefix, err := filepath.Abs(name)
	if err != nil {
		prefix = filepath.Clean(name)
	}
	return func(path string) bool {
		abs, err := filepath.Abs(path)
		if err != nil {
			return true
		}
		return !strings.HasPrefix(abs, prefix)
	}
}
