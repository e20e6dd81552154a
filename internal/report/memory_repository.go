package report

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-partials/pkg/interfaces"
)

// MemoryRepository stores lint runs in-memory.
type MemoryRepository struct {
	mu          sync.RWMutex
	runs        map[uuid.UUID]Run
	broadcaster *changeBroadcaster
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository constructs an in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		runs:        map[uuid.UUID]Run{},
		broadcaster: newChangeBroadcaster(),
	}
}

// SaveRun stores run, emitting a change event.
func (r *MemoryRepository) SaveRun(_ context.Context, run Run) (Run, error) {
	stored := prepare(run, time.Now())

	r.mu.Lock()
	r.runs[stored.ID] = stored
	r.mu.Unlock()

	r.broadcaster.Broadcast(newChangeEvent(ChangeSaved, stored))
	return stored, nil
}

// GetRun returns a run with its diagnostics or ErrRunNotFound.
func (r *MemoryRepository) GetRun(_ context.Context, id uuid.UUID) (Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return Run{}, ErrRunNotFound
	}
	run.Diagnostics = append([]interfaces.Diagnostic(nil), run.Diagnostics...)
	return run, nil
}

// ListRuns returns runs newest first.
func (r *MemoryRepository) ListRuns(_ context.Context, limit int) ([]Run, error) {
	r.mu.RLock()
	out := make([]Run, 0, len(r.runs))
	for _, run := range r.runs {
		run.Diagnostics = nil
		out = append(out, run)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListDiagnostics returns matching diagnostics ordered by file and line.
func (r *MemoryRepository) ListDiagnostics(_ context.Context, filter DiagnosticFilter) ([]interfaces.Diagnostic, error) {
	r.mu.RLock()
	var out []interfaces.Diagnostic
	for id, run := range r.runs {
		for _, d := range run.Diagnostics {
			if filter.match(id, d) {
				out = append(out, d)
			}
		}
	}
	r.mu.RUnlock()

	sortDiagnostics(out)
	return out, nil
}

// DeleteRun removes a run and emits a change event.
func (r *MemoryRepository) DeleteRun(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	run, ok := r.runs[id]
	if !ok {
		r.mu.Unlock()
		return ErrRunNotFound
	}
	delete(r.runs, id)
	r.mu.Unlock()

	r.broadcaster.Broadcast(newChangeEvent(ChangeDeleted, run))
	return nil
}

// Subscribe delivers change events until the context is cancelled.
func (r *MemoryRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}

func sortDiagnostics(items []interfaces.Diagnostic) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].FilePath != items[j].FilePath {
			return items[i].FilePath < items[j].FilePath
		}
		if items[i].Line != items[j].Line {
			return items[i].Line < items[j].Line
		}
		return items[i].Column < items[j].Column
	})
}
