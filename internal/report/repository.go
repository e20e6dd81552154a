// Package report stores lint runs and the diagnostics they produced so a
// build can be compared with earlier ones.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-partials/pkg/interfaces"
)

// ErrRunNotFound indicates that no run exists for the requested id.
var ErrRunNotFound = errors.New("report: run not found")

// Run is one lint pass over a content directory.
type Run struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	Directory  string    `json:"directory" yaml:"directory"`
	Modes      string    `json:"modes" yaml:"modes"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Pages      int       `json:"pages" yaml:"pages"`
	Errors     int       `json:"errors" yaml:"errors"`
	Warnings   int       `json:"warnings" yaml:"warnings"`
	// Diagnostics is only populated by GetRun.
	Diagnostics []interfaces.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Count fills Errors and Warnings from Diagnostics.
func (r *Run) Count() {
	r.Errors, r.Warnings = 0, 0
	for _, d := range r.Diagnostics {
		switch d.Severity {
		case interfaces.SeverityError:
			r.Errors++
		case interfaces.SeverityWarning:
			r.Warnings++
		}
	}
}

// DiagnosticFilter narrows ListDiagnostics. Zero fields match everything.
type DiagnosticFilter struct {
	RunID    uuid.UUID
	FilePath string
	Severity interfaces.Severity
}

func (f DiagnosticFilter) match(runID uuid.UUID, d interfaces.Diagnostic) bool {
	if f.RunID != uuid.Nil && f.RunID != runID {
		return false
	}
	if f.FilePath != "" && f.FilePath != d.FilePath {
		return false
	}
	if f.Severity != "" && f.Severity != d.Severity {
		return false
	}
	return true
}

// Repository persists lint runs and emits change notifications.
type Repository interface {
	// SaveRun stores run with its diagnostics. A nil ID is assigned.
	SaveRun(ctx context.Context, run Run) (Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (Run, error)
	// ListRuns returns runs newest first, without diagnostics. A limit of
	// zero or less returns every run.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	ListDiagnostics(ctx context.Context, filter DiagnosticFilter) ([]interfaces.Diagnostic, error)
	DeleteRun(ctx context.Context, id uuid.UUID) error
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// ChangeType enumerates run change events.
type ChangeType string

const (
	// ChangeSaved indicates a run was stored.
	ChangeSaved ChangeType = "saved"
	// ChangeDeleted indicates a run was removed.
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent reports run mutations to interested subscribers.
type ChangeEvent struct {
	Type ChangeType
	Run  Run
}

func newChangeEvent(changeType ChangeType, run Run) ChangeEvent {
	run.Diagnostics = nil
	return ChangeEvent{
		Type: changeType,
		Run:  run,
	}
}

func prepare(run Run, now time.Time) Run {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = now
	}
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()
	run.Diagnostics = append([]interfaces.Diagnostic(nil), run.Diagnostics...)
	run.Count()
	return run
}
