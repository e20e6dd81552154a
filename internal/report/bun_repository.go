package report

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-partials/internal/identity"
	"github.com/goliatone/go-partials/pkg/interfaces"
)

var errNoDatabase = errors.New("report: bun repository requires a database")

// BunRepository persists lint runs using a Bun-backed database.
type BunRepository struct {
	db          *bun.DB
	broadcaster *changeBroadcaster
}

var _ Repository = (*BunRepository)(nil)

// NewBunRepository constructs a Bun-backed repository. Call EnsureSchema
// before first use on a fresh database.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:          db,
		broadcaster: newChangeBroadcaster(),
	}
}

// OpenSQLite opens a sqlite database through the mattn driver and wraps it
// in bun. sqlite serialises writers, so a single connection is used.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

// EnsureSchema creates the report tables when they do not exist.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return errNoDatabase
	}
	for _, model := range []any{(*runModel)(nil), (*diagnosticModel)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	_, err := db.NewCreateIndex().
		Model((*diagnosticModel)(nil)).
		Index("lint_diagnostics_run_idx").
		IfNotExists().
		Column("run_id").
		Exec(ctx)
	return err
}

// SaveRun stores the run and its diagnostics in one transaction.
func (r *BunRepository) SaveRun(ctx context.Context, run Run) (Run, error) {
	if r.db == nil {
		return Run{}, errNoDatabase
	}
	stored := prepare(run, time.Now())

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		model := modelFromRun(stored)
		if _, err := tx.NewInsert().Model(&model).Exec(ctx); err != nil {
			return err
		}
		if len(stored.Diagnostics) == 0 {
			return nil
		}
		rows := make([]diagnosticModel, 0, len(stored.Diagnostics))
		for i, d := range stored.Diagnostics {
			rows = append(rows, modelFromDiagnostic(stored.ID, i, d))
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		return Run{}, err
	}

	r.broadcaster.Broadcast(newChangeEvent(ChangeSaved, stored))
	return stored, nil
}

// GetRun returns a run with its diagnostics or ErrRunNotFound.
func (r *BunRepository) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	if r.db == nil {
		return Run{}, errNoDatabase
	}
	var model runModel
	if err := r.db.NewSelect().Model(&model).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrRunNotFound
		}
		return Run{}, err
	}

	var rows []diagnosticModel
	if err := r.db.NewSelect().Model(&rows).Where("run_id = ?", id).Order("position ASC").Scan(ctx); err != nil {
		return Run{}, err
	}

	run := modelToRun(&model)
	for i := range rows {
		run.Diagnostics = append(run.Diagnostics, modelToDiagnostic(&rows[i]))
	}
	return run, nil
}

// ListRuns returns runs newest first.
func (r *BunRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if r.db == nil {
		return nil, errNoDatabase
	}
	var models []runModel
	query := r.db.NewSelect().Model(&models).Order("started_at DESC", "id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}

	out := make([]Run, 0, len(models))
	for i := range models {
		out = append(out, modelToRun(&models[i]))
	}
	return out, nil
}

// ListDiagnostics returns matching diagnostics ordered by file and line.
func (r *BunRepository) ListDiagnostics(ctx context.Context, filter DiagnosticFilter) ([]interfaces.Diagnostic, error) {
	if r.db == nil {
		return nil, errNoDatabase
	}
	var rows []diagnosticModel
	query := r.db.NewSelect().Model(&rows)
	if filter.RunID != uuid.Nil {
		query = query.Where("run_id = ?", filter.RunID)
	}
	if filter.FilePath != "" {
		query = query.Where("page_id = ?", identity.PageUUID(filter.FilePath))
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", string(filter.Severity))
	}
	if err := query.Order("file_path ASC", "start_line ASC", "start_column ASC").Scan(ctx); err != nil {
		return nil, err
	}

	out := make([]interfaces.Diagnostic, 0, len(rows))
	for i := range rows {
		out = append(out, modelToDiagnostic(&rows[i]))
	}
	return out, nil
}

// DeleteRun removes a run and its diagnostics.
func (r *BunRepository) DeleteRun(ctx context.Context, id uuid.UUID) error {
	if r.db == nil {
		return errNoDatabase
	}
	var model runModel
	if err := r.db.NewSelect().Model(&model).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRunNotFound
		}
		return err
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*diagnosticModel)(nil)).Where("run_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().Model(&model).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}

	r.broadcaster.Broadcast(newChangeEvent(ChangeDeleted, modelToRun(&model)))
	return nil
}

// Subscribe delivers change events until the context is cancelled.
func (r *BunRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}

type runModel struct {
	bun.BaseModel `bun:"table:lint_runs"`

	ID         uuid.UUID `bun:"id,pk,type:varchar(36)"`
	Directory  string    `bun:"directory"`
	Modes      string    `bun:"modes"`
	StartedAt  time.Time `bun:"started_at"`
	FinishedAt time.Time `bun:"finished_at"`
	Pages      int       `bun:"pages"`
	Errors     int       `bun:"errors"`
	Warnings   int       `bun:"warnings"`
}

type diagnosticModel struct {
	bun.BaseModel `bun:"table:lint_diagnostics"`

	ID          int64     `bun:"id,pk,autoincrement"`
	RunID       uuid.UUID `bun:"run_id,type:varchar(36)"`
	PageID      uuid.UUID `bun:"page_id,type:varchar(36)"`
	Position    int       `bun:"position"`
	FilePath    string    `bun:"file_path"`
	Message     string    `bun:"message"`
	Source      string    `bun:"source"`
	Rule        string    `bun:"rule"`
	Severity    string    `bun:"severity"`
	StartLine   int       `bun:"start_line"`
	StartColumn int       `bun:"start_column"`
	EndLine     int       `bun:"end_line"`
	EndColumn   int       `bun:"end_column"`
}

func modelFromRun(run Run) runModel {
	return runModel{
		ID:         run.ID,
		Directory:  run.Directory,
		Modes:      run.Modes,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Pages:      run.Pages,
		Errors:     run.Errors,
		Warnings:   run.Warnings,
	}
}

func modelToRun(model *runModel) Run {
	if model == nil {
		return Run{}
	}
	return Run{
		ID:         model.ID,
		Directory:  model.Directory,
		Modes:      model.Modes,
		StartedAt:  model.StartedAt.UTC(),
		FinishedAt: model.FinishedAt.UTC(),
		Pages:      model.Pages,
		Errors:     model.Errors,
		Warnings:   model.Warnings,
	}
}

func modelFromDiagnostic(runID uuid.UUID, position int, d interfaces.Diagnostic) diagnosticModel {
	return diagnosticModel{
		RunID:       runID,
		PageID:      identity.PageUUID(d.FilePath),
		Position:    position,
		FilePath:    d.FilePath,
		Message:     d.Message,
		Source:      d.Source,
		Rule:        d.Rule,
		Severity:    string(d.Severity),
		StartLine:   d.Line,
		StartColumn: d.Column,
		EndLine:     d.EndLine,
		EndColumn:   d.EndColumn,
	}
}

func modelToDiagnostic(model *diagnosticModel) interfaces.Diagnostic {
	return interfaces.Diagnostic{
		FilePath:  model.FilePath,
		Message:   model.Message,
		Source:    model.Source,
		Rule:      model.Rule,
		Severity:  interfaces.Severity(model.Severity),
		Line:      model.StartLine,
		Column:    model.StartColumn,
		EndLine:   model.EndLine,
		EndColumn: model.EndColumn,
	}
}
