package report

import (
	"context"
	"testing"
	"time"

	"github.com/uptrace/bun"
)

func TestBunRepository_Runs(t *testing.T) {
	exerciseRepository(t, NewBunRepository(newTestDB(t, "report_runs")))
}

func TestBunRepository_RequiresDatabase(t *testing.T) {
	repo := NewBunRepository(nil)
	if _, err := repo.ListRuns(context.Background(), 0); err == nil {
		t.Fatalf("expected an error without a database")
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db := newTestDB(t, "report_schema")
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("second EnsureSchema() error = %v", err)
	}
}

func newTestDB(t *testing.T, name string) *bun.DB {
	t.Helper()

	db, err := OpenSQLite("file:" + name + "?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}
