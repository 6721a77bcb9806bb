package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/codewithkim/todo-api/internal/repo"
	"github.com/codewithkim/todo-api/migrations"
)

// NewTestRepo creates an in-memory SQLite store with all migrations applied.
// It automatically closes the database when the test completes.
func NewTestRepo(t *testing.T) *repo.SQLiteTodoRepo {
	t.Helper()

	db, err := repo.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing test db: %v", err)
		}
	})

	if err := migrations.Up(context.Background(), db.DB, "sqlite"); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return repo.NewSQLiteTodoRepo(db)
}

// Clock returns a fake clock starting at start that advances by step on every call.
func Clock(start time.Time, step time.Duration) func() time.Time {
	next := start.UTC()
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}
