package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dom "github.com/codewithkim/todo-api/internal/domain"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteTodoRepo implements TodoRepo with a local SQLite database.
type SQLiteTodoRepo struct {
	db *sqlx.DB
}

func NewSQLiteTodoRepo(db *sqlx.DB) *SQLiteTodoRepo {
	return &SQLiteTodoRepo{db: db}
}

// OpenSQLite opens the database at path. ":memory:" is pinned to a single
// connection so every query sees the same database.
func OpenSQLite(path string) (*sqlx.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	return db, nil
}

func (r *SQLiteTodoRepo) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *SQLiteTodoRepo) getByID(ctx context.Context, q sqlx.QueryerContext, id int64) (dom.Todo, error) {
	var row todoRow
	if err := sqlx.GetContext(ctx, q, &row, selectByIDSQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, fmt.Errorf("get todo %d: %w", id, err)
	}
	return row.toDomain(), nil
}

func (r *SQLiteTodoRepo) ExistsWithTitle(ctx context.Context, title string, excludeID int64) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, existsTitleSQL, title, excludeID); err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return exists, nil
}

func (r *SQLiteTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return dom.Todo{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, insertTodoSQL,
		t.Title, nullableString(t.Description), t.IsCompleted, t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	if err != nil {
		return dom.Todo{}, wrapWriteErr("create todo", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return dom.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	out, err := r.getByID(ctx, tx, id)
	if err != nil {
		return dom.Todo{}, err
	}
	return out, tx.Commit()
}

func (r *SQLiteTodoRepo) Update(ctx context.Context, id int64, changes dom.TodoChanges, at time.Time) (dom.Todo, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return dom.Todo{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query, args := buildUpdate(id, changes, at)
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return dom.Todo{}, wrapWriteErr(fmt.Sprintf("update todo %d", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return dom.Todo{}, ErrNotFound
	}
	out, err := r.getByID(ctx, tx, id)
	if err != nil {
		return dom.Todo{}, err
	}
	return out, tx.Commit()
}

func (r *SQLiteTodoRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteTodoSQL, id)
	if err != nil {
		return false, fmt.Errorf("delete todo %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete todo %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *SQLiteTodoRepo) List(ctx context.Context, q dom.ListQuery) ([]dom.Todo, int, error) {
	st := buildListQuery(q)

	var total int
	if err := r.db.GetContext(ctx, &total, st.Count, st.CountArgs...); err != nil {
		return nil, 0, fmt.Errorf("count todos: %w", err)
	}

	var rows []todoRow
	if err := r.db.SelectContext(ctx, &rows, st.List, st.ListArgs...); err != nil {
		return nil, 0, fmt.Errorf("list todos: %w", err)
	}
	return rowsToDomain(rows), total, nil
}

func (r *SQLiteTodoRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
