package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dom "github.com/codewithkim/todo-api/internal/domain"
	"github.com/codewithkim/todo-api/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// PGTodoRepo implements TodoRepo with Postgres.
type PGTodoRepo struct {
	db *pgxpool.Pool
}

func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

// pg rebinds "?" placeholders to $N.
func pg(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}

func (r *PGTodoRepo) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	rows, err := r.db.Query(ctx, pg(selectByIDSQL), id)
	if err != nil {
		return dom.Todo{}, fmt.Errorf("get todo %d: %w", id, err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[todoRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, fmt.Errorf("get todo %d: %w", id, err)
	}
	return row.toDomain(), nil
}

func (r *PGTodoRepo) ExistsWithTitle(ctx context.Context, title string, excludeID int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, pg(existsTitleSQL), title, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return exists, nil
}

func (r *PGTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query := pg(insertTodoSQL + " RETURNING " + todoColumns)
	rows, err := r.db.Query(ctx, query,
		t.Title, nullableString(t.Description), t.IsCompleted, t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	if err != nil {
		return dom.Todo{}, wrapWriteErr("create todo", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[todoRow])
	if err != nil {
		return dom.Todo{}, wrapWriteErr("create todo", err)
	}
	return row.toDomain(), nil
}

func (r *PGTodoRepo) Update(ctx context.Context, id int64, changes dom.TodoChanges, at time.Time) (dom.Todo, error) {
	query, args := buildUpdate(id, changes, at)
	rows, err := r.db.Query(ctx, pg(query+" RETURNING "+todoColumns), args...)
	if err != nil {
		return dom.Todo{}, wrapWriteErr(fmt.Sprintf("update todo %d", id), err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[todoRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, wrapWriteErr(fmt.Sprintf("update todo %d", id), err)
	}
	return row.toDomain(), nil
}

func (r *PGTodoRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, pg(deleteTodoSQL), id)
	if err != nil {
		return false, fmt.Errorf("delete todo %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGTodoRepo) List(ctx context.Context, q dom.ListQuery) ([]dom.Todo, int, error) {
	st := buildListQuery(q)

	var total int
	if err := r.db.QueryRow(ctx, pg(st.Count), st.CountArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count todos: %w", err)
	}

	rows, err := r.db.Query(ctx, pg(st.List), st.ListArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list todos: %w", err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[todoRow])
	if err != nil {
		return nil, 0, fmt.Errorf("list todos: %w", err)
	}
	return rowsToDomain(list), total, nil
}

func (r *PGTodoRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// wrapWriteErr turns a unique index hit into ErrTitleTaken.
func wrapWriteErr(op string, err error) error {
	if utils.IsUniqueViolation(err) {
		return ErrTitleTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}
