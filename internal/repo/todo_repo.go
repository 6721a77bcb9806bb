package repo

import (
	"context"
	"errors"
	"time"

	dom "github.com/codewithkim/todo-api/internal/domain"
)

var (
	// ErrNotFound is returned when no todo has the requested id.
	ErrNotFound = errors.New("todo not found")
	// ErrTitleTaken is returned when a write hits the unique index on title.
	ErrTitleTaken = errors.New("todo title already exists")
)

// TodoRepo persists and queries todos. Writes are atomic per row.
type TodoRepo interface {
	GetByID(ctx context.Context, id int64) (dom.Todo, error)
	// ExistsWithTitle ignores the row with excludeID; 0 excludes nothing.
	ExistsWithTitle(ctx context.Context, title string, excludeID int64) (bool, error)
	Create(ctx context.Context, t dom.Todo) (dom.Todo, error)
	Update(ctx context.Context, id int64, changes dom.TodoChanges, at time.Time) (dom.Todo, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, q dom.ListQuery) ([]dom.Todo, int, error)
	Ping(ctx context.Context) error
}

// todoRow is the column mapping shared by the pgx and sqlx scanners.
type todoRow struct {
	ID            int64      `db:"id"`
	Title         string     `db:"title"`
	Description   *string    `db:"description"`
	IsCompleted   bool       `db:"is_completed"`
	TargetEndDate *time.Time `db:"target_end_date"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func (r todoRow) toDomain() dom.Todo {
	t := dom.Todo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.TargetEndDate != nil {
		d := r.TargetEndDate.UTC()
		t.TargetEndDate = &d
	}
	return t
}

func rowsToDomain(rows []todoRow) []dom.Todo {
	out := make([]dom.Todo, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out
}
