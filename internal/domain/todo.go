package domain

import "time"

// Todo is the single managed entity.
// Does not depend on Gin, Postgres, SQLite or Redis.
type Todo struct {
	ID            int64
	Title         string
	Description   *string
	IsCompleted   bool
	TargetEndDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Optional marks whether a value was supplied at all, independent of the value itself.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns a supplied Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// TodoChanges is the set of fields a write applies. Unset fields are left untouched.
// Description set to a nil pointer clears it.
type TodoChanges struct {
	Title       Optional[string]
	Description Optional[*string]
	IsCompleted Optional[bool]
}

// Apply returns t with the present fields of c copied in.
func (c TodoChanges) Apply(t Todo) Todo {
	if c.Title.Set {
		t.Title = c.Title.Value
	}
	if c.Description.Set {
		t.Description = c.Description.Value
	}
	if c.IsCompleted.Set {
		t.IsCompleted = c.IsCompleted.Value
	}
	return t
}
