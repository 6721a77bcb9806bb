package repo

import (
	"strings"
	"time"

	dom "github.com/codewithkim/todo-api/internal/domain"
)

// Statements are written with "?" placeholders; PGTodoRepo rebinds them to $N.

const todoColumns = "id, title, description, is_completed, target_end_date, created_at, updated_at"

const (
	selectByIDSQL   = "SELECT " + todoColumns + " FROM todos WHERE id = ?"
	existsTitleSQL  = "SELECT EXISTS (SELECT 1 FROM todos WHERE title = ? AND id <> ?)"
	insertTodoSQL   = "INSERT INTO todos (title, description, is_completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	deleteTodoSQL   = "DELETE FROM todos WHERE id = ?"
	likeEscapeChar  = `\`
	likeEscapeQuery = `ESCAPE '\'`
)

var likeEscaper = strings.NewReplacer(
	likeEscapeChar, likeEscapeChar+likeEscapeChar,
	"%", likeEscapeChar+"%",
	"_", likeEscapeChar+"_",
)

// listStatement is the page query and its matching count query.
type listStatement struct {
	List      string
	ListArgs  []any
	Count     string
	CountArgs []any
}

// buildListQuery composes search AND filter, the sort with an id tie-breaker, and LIMIT/OFFSET.
// q must already be normalized.
func buildListQuery(q dom.ListQuery) listStatement {
	var conditions []string
	var args []any

	if q.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(q.Search)) + "%"
		conditions = append(conditions,
			"(LOWER(title) LIKE ? "+likeEscapeQuery+" OR LOWER(description) LIKE ? "+likeEscapeQuery+")")
		args = append(args, pattern, pattern)
	}
	if q.IsCompleted != nil {
		conditions = append(conditions, "is_completed = ?")
		args = append(args, *q.IsCompleted)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	listArgs := append(append([]any{}, args...), q.PerPage, q.Offset())
	return listStatement{
		List:      "SELECT " + todoColumns + " FROM todos" + where + orderBy(q) + " LIMIT ? OFFSET ?",
		ListArgs:  listArgs,
		Count:     "SELECT COUNT(*) FROM todos" + where,
		CountArgs: args,
	}
}

// orderBy interpolates the column; SortColumn values come from a closed set.
func orderBy(q dom.ListQuery) string {
	dir := "DESC"
	if q.SortDir == dom.SortAsc {
		dir = "ASC"
	}
	col := dom.ParseSortColumn(string(q.SortBy))
	if col == dom.SortByID {
		return " ORDER BY id " + dir
	}
	return " ORDER BY " + string(col) + " " + dir + ", id ASC"
}

// buildUpdate sets only the present fields plus updated_at.
func buildUpdate(id int64, ch dom.TodoChanges, at time.Time) (string, []any) {
	var sets []string
	var args []any
	if ch.Title.Set {
		sets = append(sets, "title = ?")
		args = append(args, ch.Title.Value)
	}
	if ch.Description.Set {
		sets = append(sets, "description = ?")
		args = append(args, nullableString(ch.Description.Value))
	}
	if ch.IsCompleted.Set {
		sets = append(sets, "is_completed = ?")
		args = append(args, ch.IsCompleted.Value)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, at.UTC(), id)
	return "UPDATE todos SET " + strings.Join(sets, ", ") + " WHERE id = ?", args
}

// nullableString passes nil as an untyped NULL so every driver binds it the same way.
func nullableString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
