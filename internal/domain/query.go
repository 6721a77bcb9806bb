package domain

import (
	"math"
	"strings"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
	// MaxPage keeps Offset and the last row number of a page within int.
	MaxPage = math.MaxInt / MaxPerPage
)

// SortColumn is a column the list endpoint may order by.
type SortColumn string

const (
	SortByID          SortColumn = "id"
	SortByTitle       SortColumn = "title"
	SortByCreatedAt   SortColumn = "created_at"
	SortByUpdatedAt   SortColumn = "updated_at"
	SortByIsCompleted SortColumn = "is_completed"
)

// ParseSortColumn maps s onto the allowed columns. Anything else, including "", is created_at.
func ParseSortColumn(s string) SortColumn {
	switch c := SortColumn(s); c {
	case SortByID, SortByTitle, SortByCreatedAt, SortByUpdatedAt, SortByIsCompleted:
		return c
	default:
		return SortByCreatedAt
	}
}

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection returns asc only for "asc" in any case; everything else is desc.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// ListQuery describes one page of the todo list.
// Search and IsCompleted are ANDed; nil IsCompleted means no restriction.
type ListQuery struct {
	Search      string
	IsCompleted *bool
	SortBy      SortColumn
	SortDir     SortDirection
	Page        int
	PerPage     int
}

// Normalized returns q with every field inside its allowed range.
func (q ListQuery) Normalized() ListQuery {
	q.Search = strings.TrimSpace(q.Search)
	q.SortBy = ParseSortColumn(string(q.SortBy))
	q.SortDir = ParseSortDirection(string(q.SortDir))
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.PerPage == 0 {
		q.PerPage = DefaultPerPage
	}
	q.PerPage = ClampPerPage(q.PerPage)
	return q
}

// Offset is the number of rows skipped before this page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// ClampPerPage limits n to [1, MaxPerPage].
func ClampPerPage(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxPerPage {
		return MaxPerPage
	}
	return n
}

// TodoPage is one page of a list query.
type TodoPage struct {
	Items   []Todo
	Total   int
	Page    int
	PerPage int
}

// LastPage is ceil(Total/PerPage), at least 1.
func (p TodoPage) LastPage() int {
	if p.PerPage < 1 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}
