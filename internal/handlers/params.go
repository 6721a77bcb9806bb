package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	dom "github.com/codewithkim/todo-api/internal/domain"
	"github.com/codewithkim/todo-api/internal/dto"

	"github.com/gin-gonic/gin"
)

// listQueryFromRequest reads page, per_page, sortBy, sortDir, search and filter[is_completed].
func listQueryFromRequest(c *gin.Context) dom.ListQuery {
	return dom.ListQuery{
		Search:      c.Query("search"),
		IsCompleted: parseCompletedFilter(c.QueryMap("filter")["is_completed"]),
		SortBy:      dom.ParseSortColumn(c.Query("sortBy")),
		SortDir:     dom.ParseSortDirection(c.Query("sortDir")),
		Page:        parsePage(c.Query("page")),
		PerPage:     parsePerPage(c.Query("per_page")),
	}
}

// parsePage reads page; values past MaxPage, including ones that overflow int, become MaxPage.
func parsePage(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		return dom.MaxPage
	}
	if err != nil || n < 1 {
		return 1
	}
	return min(n, dom.MaxPage)
}

func parsePerPage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return dom.DefaultPerPage
	}
	return dom.ClampPerPage(n)
}

// parseCompletedFilter returns nil when the filter is absent, empty or unrecognized.
func parseCompletedFilter(raw string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true":
		v = true
	case "0", "false":
		v = false
	default:
		return nil
	}
	return &v
}

// parseID answers 404 for ids that cannot name a row.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
		return 0, false
	}
	return id, true
}

// pageURL is the current request URL with page replaced.
func pageURL(c *gin.Context, page int) string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	u.Host = c.Request.Host
	u.Scheme = "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	return u.String()
}
