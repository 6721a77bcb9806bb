package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	dom "github.com/codewithkim/todo-api/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyGeneration = "todo:gen"
	keyPagePrefix = "todo:page:"
)

// TodoCache caches list pages in Redis. Keys embed a generation number;
// Invalidate bumps it so pages written before a mutation are never read again.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// GetPage returns the cached page for q, or nil on a miss. gen is the
// generation the lookup used; pass it back to SetPage.
func (c *TodoCache) GetPage(ctx context.Context, q dom.ListQuery) (*dom.TodoPage, int64, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, err
	}
	b, err := c.rdb.Get(ctx, PageKey(gen, q)).Bytes()
	if err == redis.Nil {
		return nil, gen, nil
	}
	if err != nil {
		return nil, gen, err
	}
	var page dom.TodoPage
	if err := json.Unmarshal(b, &page); err != nil {
		return nil, gen, err
	}
	return &page, gen, nil
}

// SetPage stores page for q under generation gen.
func (c *TodoCache) SetPage(ctx context.Context, gen int64, q dom.ListQuery, page dom.TodoPage) error {
	b, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, PageKey(gen, q), b, c.ttl).Err()
}

// Invalidate makes every cached page unreachable (cache invalidation on write).
func (c *TodoCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, keyGeneration).Err()
}

func (c *TodoCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, keyGeneration).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// PageKey is the Redis key of a normalized list query at generation gen.
func PageKey(gen int64, q dom.ListQuery) string {
	completed := "any"
	if q.IsCompleted != nil {
		completed = strconv.FormatBool(*q.IsCompleted)
	}
	parts := []string{
		strconv.FormatInt(gen, 10),
		string(q.SortBy),
		string(q.SortDir),
		strconv.Itoa(q.Page),
		strconv.Itoa(q.PerPage),
		completed,
		strings.ToLower(q.Search),
	}
	return keyPagePrefix + strings.Join(parts, ":")
}
