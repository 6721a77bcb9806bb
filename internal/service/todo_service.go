package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codewithkim/todo-api/internal/cache"
	dom "github.com/codewithkim/todo-api/internal/domain"
	"github.com/codewithkim/todo-api/internal/metrics"
	"github.com/codewithkim/todo-api/internal/repo"

	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("title already exists")
	// ErrStorage wraps every failure of the backing store that is not one of the above.
	ErrStorage = errors.New("storage failure")
)

type TodoService struct {
	repo    repo.TodoRepo
	cache   *cache.TodoCache
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time
	sf      singleflight.Group
}

type Option func(*TodoService)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *TodoService) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *TodoService) { s.log = l }
}

// WithClock replaces time.Now for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *TodoService) { s.now = now }
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(r repo.TodoRepo, c *cache.TodoCache, opts ...Option) *TodoService {
	s := &TodoService{
		repo:  r,
		cache: c,
		log:   slog.Default(),
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns one page of todos. q is normalized first.
func (s *TodoService) List(ctx context.Context, q dom.ListQuery) (dom.TodoPage, error) {
	q = q.Normalized()
	if s.cache == nil {
		return s.load(ctx, q)
	}

	cached, gen, err := s.cache.GetPage(ctx, q)
	if err != nil {
		s.metrics.CacheLookup("error")
		s.log.WarnContext(ctx, "list cache read failed", "error", err)
		return s.load(ctx, q)
	}
	if cached != nil {
		s.metrics.CacheLookup("hit")
		return *cached, nil
	}
	s.metrics.CacheLookup("miss")

	v, err, _ := s.sf.Do(cache.PageKey(gen, q), func() (interface{}, error) {
		page, err := s.load(ctx, q)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetPage(ctx, gen, q, page); err != nil {
			s.log.WarnContext(ctx, "list cache write failed", "error", err)
		}
		return page, nil
	})
	if err != nil {
		return dom.TodoPage{}, err
	}
	return v.(dom.TodoPage), nil
}

func (s *TodoService) load(ctx context.Context, q dom.ListQuery) (dom.TodoPage, error) {
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return dom.TodoPage{}, storageErr("list todos", err)
	}
	return dom.TodoPage{Items: items, Total: total, Page: q.Page, PerPage: q.PerPage}, nil
}

func (s *TodoService) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.Todo{}, mapRepoErr("get todo", err)
	}
	return t, nil
}

// Create inserts a todo built from changes. A taken title is ErrConflict,
// whether the pre-check or the unique index catches it.
func (s *TodoService) Create(ctx context.Context, changes dom.TodoChanges) (dom.Todo, error) {
	if err := s.checkTitle(ctx, changes.Title.Value, 0); err != nil {
		return dom.Todo{}, err
	}

	now := s.now()
	t, err := s.repo.Create(ctx, changes.Apply(dom.Todo{CreatedAt: now, UpdatedAt: now}))
	if err != nil {
		return dom.Todo{}, s.mapWriteErr("create todo", err)
	}
	s.invalidateCache(ctx)
	return t, nil
}

// Update applies changes to an existing todo. Replace and patch differ only
// in which changes validation lets through.
func (s *TodoService) Update(ctx context.Context, id int64, changes dom.TodoChanges) (dom.Todo, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.Todo{}, mapRepoErr("get todo", err)
	}
	return s.Apply(ctx, existing, changes)
}

// Apply writes changes onto existing, a row the caller has already loaded.
func (s *TodoService) Apply(ctx context.Context, existing dom.Todo, changes dom.TodoChanges) (dom.Todo, error) {
	id := existing.ID
	if changes.Title.Set {
		if err := s.checkTitle(ctx, changes.Title.Value, id); err != nil {
			return dom.Todo{}, err
		}
	}

	at := s.now()
	if at.Before(existing.UpdatedAt) {
		at = existing.UpdatedAt
	}
	t, err := s.repo.Update(ctx, id, changes, at)
	if err != nil {
		return dom.Todo{}, s.mapWriteErr("update todo", err)
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TodoService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return storageErr("delete todo", err)
	}
	if !deleted {
		return ErrNotFound
	}
	s.invalidateCache(ctx)
	return nil
}

// Ping reports whether the store is reachable.
func (s *TodoService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return storageErr("ping", err)
	}
	return nil
}

func (s *TodoService) checkTitle(ctx context.Context, title string, excludeID int64) error {
	exists, err := s.repo.ExistsWithTitle(ctx, title, excludeID)
	if err != nil {
		return storageErr("check title", err)
	}
	if exists {
		s.metrics.Conflict("precheck")
		return ErrConflict
	}
	return nil
}

func (s *TodoService) mapWriteErr(op string, err error) error {
	if errors.Is(err, repo.ErrTitleTaken) {
		s.metrics.Conflict("constraint")
		return ErrConflict
	}
	return mapRepoErr(op, err)
}

func (s *TodoService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.ErrorContext(ctx, "list cache invalidation failed", "error", err)
	}
}

func mapRepoErr(op string, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return storageErr(op, err)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
