package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/codewithkim/todo-api/internal/cache"
	"github.com/codewithkim/todo-api/internal/config"
	"github.com/codewithkim/todo-api/internal/metrics"
	"github.com/codewithkim/todo-api/internal/repo"
	"github.com/codewithkim/todo-api/migrations"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg     config.Config
	log     *slog.Logger
	repo    repo.TodoRepo
	closers []func()
	redis   *redis.Client
	metrics *metrics.Metrics
	router  *gin.Engine
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log, metrics: metrics.New()}

	if err := a.openStore(ctx); err != nil {
		a.close()
		return nil, err
	}

	if cfg.Redis.Enabled() {
		rdb, err := newRedis(ctx, cfg.Redis)
		if err != nil {
			a.close()
			return nil, err
		}
		a.redis = rdb
		a.closers = append(a.closers, func() { _ = rdb.Close() })
	}

	var todoCache *cache.TodoCache
	if a.redis != nil {
		todoCache = cache.NewTodoCache(a.redis, cfg.Redis.DefaultTTL.Duration())
	}
	a.router = newRouter(cfg, log, a.metrics, a.repo, todoCache)
	return a, nil
}

// NewWithRepo builds the router around an existing store, without Redis.
func NewWithRepo(cfg config.Config, log *slog.Logger, r repo.TodoRepo) *App {
	a := &App{cfg: cfg, log: log, repo: r, metrics: metrics.New()}
	a.router = newRouter(cfg, log, a.metrics, r, nil)
	return a
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Close releases Redis and the database in reverse order of opening.
// It returns ctx.Err() if ctx ends first; the remaining closes still run in the background.
func (a *App) Close(ctx context.Context) error {
	done := make(chan struct{})
	closers := a.closers
	a.closers = nil
	go func() {
		defer close(done)
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("close app: %w", ctx.Err())
	}
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.cfg.DB.Driver {
	case config.DriverSQLite:
		db, err := repo.OpenSQLite(a.cfg.DB.SQLitePath)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		if err := migrations.Up(ctx, db.DB, "sqlite"); err != nil {
			return err
		}
		a.repo = repo.NewSQLiteTodoRepo(db)
	default:
		pool, err := newPostgres(ctx, a.cfg.DB.DSN)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pool.Close)
		if err := runPGMigrations(ctx, a.cfg.DB.DSN); err != nil {
			return err
		}
		a.repo = repo.NewPGTodoRepo(pool)
	}
	a.log.Info("store ready", "driver", a.cfg.DB.Driver)
	return nil
}

func newPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func runPGMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("migrations open db: %w", err)
	}
	defer db.Close()
	return migrations.Up(ctx, db, "postgres")
}

func newRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func newRouter(cfg config.Config, log *slog.Logger, m *metrics.Metrics, r repo.TodoRepo, c *cache.TodoCache) *gin.Engine {
	engine := gin.New()

	engine.Use(
		requestID(),
		requestLogger(log),
		gin.CustomRecovery(recoverJSON(log)),
		m.Middleware(),
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
			ExposeHeaders: []string{"Content-Length", "Content-Type", requestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	Setup(engine, cfg, log, m, r, c)
	return engine
}
