package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/codewithkim/todo-api/internal/cache"
	"github.com/codewithkim/todo-api/internal/config"
	"github.com/codewithkim/todo-api/internal/handlers"
	"github.com/codewithkim/todo-api/internal/metrics"
	"github.com/codewithkim/todo-api/internal/repo"
	"github.com/codewithkim/todo-api/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, log *slog.Logger, m *metrics.Metrics, todoRepo repo.TodoRepo, todoCache *cache.TodoCache) {
	todoSvc := service.NewTodoService(todoRepo, todoCache,
		service.WithMetrics(m),
		service.WithLogger(log),
	)
	todoHandler := handlers.NewTodoHandler(todoSvc, log)

	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg, todoSvc))
	r.GET("/version", versionHandler(cfg))
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	registerTodoRoutes(r.Group(""), todoHandler)
	registerTodoRoutes(r.Group("/api"), todoHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Todo API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"metrics": "/metrics",
			"api":     "/todos",
		})
	}
}

func healthHandler(cfg config.Config, svc *service.TodoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := svc.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "env": cfg.App.Env, "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTodoRoutes(api *gin.RouterGroup, h *handlers.TodoHandler) {
	api.GET("/todos", h.List)
	api.POST("/todos", h.Create)
	api.GET("/todos/:id", h.GetByID)
	api.PUT("/todos/:id", h.Replace)
	api.PATCH("/todos/:id", h.Patch)
	api.DELETE("/todos/:id", h.Delete)
}
