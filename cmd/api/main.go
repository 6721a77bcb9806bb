// @title           Todo API
// @version         1.0
// @description     Todo CRUD API with search, filter, sort and pagination.
// @host            localhost:8080
// @BasePath        /
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codewithkim/todo-api/internal/app"
	"github.com/codewithkim/todo-api/internal/config"
	"github.com/codewithkim/todo-api/internal/logging"

	_ "github.com/codewithkim/todo-api/docs"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := logging.New(os.Stdout, cfg.App.Env, cfg.App.LogLevel)
	slog.SetDefault(log)
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Info("config loaded, connecting to storage", "driver", cfg.DB.Driver, "cache", cfg.Redis.Enabled())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Error("app init", "error", err)
		os.Exit(1)
	}
	log.Info("app ready, starting HTTP server")
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown", "error", err)
	}

	if err := application.Close(shutdownCtx); err != nil {
		log.Error("app close", "error", err)
	}
	log.Info("shutdown complete")
}
