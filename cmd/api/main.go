package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Tomlord1122/todo-api/internal/config"
	"github.com/Tomlord1122/todo-api/internal/database"
	"github.com/Tomlord1122/todo-api/internal/logging"
	"github.com/Tomlord1122/todo-api/internal/repository"
	"github.com/Tomlord1122/todo-api/internal/server"
	"github.com/Tomlord1122/todo-api/internal/service"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, timeout time.Duration, logger *log.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	ctxTimeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}

	if err := dbService.Close(); err != nil {
		logger.Error("closing database connection pool", "err", err)
	}

	logger.Info("server exiting")
	done <- true
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log)

	dbService, err := database.New(cfg.Database, logger)
	if err != nil {
		return err
	}

	if cfg.Database.AutoMigrate {
		logger.Info("running database auto-migration")
		if err := dbService.Migrate(); err != nil {
			_ = dbService.Close()
			return err
		}
	}

	todoRepo := repository.NewGormTodoRepository(dbService.GetDB())
	todoService := service.NewTodoService(todoRepo, logger)
	apiServer := server.NewServer(cfg.Server, todoService, dbService, logger)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, cfg.Server.ShutdownTimeout.Duration, logger, done)

	logger.Info("starting server", "addr", apiServer.Addr)
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_ = dbService.Close()
		return fmt.Errorf("http server: %w", err)
	}

	<-done
	logger.Info("graceful shutdown complete")
	return nil
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (default: $TODO_CONFIG or ./todo.toml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}
