package server

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/Tomlord1122/todo-api/internal/config"
	"github.com/Tomlord1122/todo-api/internal/database"
	"github.com/Tomlord1122/todo-api/internal/logging"
	"github.com/Tomlord1122/todo-api/internal/service"
)

type Server struct {
	todoService    service.TodoService
	db             database.Service
	logger         *log.Logger
	allowedOrigins []string
}

// NewServer wires the handlers into an *http.Server. db may be nil, in
// which case /health/db reports the database as unavailable.
func NewServer(cfg config.ServerConfig, todoService service.TodoService, dbService database.Service, logger *log.Logger) *http.Server {
	appServer := &Server{
		todoService:    todoService,
		db:             dbService,
		logger:         logger,
		allowedOrigins: cfg.AllowedOrigins,
	}

	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  cfg.IdleTimeout.Duration,
		ReadTimeout:  cfg.ReadTimeout.Duration,
		WriteTimeout: cfg.WriteTimeout.Duration,
		ErrorLog:     logging.StandardLog(logger, log.ErrorLevel),
	}
}
