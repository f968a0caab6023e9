package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/service"
)

const (
	msgTodoNotFound = "Todo not found"
	msgHealthy      = "Health check endpoint accessed successfully"
	msgNewAction    = "Github Actions New Action Version 2!!"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.healthHandler)
	r.Get("/health", s.healthHandler)
	r.Get("/health/db", s.dbHealthHandler)

	r.Route("/todos", s.todoRoutes)
	r.Route("/api/v1/todos", s.todoRoutes)

	return r
}

func (s *Server) todoRoutes(r chi.Router) {
	r.Get("/", s.listTodosHandler)
	r.Post("/", s.createTodoHandler)
	r.Get("/new_action", s.newActionHandler)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.getTodoHandler)
		r.Put("/", s.updateTodoHandler)
		r.Patch("/", s.updateTodoHandler)
		r.Delete("/", s.deleteTodoHandler)
		r.Patch("/toggle", s.toggleTodoHandler)
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": msgHealthy})
}

func (s *Server) newActionHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": msgNewAction})
}

func (s *Server) dbHealthHandler(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		respondWithError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	todos, err := s.todoService.ListTodos(r.Context(), service.ListTodosRequest{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
	})
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to retrieve todos")
		return
	}

	respondWithJSON(w, http.StatusOK, todos)
}

func (s *Server) getTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	todo, err := s.todoService.GetTodoByID(r.Context(), id)
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to retrieve todo")
		return
	}

	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	params, err := decodeTodoParams(r)
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to create todo")
		return
	}

	todo, err := s.todoService.CreateTodo(r.Context(), params)
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to create todo")
		return
	}

	respondWithJSON(w, http.StatusCreated, todo)
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	params, err := decodeTodoParams(r)
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to update todo")
		return
	}

	todo, err := s.todoService.UpdateTodo(r.Context(), id, params)
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to update todo")
		return
	}

	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) toggleTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	todo, err := s.todoService.ToggleTodo(r.Context(), id)
	if err != nil {
		s.respondWithServiceError(w, r, err, "Failed to toggle todo")
		return
	}

	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	if err := s.todoService.DeleteTodo(r.Context(), id); err != nil {
		s.respondWithServiceError(w, r, err, "Failed to delete todo")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// todoID parses the {id} URL parameter. An id that cannot name a record
// is answered as not found.
func todoID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		respondWithError(w, http.StatusNotFound, msgTodoNotFound)
		return 0, false
	}
	return uint(id), true
}

// respondWithServiceError maps service errors to status codes. Unexpected
// errors are logged and answered with fallback.
func (s *Server) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *domain.ValidationError
	var badReq *badRequestError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, msgTodoNotFound)
	case errors.As(err, &verr):
		respondWithJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verr.Fields})
	case errors.As(err, &badReq):
		respondWithError(w, http.StatusBadRequest, badReq.msg)
	default:
		s.logger.Error(fallback, "err", err, "method", r.Method, "path", r.URL.Path, "request_id", requestIDFrom(r.Context()))
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
