package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/repository"
)

// Status filter values accepted by ListTodos.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// ListTodosRequest carries the raw listing query parameters.
type ListTodosRequest struct {
	Status   string
	Priority string
}

// filter translates the query parameters into a store filter. Unknown
// status values impose no constraint.
func (r ListTodosRequest) filter() repository.TodoFilter {
	var f repository.TodoFilter
	switch r.Status {
	case StatusCompleted:
		completed := true
		f.Completed = &completed
	case StatusPending:
		completed := false
		f.Completed = &completed
	}
	if r.Priority != "" {
		p := domain.Priority(r.Priority)
		f.Priority = &p
	}
	return f
}

// TodoResponse is the standard representation of a Todo returned by the service.
type TodoResponse struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	Priority    *domain.Priority `json:"priority"`
	Completed   bool             `json:"completed"`
	DueDate     *string          `json:"due_date"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

func newTodoResponse(todo *domain.Todo) *TodoResponse {
	resp := &TodoResponse{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Priority:    todo.Priority,
		Completed:   todo.Completed,
		CreatedAt:   todo.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   todo.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if todo.DueDate != nil {
		due := todo.DueDate.UTC().Format(time.RFC3339)
		resp.DueDate = &due
	}
	return resp
}

// TodoService defines the operations for managing todos.
// Missing ids yield domain.ErrNotFound; rejected input yields
// *domain.ValidationError. Any other error is a server fault.
type TodoService interface {
	// ListTodos returns todos matching the status/priority filter, oldest first.
	ListTodos(ctx context.Context, req ListTodosRequest) ([]TodoResponse, error)

	GetTodoByID(ctx context.Context, id uint) (*TodoResponse, error)

	// CreateTodo validates params and persists a new todo.
	CreateTodo(ctx context.Context, params TodoParams) (*TodoResponse, error)

	// UpdateTodo applies only the supplied params to an existing todo.
	UpdateTodo(ctx context.Context, id uint, params TodoParams) (*TodoResponse, error)

	// ToggleTodo flips the completed flag.
	ToggleTodo(ctx context.Context, id uint) (*TodoResponse, error)

	DeleteTodo(ctx context.Context, id uint) error
}

// todoService implements the TodoService interface.
type todoService struct {
	repo   repository.TodoRepository
	logger *log.Logger
}

// NewTodoService creates a new instance of todoService.
func NewTodoService(repo repository.TodoRepository, logger *log.Logger) TodoService {
	return &todoService{
		repo:   repo,
		logger: logger,
	}
}

func (s *todoService) ListTodos(ctx context.Context, req ListTodosRequest) ([]TodoResponse, error) {
	todos, err := s.repo.List(ctx, req.filter())
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	responses := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		responses = append(responses, *newTodoResponse(&todos[i]))
	}
	return responses, nil
}

func (s *todoService) GetTodoByID(ctx context.Context, id uint) (*TodoResponse, error) {
	todo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get todo %d", id)
	}
	return newTodoResponse(todo), nil
}

func (s *todoService) CreateTodo(ctx context.Context, params TodoParams) (*TodoResponse, error) {
	todo := &domain.Todo{}
	if err := validate(todo, params); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	s.logger.Debug("created todo", "id", todo.ID)
	return newTodoResponse(todo), nil
}

func (s *todoService) UpdateTodo(ctx context.Context, id uint, params TodoParams) (*TodoResponse, error) {
	todo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "load todo %d for update", id)
	}

	if err := validate(todo, params); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, todo); err != nil {
		return nil, wrap(err, "update todo %d", id)
	}
	s.logger.Debug("updated todo", "id", id)
	return newTodoResponse(todo), nil
}

func (s *todoService) ToggleTodo(ctx context.Context, id uint) (*TodoResponse, error) {
	todo, err := s.repo.Toggle(ctx, id)
	if err != nil {
		return nil, wrap(err, "toggle todo %d", id)
	}
	s.logger.Debug("toggled todo", "id", id, "completed", todo.Completed)
	return newTodoResponse(todo), nil
}

func (s *todoService) DeleteTodo(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrap(err, "delete todo %d", id)
	}
	s.logger.Debug("deleted todo", "id", id)
	return nil
}

// validate applies params to todo and checks the result. Conversion and
// constraint errors are reported together.
func validate(todo *domain.Todo, params TodoParams) error {
	verr := &domain.ValidationError{}
	params.apply(todo, verr)

	var constraintErr *domain.ValidationError
	if errors.As(todo.Validate(), &constraintErr) {
		verr.Merge(constraintErr)
	}
	return verr.OrNil()
}

// wrap adds context to unexpected errors and passes ErrNotFound through
// unchanged so callers can match it with errors.Is.
func wrap(err error, format string, args ...any) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
