// Package repositorytest provides an in-memory TodoRepository for tests of
// the layers above the store.
package repositorytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/repository"
)

// Memory is a TodoRepository backed by a map. It mirrors the gorm
// repository's ordering and not-found behavior.
type Memory struct {
	mu     sync.Mutex
	todos  map[uint]domain.Todo
	nextID uint

	// Now supplies timestamps; defaults to time.Now.
	Now func() time.Time
	// Err, when set, is returned by every call.
	Err error
}

var _ repository.TodoRepository = (*Memory)(nil)

// NewMemory returns an empty repository.
func NewMemory() *Memory {
	return &Memory{todos: make(map[uint]domain.Todo), nextID: 1, Now: time.Now}
}

// Len returns the number of stored todos.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.todos)
}

func (m *Memory) Create(_ context.Context, todo *domain.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	now := m.Now()
	todo.ID = m.nextID
	m.nextID++
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = now
	}
	todo.UpdatedAt = now
	m.todos[todo.ID] = clone(*todo)
	return nil
}

func (m *Memory) FindByID(_ context.Context, id uint) (*domain.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	todo, ok := m.todos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := clone(todo)
	return &out, nil
}

func (m *Memory) List(_ context.Context, filter repository.TodoFilter) ([]domain.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	out := make([]domain.Todo, 0, len(m.todos))
	for _, todo := range m.todos {
		if filter.Completed != nil && todo.Completed != *filter.Completed {
			continue
		}
		if filter.Priority != nil && (todo.Priority == nil || *todo.Priority != *filter.Priority) {
			continue
		}
		out = append(out, clone(todo))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) Update(_ context.Context, todo *domain.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	existing, ok := m.todos[todo.ID]
	if !ok {
		return domain.ErrNotFound
	}
	todo.CreatedAt = existing.CreatedAt
	todo.UpdatedAt = m.Now()
	m.todos[todo.ID] = clone(*todo)
	return nil
}

func (m *Memory) Toggle(_ context.Context, id uint) (*domain.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	todo, ok := m.todos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	todo.Completed = !todo.Completed
	todo.UpdatedAt = m.Now()
	m.todos[id] = todo
	out := clone(todo)
	return &out, nil
}

func (m *Memory) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, ok := m.todos[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.todos, id)
	return nil
}

// clone copies the pointer fields so callers cannot mutate stored state.
func clone(t domain.Todo) domain.Todo {
	if t.Description != nil {
		v := *t.Description
		t.Description = &v
	}
	if t.Priority != nil {
		v := *t.Priority
		t.Priority = &v
	}
	if t.DueDate != nil {
		v := *t.DueDate
		t.DueDate = &v
	}
	return t
}
