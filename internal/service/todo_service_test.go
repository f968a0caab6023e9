package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/logging"
	"github.com/Tomlord1122/todo-api/internal/repository/repositorytest"
)

func newTestService(t *testing.T) (TodoService, *repositorytest.Memory) {
	t.Helper()
	repo := repositorytest.NewMemory()
	clock := time.Date(2025, 5, 27, 12, 0, 0, 0, time.UTC)
	repo.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return NewTodoService(repo, logging.Discard()), repo
}

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Fields
}

func TestCreateTodo(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults completed to false", func(t *testing.T) {
		svc, _ := newTestService(t)
		todo, err := svc.CreateTodo(ctx, TodoParams{Title: Some("Buy milk")})
		require.NoError(t, err)
		assert.NotZero(t, todo.ID)
		assert.Equal(t, "Buy milk", todo.Title)
		assert.False(t, todo.Completed)
		assert.Nil(t, todo.Description)
		assert.Nil(t, todo.Priority)
		assert.Nil(t, todo.DueDate)
		assert.Equal(t, "2025-05-27T12:00:01Z", todo.CreatedAt)
	})

	t.Run("all fields", func(t *testing.T) {
		svc, _ := newTestService(t)
		todo, err := svc.CreateTodo(ctx, TodoParams{
			Title:       Some("Report"),
			Description: Some("quarterly"),
			Priority:    Some(domain.PriorityHigh),
			Completed:   Some(true),
			DueDate:     Some("2025-06-01"),
		})
		require.NoError(t, err)
		assert.Equal(t, "quarterly", *todo.Description)
		assert.Equal(t, domain.PriorityHigh, *todo.Priority)
		assert.True(t, todo.Completed)
		assert.Equal(t, "2025-06-01T00:00:00Z", *todo.DueDate)
	})

	t.Run("title boundaries", func(t *testing.T) {
		svc, repo := newTestService(t)
		_, err := svc.CreateTodo(ctx, TodoParams{Title: Some(strings.Repeat("x", 255))})
		require.NoError(t, err)

		_, err = svc.CreateTodo(ctx, TodoParams{Title: Some(strings.Repeat("x", 256))})
		assert.Equal(t, map[string][]string{"title": {domain.MsgTooLong(255)}}, fieldErrors(t, err))
		assert.Equal(t, 1, repo.Len())
	})

	t.Run("absent empty or null title persists nothing", func(t *testing.T) {
		svc, repo := newTestService(t)
		for _, params := range []TodoParams{
			{},
			{Title: Some("")},
			{Title: Null[string]()},
			{Description: Some("no title")},
		} {
			_, err := svc.CreateTodo(ctx, params)
			assert.Equal(t, []string{domain.MsgBlank}, fieldErrors(t, err)["title"])
		}
		assert.Zero(t, repo.Len())
	})

	t.Run("reports every bad field", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.CreateTodo(ctx, TodoParams{
			Priority: Some(domain.Priority("urgent")),
			DueDate:  Some("next tuesday"),
		})
		assert.Equal(t, map[string][]string{
			"title":    {domain.MsgBlank},
			"priority": {domain.MsgNotIncluded},
			"due_date": {domain.MsgInvalidDate},
		}, fieldErrors(t, err))
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.Err = errors.New("connection refused")
		_, err := svc.CreateTodo(ctx, TodoParams{Title: Some("x")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create todo")
		assert.ErrorIs(t, err, repo.Err)
	})
}

func TestUpdateTodo(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update keeps other fields", func(t *testing.T) {
		svc, _ := newTestService(t)
		created, err := svc.CreateTodo(ctx, TodoParams{
			Title:       Some("Original"),
			Description: Some("keep me"),
			Priority:    Some(domain.PriorityLow),
		})
		require.NoError(t, err)

		updated, err := svc.UpdateTodo(ctx, created.ID, TodoParams{Completed: Some(true)})
		require.NoError(t, err)
		assert.Equal(t, "Original", updated.Title)
		assert.Equal(t, "keep me", *updated.Description)
		assert.Equal(t, domain.PriorityLow, *updated.Priority)
		assert.True(t, updated.Completed)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		assert.NotEqual(t, created.UpdatedAt, updated.UpdatedAt)
	})

	t.Run("null clears optional fields", func(t *testing.T) {
		svc, _ := newTestService(t)
		created, err := svc.CreateTodo(ctx, TodoParams{
			Title:       Some("x"),
			Description: Some("d"),
			Priority:    Some(domain.PriorityMedium),
			DueDate:     Some("2025-06-01T09:30:00Z"),
		})
		require.NoError(t, err)

		updated, err := svc.UpdateTodo(ctx, created.ID, TodoParams{
			Description: Null[string](),
			Priority:    Null[domain.Priority](),
			DueDate:     Null[string](),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.Description)
		assert.Nil(t, updated.Priority)
		assert.Nil(t, updated.DueDate)
	})

	t.Run("invalid update persists nothing", func(t *testing.T) {
		svc, _ := newTestService(t)
		created, err := svc.CreateTodo(ctx, TodoParams{Title: Some("Keep")})
		require.NoError(t, err)

		_, err = svc.UpdateTodo(ctx, created.ID, TodoParams{Title: Some(""), Completed: Some(true)})
		assert.Equal(t, []string{domain.MsgBlank}, fieldErrors(t, err)["title"])

		got, err := svc.GetTodoByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Keep", got.Title)
		assert.False(t, got.Completed)
	})

	t.Run("missing id", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.UpdateTodo(ctx, 42, TodoParams{Title: Some("x")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestToggleAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	created, err := svc.CreateTodo(ctx, TodoParams{Title: Some("Buy milk")})
	require.NoError(t, err)

	toggled, err := svc.ToggleTodo(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	got, err := svc.GetTodoByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, toggled, got)

	toggled, err = svc.ToggleTodo(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	require.NoError(t, svc.DeleteTodo(ctx, created.ID))

	_, err = svc.GetTodoByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteTodo(ctx, created.ID), domain.ErrNotFound)
	_, err = svc.ToggleTodo(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.UpdateTodo(ctx, created.ID, TodoParams{Title: Some("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListTodos(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	seed := []TodoParams{
		{Title: Some("a"), Priority: Some(domain.PriorityHigh)},
		{Title: Some("b"), Completed: Some(true)},
		{Title: Some("c"), Completed: Some(true), Priority: Some(domain.PriorityHigh)},
		{Title: Some("d")},
	}
	for _, p := range seed {
		_, err := svc.CreateTodo(ctx, p)
		require.NoError(t, err)
	}

	titles := func(req ListTodosRequest) []string {
		todos, err := svc.ListTodos(ctx, req)
		require.NoError(t, err)
		out := []string{}
		for _, todo := range todos {
			out = append(out, todo.Title)
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, titles(ListTodosRequest{}))
	assert.Equal(t, []string{"b", "c"}, titles(ListTodosRequest{Status: "completed"}))
	assert.Equal(t, []string{"a", "d"}, titles(ListTodosRequest{Status: "pending"}))
	assert.Equal(t, []string{"a", "b", "c", "d"}, titles(ListTodosRequest{Status: "archived"}))
	assert.Equal(t, []string{"a", "c"}, titles(ListTodosRequest{Priority: "high"}))
	assert.Equal(t, []string{"c"}, titles(ListTodosRequest{Status: "completed", Priority: "high"}))
	assert.Equal(t, []string{}, titles(ListTodosRequest{Priority: "urgent"}))
}

func TestFieldUnmarshal(t *testing.T) {
	var p TodoParams
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","description":null,"id":9}`), &p))

	assert.Equal(t, Some("x"), p.Title)
	assert.Equal(t, Null[string](), p.Description)
	assert.False(t, p.Priority.Set)
	assert.False(t, p.Completed.Set)
	assert.False(t, p.DueDate.Set)
}

func TestParseDueDate(t *testing.T) {
	tests := map[string]string{
		"2025-06-01":                "2025-06-01T00:00:00Z",
		"2025-06-01T09:30:00":       "2025-06-01T09:30:00Z",
		"2025-06-01T09:30:00+09:00": "2025-06-01T00:30:00Z",
	}
	for in, want := range tests {
		got, ok := parseDueDate(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got.Format(time.RFC3339), in)
	}

	_, ok := parseDueDate("01/06/2025")
	assert.False(t, ok)
}
