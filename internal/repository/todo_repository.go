package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

// TodoFilter narrows a List call. Nil fields impose no constraint.
type TodoFilter struct {
	Completed *bool
	Priority  *domain.Priority
}

// TodoRepository defines the interface for todo data operations.
// Lookups of a missing id return domain.ErrNotFound.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	FindByID(ctx context.Context, id uint) (*domain.Todo, error)
	List(ctx context.Context, filter TodoFilter) ([]domain.Todo, error)
	Update(ctx context.Context, todo *domain.Todo) error
	Toggle(ctx context.Context, id uint) (*domain.Todo, error)
	Delete(ctx context.Context, id uint) error
}

// writableColumns are the columns Update rewrites. updated_at is
// refreshed by gorm on every update.
var writableColumns = []string{"title", "description", "priority", "completed", "due_date", "updated_at"}

// gormTodoRepository implements TodoRepository using GORM
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *gormTodoRepository) FindByID(ctx context.Context, id uint) (*domain.Todo, error) {
	var todo domain.Todo
	if err := r.db.WithContext(ctx).First(&todo, id).Error; err != nil {
		return nil, translate(err)
	}
	return &todo, nil
}

// List returns matching todos oldest first; equal creation times fall back
// to id, which follows insertion order.
func (r *gormTodoRepository) List(ctx context.Context, filter TodoFilter) ([]domain.Todo, error) {
	q := r.db.WithContext(ctx).Model(&domain.Todo{})
	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	if filter.Priority != nil {
		q = q.Where("priority = ?", *filter.Priority)
	}

	todos := make([]domain.Todo, 0)
	err := q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "created_at"}},
		{Column: clause.Column{Name: "id"}},
	}}).Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// Update writes every writable column of todo. Unlike Save it never
// inserts, so a row deleted concurrently is reported as not found.
func (r *gormTodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	result := r.db.WithContext(ctx).Model(todo).Select(writableColumns).Updates(todo)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Toggle flips completed under a row lock so concurrent toggles serialize.
func (r *gormTodoRepository) Toggle(ctx context.Context, id uint) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&todo, id).Error; err != nil {
			return translate(err)
		}
		todo.Completed = !todo.Completed
		return tx.Model(&todo).Update("completed", todo.Completed).Error
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// Delete removes the row permanently.
func (r *gormTodoRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Todo{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
