package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

// TodoRepository defines the data operations for todos.
//
// Lookups by id never report "not found" as an error: FindByID, Update and
// ToggleCompletion return a nil todo, Delete returns false. Errors are
// reserved for store failures.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	List(ctx context.Context, opts TodoListOptions) ([]domain.Todo, int64, error)
	FindByID(ctx context.Context, id uint) (*domain.Todo, error)
	Update(ctx context.Context, id uint, patch domain.TodoPatch) (*domain.Todo, error)
	Delete(ctx context.Context, id uint) (bool, error)
	ToggleCompletion(ctx context.Context, id uint) (*domain.Todo, error)
}

// gormTodoRepository implements TodoRepository using GORM. Every operation
// runs in its own transaction bound to the caller's context.
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

// Create inserts todo, applying defaults for omitted fields, and reloads it
// with its category.
func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	if todo.Priority == "" {
		todo.Priority = domain.PriorityMedium
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(todo).Error; err != nil {
			return fmt.Errorf("failed to create todo: %w", err)
		}
		created, err := findTodo(tx, todo.ID)
		if err != nil {
			return err
		}
		if created != nil {
			*todo = *created
		}
		return nil
	})
}

// List returns one page of todos matching opts.Filter together with the
// number of matching todos across all pages. The count is taken before
// offset and limit are applied, inside the same transaction as the page.
func (r *gormTodoRepository) List(ctx context.Context, opts TodoListOptions) ([]domain.Todo, int64, error) {
	var (
		todos []domain.Todo
		total int64
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A fresh filtered statement per query; gorm statements are not
		// reusable after Count.
		filtered := func() (*gorm.DB, error) {
			return opts.Filter.apply(tx.Model(&domain.Todo{}))
		}

		countQuery, err := filtered()
		if err != nil {
			return fmt.Errorf("failed to build todo filter: %w", err)
		}
		if err := countQuery.Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count todos: %w", err)
		}

		pageQuery, err := filtered()
		if err != nil {
			return fmt.Errorf("failed to build todo filter: %w", err)
		}
		pageQuery = pageQuery.Preload("Category").Order("id ASC").Offset(opts.Offset())
		if opts.Limit > 0 {
			pageQuery = pageQuery.Limit(opts.Limit)
		}
		if err := pageQuery.Find(&todos).Error; err != nil {
			return fmt.Errorf("failed to list todos: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return todos, total, nil
}

// FindByID retrieves a todo and its category. It returns nil, nil when no
// todo has the id.
func (r *gormTodoRepository) FindByID(ctx context.Context, id uint) (*domain.Todo, error) {
	return findTodo(r.db.WithContext(ctx), id)
}

// Update merges the supplied patch fields into the stored todo. Fields not
// set in the patch keep their current values; updated_at is refreshed.
func (r *gormTodoRepository) Update(ctx context.Context, id uint, patch domain.TodoPatch) (*domain.Todo, error) {
	var updated *domain.Todo

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		todo, err := findTodo(tx, id)
		if err != nil || todo == nil {
			return err
		}

		patch.Apply(todo)

		if err := tx.Omit(clause.Associations).Save(todo).Error; err != nil {
			return fmt.Errorf("failed to update todo %d: %w", id, err)
		}

		// Reload so the embedded category reflects a changed reference.
		updated, err = findTodo(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a todo. It reports whether a row was removed.
func (r *gormTodoRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Todo{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete todo %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ToggleCompletion flips the completed flag of a todo.
func (r *gormTodoRepository) ToggleCompletion(ctx context.Context, id uint) (*domain.Todo, error) {
	var toggled *domain.Todo

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		todo, err := findTodo(tx, id)
		if err != nil || todo == nil {
			return err
		}

		todo.Completed = !todo.Completed
		if err := tx.Omit(clause.Associations).Save(todo).Error; err != nil {
			return fmt.Errorf("failed to toggle todo %d: %w", id, err)
		}

		toggled = todo
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toggled, nil
}

func findTodo(db *gorm.DB, id uint) (*domain.Todo, error) {
	var todo domain.Todo
	if err := db.Preload("Category").First(&todo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find todo %d: %w", id, err)
	}
	return &todo, nil
}
