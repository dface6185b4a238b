package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

// CategoryRepository defines the data operations for categories. Like
// TodoRepository, a missing id yields a nil category or false, not an error.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context) ([]domain.Category, error)
	FindByID(ctx context.Context, id uint) (*domain.Category, error)
	Update(ctx context.Context, id uint, name, color string) (*domain.Category, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

type gormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) CategoryRepository {
	return &gormCategoryRepository{db: db}
}

// Create inserts a category. A duplicate name surfaces as a wrapped
// gorm.ErrDuplicatedKey when the connection translates errors.
func (r *gormCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// List returns every category in insertion order.
func (r *gormCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *gormCategoryRepository) FindByID(ctx context.Context, id uint) (*domain.Category, error) {
	return findCategory(r.db.WithContext(ctx), id)
}

// Update replaces name and color of an existing category, whatever their
// previous values.
func (r *gormCategoryRepository) Update(ctx context.Context, id uint, name, color string) (*domain.Category, error) {
	var updated *domain.Category

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := findCategory(tx, id)
		if err != nil || category == nil {
			return err
		}

		category.Name = name
		category.Color = color
		if err := tx.Save(category).Error; err != nil {
			return fmt.Errorf("failed to update category %d: %w", id, err)
		}

		updated = category
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a category. Todos that reference it are kept and their
// category_id is cleared in the same transaction.
func (r *gormCategoryRepository) Delete(ctx context.Context, id uint) (bool, error) {
	var deleted bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Todo{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error
		if err != nil {
			return fmt.Errorf("failed to detach todos from category %d: %w", id, err)
		}

		result := tx.Delete(&domain.Category{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete category %d: %w", id, result.Error)
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

func findCategory(db *gorm.DB, id uint) (*domain.Category, error) {
	var category domain.Category
	if err := db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find category %d: %w", id, err)
	}
	return &category, nil
}
