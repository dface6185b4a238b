package service

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/Tomlord1122/todo-api/internal/cache"
	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/repository"
)

// CategoryService defines the operations for managing categories.
type CategoryService interface {
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error)
	ListCategories(ctx context.Context) ([]CategoryResponse, error)
	GetCategoryByID(ctx context.Context, id uint) (*CategoryResponse, error)
	// UpdateCategory replaces name and color.
	UpdateCategory(ctx context.Context, id uint, req UpdateCategoryRequest) (*CategoryResponse, error)
	// DeleteCategory removes the category; its todos are kept uncategorized.
	DeleteCategory(ctx context.Context, id uint) error
}

type categoryService struct {
	repo  repository.CategoryRepository
	cache cache.Cache
	sf    singleflight.Group
}

func NewCategoryService(repo repository.CategoryRepository, c cache.Cache) CategoryService {
	if c == nil {
		c = cache.Nop{}
	}
	return &categoryService{repo: repo, cache: c}
}

const categoryListCacheKey = "categories:list"

func categoryCacheKey(id uint) string {
	return fmt.Sprintf("category:%d", id)
}

func colorOrDefault(color string) string {
	if color == "" {
		return domain.DefaultCategoryColor
	}
	return color
}

func (s *categoryService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	category := &domain.Category{
		Name:  req.Name,
		Color: colorOrDefault(req.Color),
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, translateStoreError(err)
	}

	invalidate(ctx, s.cache, "category")
	log.Printf("[category] Created category ID=%d name=%q", category.ID, category.Name)
	return newCategoryResponse(category), nil
}

func (s *categoryService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	var cached []CategoryResponse
	found, err := s.cache.Get(ctx, categoryListCacheKey, &cached)
	if err != nil {
		log.Printf("[category] Cache error for list: %v", err)
	}
	if found {
		return cached, nil
	}

	val, err, _ := s.sf.Do(categoryListCacheKey, func() (any, error) {
		gen := s.cache.Generation()
		categories, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}

		resp := make([]CategoryResponse, 0, len(categories))
		for i := range categories {
			resp = append(resp, *newCategoryResponse(&categories[i]))
		}

		if _, err := s.cache.SetIfGeneration(ctx, categoryListCacheKey, resp, gen); err != nil {
			log.Printf("[category] Warning: failed to cache category list: %v", err)
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return val.([]CategoryResponse), nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id uint) (*CategoryResponse, error) {
	key := categoryCacheKey(id)

	var cached CategoryResponse
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("[category] Cache error for ID=%d: %v", id, err)
	}
	if found {
		return &cached, nil
	}

	gen := s.cache.Generation()
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	resp := newCategoryResponse(category)
	if _, err := s.cache.SetIfGeneration(ctx, key, resp, gen); err != nil {
		log.Printf("[category] Warning: failed to cache category ID=%d: %v", id, err)
	}
	return resp, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uint, req UpdateCategoryRequest) (*CategoryResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	category, err := s.repo.Update(ctx, id, req.Name, colorOrDefault(req.Color))
	if err != nil {
		return nil, translateStoreError(err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	invalidate(ctx, s.cache, "category")
	return newCategoryResponse(category), nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uint) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCategoryNotFound
	}

	invalidate(ctx, s.cache, "category")
	log.Printf("[category] Deleted category ID=%d", id)
	return nil
}
