package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/Tomlord1122/todo-api/internal/cache"
	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/repository"
)

// TodoService defines the operations for managing todos.
// It contains the core business logic.
type TodoService interface {
	// CreateTodo validates the request and stores a new todo.
	CreateTodo(ctx context.Context, req CreateTodoRequest) (*TodoResponse, error)

	// ListTodos returns one filtered page of todos with pagination metadata.
	ListTodos(ctx context.Context, req ListTodosRequest) (*TodoListResponse, error)

	// GetTodoByID retrieves a single todo item by its ID.
	GetTodoByID(ctx context.Context, id uint) (*TodoResponse, error)

	// UpdateTodo applies a partial update to an existing todo.
	UpdateTodo(ctx context.Context, id uint, req UpdateTodoRequest) (*TodoResponse, error)

	// DeleteTodo deletes a todo item by its ID.
	DeleteTodo(ctx context.Context, id uint) error

	// ToggleTodoCompletion flips the completed flag.
	ToggleTodoCompletion(ctx context.Context, id uint) (*TodoResponse, error)
}

// todoService implements TodoService on top of the repositories. Reads go
// through the cache; every successful write drops the whole cache namespace.
// A read that overlapped a write does not store what it loaded.
type todoService struct {
	repo       repository.TodoRepository
	categories repository.CategoryRepository
	cache      cache.Cache
	sf         singleflight.Group
}

// NewTodoService creates a new instance of todoService.
func NewTodoService(repo repository.TodoRepository, categories repository.CategoryRepository, c cache.Cache) TodoService {
	if c == nil {
		c = cache.Nop{}
	}
	return &todoService{
		repo:       repo,
		categories: categories,
		cache:      c,
	}
}

func todoCacheKey(id uint) string {
	return fmt.Sprintf("todo:%d", id)
}

func todoListCacheKey(req ListTodosRequest) string {
	// Marshalling a flat struct of scalars cannot fail.
	b, _ := json.Marshal(req)
	return "todos:list:" + string(b)
}

func (s *todoService) CreateTodo(ctx context.Context, req CreateTodoRequest) (*TodoResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	todo := &domain.Todo{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.PriorityMedium,
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
	}
	if req.Priority != nil {
		todo.Priority = *req.Priority
	}

	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, translateStoreError(err)
	}

	invalidate(ctx, s.cache, "todo")
	log.Printf("[todo] Created todo ID=%d", todo.ID)
	return newTodoResponse(todo), nil
}

func (s *todoService) ListTodos(ctx context.Context, req ListTodosRequest) (*TodoListResponse, error) {
	req = req.withDefaults()
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	key := todoListCacheKey(req)

	var cached TodoListResponse
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("[todo] Cache error for list: %v", err)
	}
	if found {
		return &cached, nil
	}

	val, err, _ := s.sf.Do(key, func() (any, error) {
		gen := s.cache.Generation()
		todos, total, err := s.repo.List(ctx, req.options())
		if err != nil {
			return nil, err
		}

		resp := &TodoListResponse{
			Data: make([]TodoResponse, 0, len(todos)),
			Pagination: Pagination{
				CurrentPage: req.Page,
				PerPage:     req.Limit,
				Total:       total,
				TotalPages:  TotalPages(total, req.Limit),
			},
		}
		for i := range todos {
			resp.Data = append(resp.Data, *newTodoResponse(&todos[i]))
		}

		if _, err := s.cache.SetIfGeneration(ctx, key, resp, gen); err != nil {
			log.Printf("[todo] Warning: failed to cache todo list: %v", err)
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return val.(*TodoListResponse), nil
}

func (s *todoService) GetTodoByID(ctx context.Context, id uint) (*TodoResponse, error) {
	key := todoCacheKey(id)

	var cached TodoResponse
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("[todo] Cache error for ID=%d: %v", id, err)
	}
	if found {
		return &cached, nil
	}

	val, err, _ := s.sf.Do(key, func() (any, error) {
		gen := s.cache.Generation()
		todo, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if todo == nil {
			return nil, ErrTodoNotFound
		}

		resp := newTodoResponse(todo)
		if _, err := s.cache.SetIfGeneration(ctx, key, resp, gen); err != nil {
			log.Printf("[todo] Warning: failed to cache todo ID=%d: %v", id, err)
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return val.(*TodoResponse), nil
}

func (s *todoService) UpdateTodo(ctx context.Context, id uint, req UpdateTodoRequest) (*TodoResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if req.CategoryID.Set {
		if err := s.checkCategory(ctx, req.CategoryID.Ptr()); err != nil {
			return nil, err
		}
	}

	todo, err := s.repo.Update(ctx, id, req.patch())
	if err != nil {
		return nil, translateStoreError(err)
	}
	if todo == nil {
		return nil, ErrTodoNotFound
	}

	invalidate(ctx, s.cache, "todo")
	return newTodoResponse(todo), nil
}

func (s *todoService) DeleteTodo(ctx context.Context, id uint) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTodoNotFound
	}

	invalidate(ctx, s.cache, "todo")
	log.Printf("[todo] Deleted todo ID=%d", id)
	return nil
}

func (s *todoService) ToggleTodoCompletion(ctx context.Context, id uint) (*TodoResponse, error) {
	todo, err := s.repo.ToggleCompletion(ctx, id)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, ErrTodoNotFound
	}

	invalidate(ctx, s.cache, "todo")
	return newTodoResponse(todo), nil
}

// checkCategory rejects a reference to a category that does not exist. The
// foreign key catches the same case on postgres, but sqlite does not
// translate that violation.
func (s *todoService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil || s.categories == nil {
		return nil
	}
	category, err := s.categories.FindByID(ctx, *id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrUnknownCategory
	}
	return nil
}

// translateStoreError maps constraint violations reported by the store to
// service errors. Other errors pass through unchanged.
func translateStoreError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicateCategory, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrUnknownCategory, err)
	}
	return err
}

// invalidate drops every cached response. Todos embed their category, so a
// write to either entity can change any cached page.
func invalidate(ctx context.Context, c cache.Cache, component string) {
	if err := c.DeletePattern(ctx, "*"); err != nil {
		log.Printf("[%s] Warning: failed to invalidate cache: %v", component, err)
	}
}
