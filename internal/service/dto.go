package service

import (
	"math"
	"time"

	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/repository"
)

// Input/Output structs (DTOs) decouple the HTTP layer from the domain and
// the database layer.

// CreateTodoRequest holds the data needed to create a new todo.
type CreateTodoRequest struct {
	Title       string           `json:"title" validate:"notblank,max=200"`
	Description *string          `json:"description"`
	Priority    *domain.Priority `json:"priority" validate:"omitempty,priority"`
	DueDate     *time.Time       `json:"due_date"`
	CategoryID  *uint            `json:"category_id" validate:"omitempty,min=1"`
}

// UpdateTodoRequest holds a partial update. A field absent from the JSON body
// is left alone; an explicit null clears description, due_date and
// category_id.
type UpdateTodoRequest struct {
	Title       domain.Optional[string]          `json:"title"`
	Description domain.Optional[string]          `json:"description"`
	Completed   domain.Optional[bool]            `json:"completed"`
	Priority    domain.Optional[domain.Priority] `json:"priority"`
	DueDate     domain.Optional[time.Time]       `json:"due_date"`
	CategoryID  domain.Optional[uint]            `json:"category_id"`
}

func (r UpdateTodoRequest) validate() error {
	ve := &ValidationError{}

	if r.Title.Set {
		if r.Title.Null {
			ve.add("title", "Title cannot be null")
		} else {
			validateValue(ve, "title", r.Title.Value, "notblank,max=200")
		}
	}
	if r.Completed.Set && r.Completed.Null {
		ve.add("completed", "Completed cannot be null")
	}
	if r.Priority.Set {
		if r.Priority.Null {
			ve.add("priority", "Priority cannot be null")
		} else {
			validateValue(ve, "priority", r.Priority.Value, "priority")
		}
	}
	if r.CategoryID.Set && !r.CategoryID.Null {
		validateValue(ve, "category_id", r.CategoryID.Value, "min=1")
	}

	return ve.orNil()
}

func (r UpdateTodoRequest) patch() domain.TodoPatch {
	return domain.TodoPatch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
		CategoryID:  r.CategoryID,
	}
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50

	// MaxPage keeps (page-1)*limit well inside int. The validate tag on
	// ListTodosRequest.Page repeats the value.
	MaxPage = math.MaxInt32
)

// ListTodosRequest selects a page of todos. Zero Page and Limit take the
// defaults; anything else out of range is rejected.
type ListTodosRequest struct {
	Page       int              `json:"page" validate:"min=1,max=2147483647"`
	Limit      int              `json:"limit" validate:"min=1,max=50"`
	Search     string           `json:"search,omitempty"`
	Completed  *bool            `json:"completed,omitempty"`
	CategoryID *uint            `json:"category_id,omitempty" validate:"omitempty,min=1"`
	Priority   *domain.Priority `json:"priority,omitempty" validate:"omitempty,priority"`
}

func (r ListTodosRequest) withDefaults() ListTodosRequest {
	if r.Page == 0 {
		r.Page = DefaultPage
	}
	if r.Limit == 0 {
		r.Limit = DefaultLimit
	}
	return r
}

func (r ListTodosRequest) options() repository.TodoListOptions {
	return repository.TodoListOptions{
		Page:  r.Page,
		Limit: r.Limit,
		Filter: repository.TodoFilter{
			Search:     r.Search,
			Completed:  r.Completed,
			CategoryID: r.CategoryID,
			Priority:   r.Priority,
		},
	}
}

// CreateCategoryRequest holds the data for a new category. An empty color
// falls back to domain.DefaultCategoryColor.
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"notblank,max=100"`
	Color string `json:"color" validate:"omitempty,rgbhex"`
}

// UpdateCategoryRequest replaces a category's name and color.
type UpdateCategoryRequest struct {
	Name  string `json:"name" validate:"notblank,max=100"`
	Color string `json:"color" validate:"omitempty,rgbhex"`
}

// CategoryResponse is the representation of a Category returned by the
// service.
type CategoryResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatedAt string `json:"created_at"`
}

// TodoResponse is the representation of a Todo returned by the service.
type TodoResponse struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Completed   bool              `json:"completed"`
	Priority    domain.Priority   `json:"priority"`
	DueDate     *string           `json:"due_date"`
	CategoryID  *uint             `json:"category_id"`
	Category    *CategoryResponse `json:"category"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
}

type TodoListResponse struct {
	Data       []TodoResponse `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// TotalPages is ceil(total/limit), and 1 for an empty result.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func newCategoryResponse(c *domain.Category) *CategoryResponse {
	if c == nil {
		return nil
	}
	return &CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func newTodoResponse(t *domain.Todo) *TodoResponse {
	resp := &TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    t.Priority,
		CategoryID:  t.CategoryID,
		Category:    newCategoryResponse(t.Category),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(time.RFC3339)
		resp.DueDate = &due
	}
	return resp
}
