package service

import (
	"errors"
	"strings"
)

var (
	ErrTodoNotFound     = errors.New("Todo not found")
	ErrCategoryNotFound = errors.New("Category not found")
	// ErrDuplicateCategory is returned when a category name is already taken.
	ErrDuplicateCategory = errors.New("Category name already exists")
	// ErrUnknownCategory is returned when a todo references a category id
	// that does not exist.
	ErrUnknownCategory = errors.New("Category does not exist")
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a request fails field validation. The
// server reports it as 422 with the individual field errors.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// orNil returns e when at least one field failed.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
