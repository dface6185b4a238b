package domain

import (
	"time"
)

// Todo is a single task. CategoryID is a weak reference: deleting the
// category clears it instead of removing the todo.
type Todo struct {
	ID          uint     `gorm:"primaryKey"`
	Title       string   `gorm:"size:200;not null;index"`
	Description *string  `gorm:"type:text"`
	Completed   bool     `gorm:"not null;default:false;index"`
	Priority    Priority `gorm:"size:10;not null;default:'medium';index"`
	DueDate     *time.Time
	CategoryID  *uint     `gorm:"index"`
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TodoPatch carries the fields of a partial update. Only fields with Set
// are written; a Null description, due date or category clears the column.
type TodoPatch struct {
	Title       Optional[string]
	Description Optional[string]
	Completed   Optional[bool]
	Priority    Optional[Priority]
	DueDate     Optional[time.Time]
	CategoryID  Optional[uint]
}

// Empty reports whether the patch supplies no field at all.
func (p TodoPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Completed.Set &&
		!p.Priority.Set && !p.DueDate.Set && !p.CategoryID.Set
}

// Apply merges the supplied fields into todo, field by field.
func (p TodoPatch) Apply(todo *Todo) {
	if p.Title.Set && !p.Title.Null {
		todo.Title = p.Title.Value
	}
	if p.Description.Set {
		todo.Description = p.Description.Ptr()
	}
	if p.Completed.Set && !p.Completed.Null {
		todo.Completed = p.Completed.Value
	}
	if p.Priority.Set && !p.Priority.Null {
		todo.Priority = p.Priority.Value
	}
	if p.DueDate.Set {
		todo.DueDate = p.DueDate.Ptr()
	}
	if p.CategoryID.Set {
		todo.CategoryID = p.CategoryID.Ptr()
		// Drop the stale association so callers reload it.
		todo.Category = nil
	}
}
