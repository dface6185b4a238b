package domain

import (
	"database/sql/driver"
	"fmt"
)

// Priority is the urgency of a todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every accepted priority, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority converts s into a Priority, rejecting unknown values.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q", s)
	}
	return p, nil
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p Priority) String() string {
	return string(p)
}

// Value implements driver.Valuer.
func (p Priority) Value() (driver.Value, error) {
	return string(p), nil
}

// Scan implements sql.Scanner.
func (p *Priority) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*p = Priority(v)
	case []byte:
		*p = Priority(v)
	case nil:
		*p = ""
	default:
		return fmt.Errorf("cannot scan %T into Priority", src)
	}
	return nil
}
