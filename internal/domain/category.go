package domain

import "time"

// DefaultCategoryColor is used when a category is saved without a color.
const DefaultCategoryColor = "#3B82F6"

// Category groups todos under a unique name and display color.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;uniqueIndex"`
	Color     string `gorm:"size:7;not null;default:'#3B82F6'"`
	CreatedAt time.Time
}
