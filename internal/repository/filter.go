package repository

import (
	"math"
	"strings"

	"github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

// TodoFilter narrows a todo listing. Nil or empty fields do not filter;
// present fields are combined with AND.
type TodoFilter struct {
	// Search matches title or description, case-insensitively, as a
	// literal substring. The term is used as given, surrounding spaces
	// included.
	Search     string
	Completed  *bool
	CategoryID *uint
	Priority   *domain.Priority
}

// TodoListOptions selects one page of the filtered todos. Page is 1-indexed.
// Limit is not capped here; callers bound it.
type TodoListOptions struct {
	Page   int
	Limit  int
	Filter TodoFilter
}

// Offset is the number of rows skipped before the requested page. It
// saturates at math.MaxInt instead of wrapping, so a page far past the end
// is empty rather than aliased onto an earlier one.
func (o TodoListOptions) Offset() int {
	if o.Page < 1 || o.Limit < 1 {
		return 0
	}
	if o.Page-1 > math.MaxInt/o.Limit {
		return math.MaxInt
	}
	return (o.Page - 1) * o.Limit
}

// Sqlizer builds the WHERE conjunction for the filter. It returns nil when
// no criterion is set.
func (f TodoFilter) Sqlizer() squirrel.Sqlizer {
	conds := squirrel.And{}

	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		conds = append(conds, squirrel.Or{
			squirrel.Expr(`LOWER(title) LIKE ? ESCAPE '\'`, pattern),
			squirrel.Expr(`LOWER(description) LIKE ? ESCAPE '\'`, pattern),
		})
	}
	if f.Completed != nil {
		conds = append(conds, squirrel.Eq{"completed": *f.Completed})
	}
	if f.CategoryID != nil {
		conds = append(conds, squirrel.Eq{"category_id": *f.CategoryID})
	}
	if f.Priority != nil {
		conds = append(conds, squirrel.Eq{"priority": string(*f.Priority)})
	}

	if len(conds) == 0 {
		return nil
	}
	return conds
}

// apply adds the filter to a gorm query. squirrel emits "?" placeholders,
// which gorm rebinds for the active dialect.
func (f TodoFilter) apply(db *gorm.DB) (*gorm.DB, error) {
	sqlizer := f.Sqlizer()
	if sqlizer == nil {
		return db, nil
	}
	where, args, err := sqlizer.ToSql()
	if err != nil {
		return nil, err
	}
	return db.Where(where, args...), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
