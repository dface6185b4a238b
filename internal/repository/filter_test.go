package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

func TestTodoFilter_Sqlizer(t *testing.T) {
	tests := []struct {
		name     string
		filter   TodoFilter
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:    "empty filter",
			filter:  TodoFilter{},
			wantSQL: "",
		},
		{
			name:     "search keeps surrounding spaces",
			filter:   TodoFilter{Search: " Buy "},
			wantSQL:  `((LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'))`,
			wantArgs: []interface{}{"% buy %", "% buy %"},
		},
		{
			name:     "search",
			filter:   TodoFilter{Search: "Milk"},
			wantSQL:  `((LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'))`,
			wantArgs: []interface{}{"%milk%", "%milk%"},
		},
		{
			name:     "completed",
			filter:   TodoFilter{Completed: boolPtr(false)},
			wantSQL:  "(completed = ?)",
			wantArgs: []interface{}{false},
		},
		{
			name: "all criteria",
			filter: TodoFilter{
				Search:     "x",
				Completed:  boolPtr(true),
				CategoryID: uintPtr(3),
				Priority:   priorityPtr(domain.PriorityHigh),
			},
			wantSQL:  `((LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\') AND completed = ? AND category_id = ? AND priority = ?)`,
			wantArgs: []interface{}{"%x%", "%x%", true, uint(3), "high"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlizer := tt.filter.Sqlizer()
			if tt.wantSQL == "" {
				assert.Nil(t, sqlizer)
				return
			}
			require.NotNil(t, sqlizer)

			sql, args, err := sqlizer.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "plain", escapeLike("plain"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `C:\\tmp`, escapeLike(`C:\tmp`))
}

func TestTodoListOptions_Offset(t *testing.T) {
	assert.Equal(t, 0, TodoListOptions{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 10, TodoListOptions{Page: 2, Limit: 10}.Offset())
	assert.Equal(t, 150, TodoListOptions{Page: 4, Limit: 50}.Offset())
	assert.Equal(t, 0, TodoListOptions{Page: 0, Limit: 10}.Offset())

	// Overflowing pages saturate instead of wrapping back to page one.
	assert.Equal(t, math.MaxInt, TodoListOptions{Page: math.MaxInt/50 + 2, Limit: 50}.Offset())
	assert.Equal(t, math.MaxInt, TodoListOptions{Page: math.MaxInt, Limit: 2}.Offset())
}
