package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	for _, p := range Priorities {
		got, err := ParsePriority(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParsePriority("urgent")
	assert.Error(t, err)
	_, err = ParsePriority("")
	assert.Error(t, err)
}

func TestPriority_Scan(t *testing.T) {
	var p Priority
	require.NoError(t, p.Scan("high"))
	assert.Equal(t, PriorityHigh, p)

	require.NoError(t, p.Scan([]byte("low")))
	assert.Equal(t, PriorityLow, p)

	assert.Error(t, p.Scan(42))
}

func TestOptional_UnmarshalJSON(t *testing.T) {
	var body struct {
		Title       Optional[string] `json:"title"`
		Description Optional[string] `json:"description"`
		CategoryID  Optional[uint]   `json:"category_id"`
	}

	err := json.Unmarshal([]byte(`{"description": null, "category_id": 7}`), &body)
	require.NoError(t, err)

	assert.False(t, body.Title.Set, "absent key must stay unset")

	assert.True(t, body.Description.Set)
	assert.True(t, body.Description.Null)
	assert.Nil(t, body.Description.Ptr())

	assert.True(t, body.CategoryID.Set)
	assert.False(t, body.CategoryID.Null)
	require.NotNil(t, body.CategoryID.Ptr())
	assert.Equal(t, uint(7), *body.CategoryID.Ptr())
}

func TestOptional_UnmarshalJSONTypeMismatch(t *testing.T) {
	var body struct {
		Completed Optional[bool] `json:"completed"`
	}
	err := json.Unmarshal([]byte(`{"completed": "yes"}`), &body)
	assert.Error(t, err)
}

func TestTodoPatch_Apply(t *testing.T) {
	desc := "old description"
	catID := uint(3)
	created := time.Now().Add(-time.Hour)

	newTodo := func() *Todo {
		return &Todo{
			ID:          1,
			Title:       "Write report",
			Description: &desc,
			Priority:    PriorityHigh,
			CategoryID:  &catID,
			Category:    &Category{ID: catID, Name: "Work"},
			CreatedAt:   created,
		}
	}

	t.Run("only description", func(t *testing.T) {
		todo := newTodo()
		TodoPatch{Description: Some("new description")}.Apply(todo)

		require.NotNil(t, todo.Description)
		assert.Equal(t, "new description", *todo.Description)
		assert.Equal(t, "Write report", todo.Title)
		assert.Equal(t, PriorityHigh, todo.Priority)
		require.NotNil(t, todo.CategoryID)
		assert.Equal(t, catID, *todo.CategoryID)
		assert.NotNil(t, todo.Category)
	})

	t.Run("null clears nullable fields", func(t *testing.T) {
		todo := newTodo()
		TodoPatch{
			Description: Null[string](),
			CategoryID:  Null[uint](),
		}.Apply(todo)

		assert.Nil(t, todo.Description)
		assert.Nil(t, todo.CategoryID)
		assert.Nil(t, todo.Category)
	})

	t.Run("completed and priority", func(t *testing.T) {
		todo := newTodo()
		TodoPatch{
			Completed: Some(true),
			Priority:  Some(PriorityLow),
		}.Apply(todo)

		assert.True(t, todo.Completed)
		assert.Equal(t, PriorityLow, todo.Priority)
	})

	t.Run("empty patch", func(t *testing.T) {
		assert.True(t, TodoPatch{}.Empty())
		assert.False(t, TodoPatch{Title: Some("x")}.Empty())
	})
}
