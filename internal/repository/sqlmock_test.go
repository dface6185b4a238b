package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

// setupMockDB opens gorm with the postgres dialect on top of sqlmock, so the
// generated statements can be asserted without a running server.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

var todoColumns = []string{
	"id", "title", "description", "completed", "priority",
	"due_date", "category_id", "created_at", "updated_at",
}

func TestTodoRepository_ListCountsBeforePaging(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormTodoRepository(db)

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "todos" WHERE \(completed = \$1\)`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT \* FROM "todos" WHERE \(completed = \$1\) ORDER BY id ASC LIMIT`).
		WillReturnRows(sqlmock.NewRows(todoColumns).
			AddRow(11, "Eleventh", nil, true, "low", nil, nil, now, now).
			AddRow(12, "Twelfth", nil, true, "high", nil, nil, now, now))
	mock.ExpectCommit()

	todos, total, err := repo.List(context.Background(), TodoListOptions{
		Page:   2,
		Limit:  10,
		Filter: TodoFilter{Completed: boolPtr(true)},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 12, total)
	require.Len(t, todos, 2)
	assert.Equal(t, "Eleventh", todos[0].Title)
	assert.Equal(t, domain.PriorityHigh, todos[1].Priority)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_ListRollsBackOnQueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormTodoRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "todos"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	todos, total, err := repo.List(context.Background(), TodoListOptions{Page: 1, Limit: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count todos")
	assert.Nil(t, todos)
	assert.Zero(t, total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_UpdateRollsBackOnWriteError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormTodoRepository(db)

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "todos" WHERE "todos"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows(todoColumns).
			AddRow(1, "Original", "desc", false, "medium", nil, nil, now, now))
	mock.ExpectExec(`UPDATE "todos" SET`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	updated, err := repo.Update(context.Background(), 1, domain.TodoPatch{Title: domain.Some("Changed")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update todo 1")
	assert.Nil(t, updated)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_DeleteMissingRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormTodoRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "todos" WHERE "todos"."id" = \$1`).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	deleted, err := repo.Delete(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_DeleteDetachesTodosFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "todos" SET .*"category_id"=\$\d.* WHERE category_id = \$\d`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "categories" WHERE "categories"."id" = \$1`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := repo.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, deleted)

	assert.NoError(t, mock.ExpectationsWereMet())
}
