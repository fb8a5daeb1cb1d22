package gormstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/apiserver/internal/store"
	"github.com/taskdesk/apiserver/types"
	"gorm.io/gorm"
)

func seedTask(t *testing.T, db *gorm.DB, task types.Task, createdAt time.Time) types.Task {
	t.Helper()

	task.ID = uuid.New()
	task.CreatedAt = createdAt
	task.UpdatedAt = createdAt
	task.ApplyDefaults()
	m := newTaskModel(task)
	require.NoError(t, db.Create(&m).Error)
	return task
}

func listTitles(t *testing.T, repo *TaskRepository, q types.TaskQuery) []string {
	t.Helper()

	tasks, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func TestTaskRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	owner := uuid.New()
	other := uuid.New()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	seedTask(t, db, types.Task{UserID: owner, Title: "Foo report", Description: "quarterly", Priority: types.PriorityLow}, base)
	seedTask(t, db, types.Task{UserID: owner, Title: "Groceries", Description: "FOO bar and milk", Priority: types.PriorityHigh}, base.Add(time.Hour))
	seedTask(t, db, types.Task{UserID: owner, Title: "Laundry", Description: "whites", Priority: types.PriorityMedium, Status: types.TaskStatusCompleted}, base.Add(2*time.Hour))
	seedTask(t, db, types.Task{UserID: owner, Title: "Someday", Description: "maybe", Priority: "someday"}, base.Add(3*time.Hour))
	seedTask(t, db, types.Task{UserID: owner, Title: "Deploy", Description: "prod", Priority: types.PriorityHigh}, base.Add(4*time.Hour))
	seedTask(t, db, types.Task{UserID: other, Title: "Foreign foo", Description: "not yours", Priority: types.PriorityHigh}, base.Add(5*time.Hour))

	t.Run("owner scoped newest first", func(t *testing.T) {
		assert.Equal(t,
			[]string{"Deploy", "Someday", "Laundry", "Groceries", "Foo report"},
			listTitles(t, repo, types.TaskQuery{OwnerID: owner}))
	})

	t.Run("priority rank", func(t *testing.T) {
		assert.Equal(t,
			[]string{"Deploy", "Groceries", "Laundry", "Foo report", "Someday"},
			listTitles(t, repo, types.TaskQuery{OwnerID: owner, SortBy: types.SortByPriority}))
	})

	t.Run("priority filter with priority sort", func(t *testing.T) {
		tasks, err := repo.List(context.Background(), types.TaskQuery{OwnerID: owner, Priority: types.PriorityHigh, SortBy: types.SortByPriority})
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		for _, task := range tasks {
			assert.Equal(t, types.PriorityHigh, task.Priority)
		}
	})

	t.Run("search title or description case-insensitive", func(t *testing.T) {
		assert.ElementsMatch(t,
			[]string{"Foo report", "Groceries"},
			listTitles(t, repo, types.TaskQuery{OwnerID: owner, Search: "foo"}))
	})

	t.Run("search is ANDed with filters", func(t *testing.T) {
		assert.Equal(t,
			[]string{"Groceries"},
			listTitles(t, repo, types.TaskQuery{OwnerID: owner, Search: "foo", Priority: types.PriorityHigh}))
	})

	t.Run("status filter", func(t *testing.T) {
		assert.Equal(t,
			[]string{"Laundry"},
			listTitles(t, repo, types.TaskQuery{OwnerID: owner, Status: types.TaskStatusCompleted}))
	})

	t.Run("search wildcards are literal", func(t *testing.T) {
		assert.Empty(t, listTitles(t, repo, types.TaskQuery{OwnerID: owner, Search: "%"}))
	})

	t.Run("empty result", func(t *testing.T) {
		tasks, err := repo.List(context.Background(), types.TaskQuery{OwnerID: uuid.New()})
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})
}

func TestTaskRepository_ListSearchFoldsUnicode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	owner := uuid.New()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	seedTask(t, db, types.Task{UserID: owner, Title: "ÉTUDE plan", Description: "draft", Priority: types.PriorityHigh}, base)
	seedTask(t, db, types.Task{UserID: owner, Title: "Reading", Description: "étude notes", Priority: types.PriorityLow}, base.Add(time.Hour))
	seedTask(t, db, types.Task{UserID: owner, Title: "Etude", Description: "no accent", Priority: types.PriorityMedium}, base.Add(2*time.Hour))

	assert.Equal(t,
		[]string{"Reading", "ÉTUDE plan"},
		listTitles(t, repo, types.TaskQuery{OwnerID: owner, Search: "étude"}))
	assert.Equal(t,
		[]string{"ÉTUDE plan", "Reading"},
		listTitles(t, repo, types.TaskQuery{OwnerID: owner, Search: "ÉTUDE", SortBy: types.SortByPriority}))
}

func TestTaskRepository_CRUD(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()
	owner := uuid.New()

	created, err := repo.Create(ctx, types.Task{UserID: owner, Title: "T1", Description: "D1", Status: "pending", Priority: "low"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	fetched, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "T1", fetched.Title)
	assert.Equal(t, owner, fetched.UserID)

	fetched.Title = "T1 updated"
	fetched.Status = types.TaskStatusCompleted
	fetched.UserID = uuid.New()
	updated, err := repo.Update(ctx, fetched)
	require.NoError(t, err)
	assert.Equal(t, "T1 updated", updated.Title)
	assert.Equal(t, types.TaskStatusCompleted, updated.Status)
	assert.Equal(t, owner, updated.UserID, "owner must not change")

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), store.ErrNotFound)

	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = repo.Update(ctx, types.Task{ID: uuid.New(), Title: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
