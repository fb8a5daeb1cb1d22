package gormstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/taskdesk/apiserver/internal/store"
	"github.com/taskdesk/apiserver/types"
	"gorm.io/gorm"
)

// TaskRepository provides access to task storage.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns the owner's tasks matching q in q's order. Owner, status and
// priority are filtered in SQL; search and ordering use TaskQuery so that case
// folding covers all of Unicode, which SQLite's LOWER does not.
func (r *TaskRepository) List(ctx context.Context, q types.TaskQuery) ([]types.Task, error) {
	tx := r.db.WithContext(ctx).Model(&taskModel{}).Where("user_id = ?", q.OwnerID)
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Priority != "" {
		tx = tx.Where("priority = ?", q.Priority)
	}

	var models []taskModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]types.Task, 0, len(models))
	for _, m := range models {
		if task := m.toTask(); q.Matches(task) {
			tasks = append(tasks, task)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return q.Less(tasks[i], tasks[j])
	})
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, id uuid.UUID) (types.Task, error) {
	var m taskModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.Task{}, store.ErrNotFound
		}
		return types.Task{}, fmt.Errorf("failed to find task: %w", err)
	}
	return m.toTask(), nil
}

func (r *TaskRepository) Create(ctx context.Context, task types.Task) (types.Task, error) {
	now := time.Now().UTC()
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	task.CreatedAt = now
	task.UpdatedAt = now

	m := newTaskModel(task)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return types.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return m.toTask(), nil
}

// Update writes the mutable fields of task. The owner column is never updated.
func (r *TaskRepository) Update(ctx context.Context, task types.Task) (types.Task, error) {
	result := r.db.WithContext(ctx).Model(&taskModel{}).Where("id = ?", task.ID).Updates(map[string]any{
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
		"priority":    task.Priority,
		"updated_at":  time.Now().UTC(),
	})
	if err := result.Error; err != nil {
		return types.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return types.Task{}, store.ErrNotFound
	}
	return r.Get(ctx, task.ID)
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&taskModel{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
