package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskdesk/apiserver/types"
	"go.uber.org/zap"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	List(ctx context.Context, q types.TaskQuery) ([]types.Task, error)
	Get(ctx context.Context, id uuid.UUID) (types.Task, error)
	Create(ctx context.Context, task types.Task) (types.Task, error)
	Update(ctx context.Context, task types.Task) (types.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventPublisher receives task changes after they are committed.
type EventPublisher interface {
	PublishTaskEvent(ctx context.Context, event types.TaskEvent) error
}

// TaskService encapsulates owner-scoped task use-cases.
type TaskService struct {
	repo      TaskRepository
	publisher EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

// NewTaskService constructs a TaskService. publisher may be nil.
func NewTaskService(repo TaskRepository, publisher EventPublisher, log *zap.Logger) *TaskService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskService{repo: repo, publisher: publisher, log: log, now: time.Now}
}

// Create stores a task owned by ownerID, defaulting status and priority.
// Title and description are required.
func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, task types.Task) (types.Task, error) {
	if err := requireFields("title", task.Title, "description", task.Description); err != nil {
		return types.Task{}, err
	}
	task.ID = uuid.Nil
	task.UserID = ownerID
	task.ApplyDefaults()

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return types.Task{}, err
	}
	s.publish(ctx, types.TaskCreated, created.ID, ownerID, &created)
	return created, nil
}

// List returns the tasks matching q. q.OwnerID scopes the result.
func (s *TaskService) List(ctx context.Context, q types.TaskQuery) ([]types.Task, error) {
	return s.repo.List(ctx, q)
}

// Update applies patch to the task. A missing task yields store.ErrNotFound
// before ownership is checked; a task owned by someone else yields ErrForbidden.
// An empty patch returns the stored task without writing or publishing.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID uuid.UUID, patch types.TaskPatch) (types.Task, error) {
	task, err := s.owned(ctx, ownerID, taskID)
	if err != nil {
		return types.Task{}, err
	}

	if patch.Empty() {
		return task, nil
	}

	patch.Apply(&task)
	updated, err := s.repo.Update(ctx, task)
	if err != nil {
		return types.Task{}, err
	}
	s.publish(ctx, types.TaskUpdated, updated.ID, ownerID, &updated)
	return updated, nil
}

// Delete removes the task with the same existence and ownership checks as Update.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if _, err := s.owned(ctx, ownerID, taskID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, taskID); err != nil {
		return err
	}
	s.publish(ctx, types.TaskDeleted, taskID, ownerID, nil)
	return nil
}

func (s *TaskService) owned(ctx context.Context, ownerID, taskID uuid.UUID) (types.Task, error) {
	task, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return types.Task{}, err
	}
	if task.UserID != ownerID {
		return types.Task{}, ErrForbidden
	}
	return task, nil
}

// publish is best effort: the change is already committed, so a failed
// publish is logged and not returned.
func (s *TaskService) publish(ctx context.Context, eventType string, taskID, ownerID uuid.UUID, task *types.Task) {
	if s.publisher == nil {
		return
	}
	event := types.TaskEvent{
		Type:       eventType,
		TaskID:     taskID,
		UserID:     ownerID,
		Task:       task,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishTaskEvent(ctx, event); err != nil {
		s.log.Warn("publish task event failed",
			zap.String("type", eventType),
			zap.String("task_id", taskID.String()),
			zap.Error(err),
		)
	}
}
