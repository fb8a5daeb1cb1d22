package types

import (
	"time"

	"github.com/google/uuid"
)

// Task event types.
const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

// TaskEvent describes a committed change to a task.
type TaskEvent struct {
	// Type is one of task.created, task.updated or task.deleted.
	Type string `json:"type"`

	TaskID uuid.UUID `json:"taskId"`
	UserID uuid.UUID `json:"userId"`

	// Task is the task state after the change. It is nil for deletions.
	Task *Task `json:"task,omitempty"`

	OccurredAt time.Time `json:"occurredAt"`
}
