package types

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses. The set is a client contract; other values are stored as given.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
)

// Task priorities, in descending order of urgency.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

const (
	DefaultTaskStatus   = TaskStatusPending
	DefaultTaskPriority = PriorityLow
)

// Task is a unit of work owned by exactly one user.
type Task struct {
	// ID is the unique identifier of the task.
	ID uuid.UUID `json:"id" db:"id"`

	// UserID references the owning user. It never changes after creation.
	UserID uuid.UUID `json:"userId" db:"user_id"`

	// Title is a short summary of the task.
	Title string `json:"title" db:"title"`

	// Description holds the task details.
	Description string `json:"description" db:"description"`

	// Status is the workflow state (pending, in-progress, completed).
	Status string `json:"status" db:"status"`

	// Priority is one of high, medium or low.
	Priority string `json:"priority" db:"priority"`

	// CreatedAt is the timestamp at which the task was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent change to the task.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ApplyDefaults fills status and priority when they are empty.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = DefaultTaskStatus
	}
	if t.Priority == "" {
		t.Priority = DefaultTaskPriority
	}
}

// TaskPatch carries the replaceable fields of a task. Identity, ownership and
// timestamps are not patchable.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
}

// Apply copies every provided field onto the task.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil
}
