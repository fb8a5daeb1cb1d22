// Package gormstore implements the user and task repositories on gorm. It is
// used for the embedded sqlite backend and in tests.
package gormstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskdesk/apiserver/types"
	"gorm.io/gorm"
)

type userModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userModel) TableName() string {
	return "users"
}

func (m userModel) toUser() types.User {
	return types.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type taskModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"not null"`
	Description string    `gorm:"not null"`
	Status      string    `gorm:"not null;default:pending"`
	Priority    string    `gorm:"not null;default:low"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (taskModel) TableName() string {
	return "tasks"
}

func newTaskModel(t types.Task) taskModel {
	return taskModel{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (m taskModel) toTask() types.Task {
	return types.Task{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Status:      m.Status,
		Priority:    m.Priority,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// AutoMigrate creates or updates the users and tasks tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userModel{}, &taskModel{})
}
