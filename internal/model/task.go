package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID      uuid.UUID `gorm:"type:uuid;not null;index"`
	StatusID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Title          string    `gorm:"not null"`
	Description    string
	Documentation  string
	Priority       string `gorm:"not null;default:'MEDIUM'"`
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	AssigneeID     *uuid.UUID `gorm:"type:uuid"`
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Project  Project    `gorm:"foreignKey:ProjectID"`
	Status   TaskStatus `gorm:"foreignKey:StatusID"`
	Assignee *User      `gorm:"foreignKey:AssigneeID"`
}
