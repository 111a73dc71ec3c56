package model

import (
	"github.com/google/uuid"
)

// TaskStatus is a Kanban column; Position defines its order within the board.
type TaskStatus struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	Position  int       `gorm:"not null"`

	Project Project `gorm:"foreignKey:ProjectID"`
}
