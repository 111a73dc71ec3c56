package model

import (
	"time"

	"github.com/google/uuid"
)

type Attachment struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	TaskID     *uuid.UUID `gorm:"type:uuid;index"`
	FileName   string     `gorm:"not null"`
	URL        string     `gorm:"not null"`
	Size       int64
	UploadedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	Project Project `gorm:"foreignKey:ProjectID"`
	Task    *Task   `gorm:"foreignKey:TaskID"`
}
