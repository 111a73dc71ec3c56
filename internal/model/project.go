package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ProjectStatusPlanning   = "PLANNING"
	ProjectStatusInProgress = "IN_PROGRESS"
	ProjectStatusCompleted  = "COMPLETED"
)

type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name        string    `gorm:"not null"`
	Description string
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	StartDate   *time.Time
	EndDate     *time.Time
	Priority    string `gorm:"not null;default:'MEDIUM'"`
	BannerImage string
	// Status is nullable: nil means "derive from dates".
	Status     *string
	CanvasData datatypes.JSON `gorm:"type:jsonb"`
	// DeletedAt is a plain nullable timestamp, not gorm.DeletedAt: trash
	// queries filter it explicitly instead of relying on gorm's soft delete.
	DeletedAt *time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Owner User `gorm:"foreignKey:OwnerID"`
}

func (p *Project) IsTrashed() bool {
	return p.DeletedAt != nil
}

// EffectiveStatus returns the explicit status when set, otherwise one
// derived from the project's date range.
func (p *Project) EffectiveStatus(now time.Time) string {
	if p.Status != nil {
		return *p.Status
	}
	if p.StartDate == nil || now.Before(*p.StartDate) {
		return ProjectStatusPlanning
	}
	if p.EndDate != nil && now.After(*p.EndDate) {
		return ProjectStatusCompleted
	}
	return ProjectStatusInProgress
}
