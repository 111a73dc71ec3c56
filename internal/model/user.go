package model

import (
	"time"

	"github.com/google/uuid"
)

// Global application roles, distinct from per-project membership roles.
const (
	GlobalRoleAdmin  = "ADMIN"
	GlobalRolePM     = "PM"
	GlobalRoleMember = "MEMBER"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Email          string    `gorm:"uniqueIndex;not null"`
	Username       string    `gorm:"uniqueIndex;not null"`
	Name           string    `gorm:"not null"`
	HashedPassword string    `gorm:"not null"`
	Role           string    `gorm:"not null;default:'MEMBER'"`
	AvatarURL      string
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}
