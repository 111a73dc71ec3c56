package model

import (
	"time"

	"github.com/google/uuid"
)

// Per-project membership roles.
const (
	RoleOwner  = "OWNER"
	RoleMember = "MEMBER"
)

var roleRank = map[string]int{
	RoleMember: 1,
	RoleOwner:  2,
}

// RoleAtLeast reports whether role meets or exceeds min in the
// OWNER > MEMBER ordering. Unknown roles never satisfy a minimum.
func RoleAtLeast(role, min string) bool {
	return roleRank[role] >= roleRank[min] && roleRank[role] > 0
}

// ValidRole reports whether role is a known membership role.
func ValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

type ProjectMember struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_project_user"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_project_user"`
	Role      string     `gorm:"not null;check:role IN ('OWNER', 'MEMBER')"`
	JoinedAt  time.Time  `gorm:"autoCreateTime"`
	AddedBy   *uuid.UUID `gorm:"type:uuid"`

	Project Project `gorm:"foreignKey:ProjectID"`
	User    User    `gorm:"foreignKey:UserID"`
}
