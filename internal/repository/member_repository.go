package repository

import (
	"context"
	"errors"

	"planora/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Get(ctx context.Context, projectID, userID uuid.UUID) (*model.ProjectMember, error) {
	var member model.ProjectMember
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// List returns all members of a project with user display fields preloaded,
// oldest membership first.
func (r *MemberRepository) List(ctx context.Context, projectID uuid.UUID) ([]model.ProjectMember, error) {
	var members []model.ProjectMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

// Create inserts the membership row. The (project_id, user_id) unique index
// is the authority on uniqueness; a duplicate-key violation from a racing
// insert maps to ErrConflict, same as the registry's pre-check.
func (r *MemberRepository) Create(ctx context.Context, member *model.ProjectMember) error {
	err := r.db.WithContext(ctx).Create(member).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

func (r *MemberRepository) Delete(ctx context.Context, projectID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.ProjectMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MemberRepository) UpdateRole(ctx context.Context, projectID, userID uuid.UUID, role string) error {
	res := r.db.WithContext(ctx).
		Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MemberRepository) CountByRole(ctx context.Context, projectID uuid.UUID, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ProjectMember{}).
		Where("project_id = ? AND role = ?", projectID, role).
		Count(&count).Error
	return count, err
}
