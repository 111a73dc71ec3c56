package repository

import (
	"context"
	"errors"

	"planora/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StatusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) Create(ctx context.Context, status *model.TaskStatus) error {
	return r.db.WithContext(ctx).Create(status).Error
}

func (r *StatusRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TaskStatus, error) {
	var status model.TaskStatus
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&status).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

// ListByProject returns the project's columns in board order.
func (r *StatusRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.TaskStatus, error) {
	var statuses []model.TaskStatus
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("position ASC").
		Find(&statuses).Error
	return statuses, err
}

func (r *StatusRepository) Update(ctx context.Context, status *model.TaskStatus) error {
	return r.db.WithContext(ctx).Save(status).Error
}

func (r *StatusRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.TaskStatus{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
