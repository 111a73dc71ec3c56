package repository

import (
	"context"
	"errors"
	"time"

	"planora/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Default Kanban columns seeded for every new project.
var defaultStatuses = []string{"To Do", "In Progress", "Done"}

// Create inserts the project together with its OWNER membership row and the
// default Kanban columns in a single transaction. project.OwnerID is the
// authoritative source of the OWNER row.
func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		owner := model.ProjectMember{
			ProjectID: project.ID,
			UserID:    project.OwnerID,
			Role:      model.RoleOwner,
			AddedBy:   &project.OwnerID,
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}

		for i, name := range defaultStatuses {
			status := model.TaskStatus{
				ProjectID: project.ID,
				Name:      name,
				Position:  i + 1,
			}
			if err := tx.Create(&status).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// GetByID returns the project regardless of trash state; callers decide
// whether a trashed project is visible for their operation.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// ListForUser returns active projects the user owns or is a member of.
func (r *ProjectRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", userID).
		Where("projects.deleted_at IS NULL").
		Order("projects.updated_at DESC").
		Find(&projects).Error
	return projects, err
}

// ListTrashed returns trashed projects owned by the user.
func (r *ProjectRepository) ListTrashed(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Where("deleted_at IS NOT NULL").
		Order("deleted_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *ProjectRepository) UpdateCanvas(ctx context.Context, id uuid.UUID, canvas datatypes.JSON) error {
	return r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ?", id).
		Update("canvas_data", canvas).Error
}

// MoveToTrash marks an active project as trashed.
func (r *ProjectRepository) MoveToTrash(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore clears the trash marker.
func (r *ProjectRepository) Restore(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Purge permanently deletes the project and everything it owns. Children go
// first so no foreign key is left dangling mid-sequence; the surrounding
// transaction guarantees no orphan rows survive a partial failure.
func (r *ProjectRepository) Purge(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id IN (?)",
			tx.Model(&model.Task{}).Select("id").Where("project_id = ?", id),
		).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.TaskStatus{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.ProjectMember{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
