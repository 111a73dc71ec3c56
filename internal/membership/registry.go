package membership

import (
	"context"
	"log"

	"planora/internal/model"
	"planora/internal/repository"

	"github.com/google/uuid"
)

type MemberStore interface {
	Get(ctx context.Context, projectID, userID uuid.UUID) (*model.ProjectMember, error)
	List(ctx context.Context, projectID uuid.UUID) ([]model.ProjectMember, error)
	Create(ctx context.Context, member *model.ProjectMember) error
	Delete(ctx context.Context, projectID, userID uuid.UUID) error
	UpdateRole(ctx context.Context, projectID, userID uuid.UUID, role string) error
	CountByRole(ctx context.Context, projectID uuid.UUID, role string) (int64, error)
}

// Invalidator drops cached membership-dependent project views.
type Invalidator interface {
	InvalidateProject(ctx context.Context, projectID uuid.UUID) error
}

// Registry owns the membership lifecycle rules: uniqueness per
// (project, user) and the guarantee that a project never loses its last
// OWNER-role member.
type Registry struct {
	members MemberStore
	cache   Invalidator
}

func NewRegistry(members MemberStore, cache Invalidator) *Registry {
	return &Registry{members: members, cache: cache}
}

func (r *Registry) AddMember(ctx context.Context, projectID, userID uuid.UUID, role string, addedBy uuid.UUID) (*model.ProjectMember, error) {
	existing, err := r.members.Get(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, repository.ErrConflict
	}

	member := &model.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		AddedBy:   &addedBy,
	}
	if err := r.members.Create(ctx, member); err != nil {
		return nil, err
	}

	r.invalidate(ctx, projectID)
	return member, nil
}

func (r *Registry) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	member, err := r.members.Get(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return repository.ErrNotFound
	}

	if member.Role == model.RoleOwner {
		owners, err := r.members.CountByRole(ctx, projectID, model.RoleOwner)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return repository.ErrLastOwner
		}
	}

	if err := r.members.Delete(ctx, projectID, userID); err != nil {
		return err
	}

	r.invalidate(ctx, projectID)
	return nil
}

func (r *Registry) UpdateMemberRole(ctx context.Context, projectID, userID uuid.UUID, newRole string) (*model.ProjectMember, error) {
	member, err := r.members.Get(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, repository.ErrNotFound
	}

	// Demoting the sole owner would leave the project ownerless.
	if member.Role == model.RoleOwner && newRole != model.RoleOwner {
		owners, err := r.members.CountByRole(ctx, projectID, model.RoleOwner)
		if err != nil {
			return nil, err
		}
		if owners <= 1 {
			return nil, repository.ErrLastOwner
		}
	}

	if err := r.members.UpdateRole(ctx, projectID, userID, newRole); err != nil {
		return nil, err
	}

	member.Role = newRole
	r.invalidate(ctx, projectID)
	return member, nil
}

func (r *Registry) ListMembers(ctx context.Context, projectID uuid.UUID) ([]model.ProjectMember, error) {
	return r.members.List(ctx, projectID)
}

// invalidate is best-effort: a stale cached view is preferable to failing
// the mutation that already committed.
func (r *Registry) invalidate(ctx context.Context, projectID uuid.UUID) {
	if r.cache == nil {
		return
	}
	if err := r.cache.InvalidateProject(ctx, projectID); err != nil {
		log.Printf("⚠️  Failed to invalidate project view %s: %v", projectID, err)
	}
}
