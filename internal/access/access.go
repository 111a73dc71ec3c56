package access

import (
	"context"

	"planora/internal/model"

	"github.com/google/uuid"
)

// Deny reasons surfaced to the API layer. "not found" and "not a member" are
// kept distinct so the UI can route to a 404 versus an access-denied view.
const (
	ReasonNotFound         = "not found"
	ReasonNotAMember       = "not a member"
	ReasonInsufficientRole = "insufficient role"
)

// Decision is the outcome of an access check. Reason is set only on denial.
type Decision struct {
	HasAccess bool
	Reason    string
}

type ProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
}

type MemberStore interface {
	Get(ctx context.Context, projectID, userID uuid.UUID) (*model.ProjectMember, error)
}

// Evaluator decides project access from ownership and membership rows.
// It is read-only and must be consulted before every project-scoped
// read or mutation.
type Evaluator struct {
	projects ProjectStore
	members  MemberStore
}

func NewEvaluator(projects ProjectStore, members MemberStore) *Evaluator {
	return &Evaluator{projects: projects, members: members}
}

// Check evaluates whether userID may act on projectID. An empty minRole
// means any membership suffices. The owner satisfies any minimum role.
func (e *Evaluator) Check(ctx context.Context, projectID, userID uuid.UUID, minRole string) (Decision, error) {
	project, err := e.projects.GetByID(ctx, projectID)
	if err != nil {
		return Decision{}, err
	}
	if project == nil {
		return Decision{Reason: ReasonNotFound}, nil
	}

	if project.OwnerID == userID {
		return Decision{HasAccess: true}, nil
	}

	member, err := e.members.Get(ctx, projectID, userID)
	if err != nil {
		return Decision{}, err
	}
	if member == nil {
		return Decision{Reason: ReasonNotAMember}, nil
	}

	if minRole != "" && !model.RoleAtLeast(member.Role, minRole) {
		return Decision{Reason: ReasonInsufficientRole}, nil
	}

	return Decision{HasAccess: true}, nil
}
