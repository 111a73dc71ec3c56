package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"planora/internal/model"
	"planora/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MemberRegistry is satisfied by *membership.Registry.
type MemberRegistry interface {
	AddMember(ctx context.Context, projectID, userID uuid.UUID, role string, addedBy uuid.UUID) (*model.ProjectMember, error)
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error
	UpdateMemberRole(ctx context.Context, projectID, userID uuid.UUID, newRole string) (*model.ProjectMember, error)
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]model.ProjectMember, error)
}

type MemberHandler struct {
	registry MemberRegistry
	users    repository.UserRepositoryInterface
	checker  AccessChecker
}

func NewMemberHandler(registry MemberRegistry, users repository.UserRepositoryInterface, checker AccessChecker) *MemberHandler {
	return &MemberHandler{
		registry: registry,
		users:    users,
		checker:  checker,
	}
}

type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role" binding:"required,oneof=OWNER MEMBER"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=OWNER MEMBER"`
}

type MemberResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

func memberResponse(m *model.ProjectMember) MemberResponse {
	return MemberResponse{
		UserID:    m.UserID.String(),
		Email:     m.User.Email,
		Username:  m.User.Username,
		Name:      m.User.Name,
		AvatarURL: m.User.AvatarURL,
		Role:      m.Role,
		JoinedAt:  m.JoinedAt,
	}
}

// List returns project members; any member may read the roster.
func (h *MemberHandler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if !requireAccess(c, h.checker, projectID, sess.UserID, "") {
		return
	}

	members, err := h.registry.ListMembers(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
		return
	}

	response := make([]MemberResponse, len(members))
	for i := range members {
		response[i] = memberResponse(&members[i])
	}

	c.JSON(http.StatusOK, response)
}

func (h *MemberHandler) Add(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if !requireAccess(c, h.checker, projectID, sess.UserID, model.RoleOwner) {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	targetUserID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id format"})
		return
	}

	targetUser, err := h.users.GetByID(c.Request.Context(), targetUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}
	if targetUser == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	member, err := h.registry.AddMember(c.Request.Context(), projectID, targetUserID, req.Role, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this project"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	member.User = *targetUser
	c.JSON(http.StatusCreated, memberResponse(member))
}

func (h *MemberHandler) UpdateRole(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	targetUserID, ok := parseUUIDParam(c, "user_id")
	if !ok {
		return
	}

	if !requireAccess(c, h.checker, projectID, sess.UserID, model.RoleOwner) {
		return
	}

	var req UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	member, err := h.registry.UpdateMemberRole(c.Request.Context(), projectID, targetUserID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		case errors.Is(err, repository.ErrLastOwner):
			c.JSON(http.StatusConflict, gin.H{"error": "Project must keep at least one owner"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update member role"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": member.UserID.String(),
		"role":    member.Role,
	})
}

func (h *MemberHandler) Remove(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	targetUserID, ok := parseUUIDParam(c, "user_id")
	if !ok {
		return
	}

	if !requireAccess(c, h.checker, projectID, sess.UserID, model.RoleOwner) {
		return
	}

	if err := h.registry.RemoveMember(c.Request.Context(), projectID, targetUserID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		case errors.Is(err, repository.ErrLastOwner):
			c.JSON(http.StatusConflict, gin.H{"error": "Project must keep at least one owner"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
