package handler

import (
	"net/http"

	"planora/internal/model"
	"planora/internal/repository"

	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	statuses *repository.StatusRepository
	tasks    *repository.TaskRepository
	checker  AccessChecker
}

func NewStatusHandler(statuses *repository.StatusRepository, tasks *repository.TaskRepository, checker AccessChecker) *StatusHandler {
	return &StatusHandler{
		statuses: statuses,
		tasks:    tasks,
		checker:  checker,
	}
}

type CreateStatusRequest struct {
	Name     string `json:"name" binding:"required"`
	Position int    `json:"position" binding:"required,min=1"`
}

type UpdateStatusRequest struct {
	Name     *string `json:"name"`
	Position *int    `json:"position"`
}

func (h *StatusHandler) Create(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if !requireAccess(c, h.checker, projectID, sess.UserID, model.RoleMember) {
		return
	}

	var req CreateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	status := &model.TaskStatus{
		ProjectID: projectID,
		Name:      req.Name,
		Position:  req.Position,
	}

	if err := h.statuses.Create(c.Request.Context(), status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create status"})
		return
	}

	c.JSON(http.StatusCreated, TaskStatusResponse{
		ID:       status.ID.String(),
		Name:     status.Name,
		Position: status.Position,
	})
}

// loadAuthorized fetches the status and checks access against its project.
func (h *StatusHandler) loadAuthorized(c *gin.Context) (*model.TaskStatus, bool) {
	sess, ok := currentSession(c)
	if !ok {
		return nil, false
	}

	statusID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil, false
	}

	status, err := h.statuses.GetByID(c.Request.Context(), statusID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve status"})
		return nil, false
	}
	if status == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Status not found"})
		return nil, false
	}

	if !requireAccess(c, h.checker, status.ProjectID, sess.UserID, model.RoleMember) {
		return nil, false
	}

	return status, true
}

func (h *StatusHandler) Update(c *gin.Context) {
	status, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Name != nil {
		status.Name = *req.Name
	}
	if req.Position != nil {
		status.Position = *req.Position
	}

	if err := h.statuses.Update(c.Request.Context(), status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, TaskStatusResponse{
		ID:       status.ID.String(),
		Name:     status.Name,
		Position: status.Position,
	})
}

func (h *StatusHandler) Delete(c *gin.Context) {
	status, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	// A column that still holds tasks cannot be removed.
	count, err := h.tasks.CountByStatus(c.Request.Context(), status.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check status usage"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Status still has tasks assigned"})
		return
	}

	if err := h.statuses.Delete(c.Request.Context(), status.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status deleted"})
}
