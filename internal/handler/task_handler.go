package handler

import (
	"errors"
	"net/http"
	"time"

	"planora/internal/model"
	"planora/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	tasks    *repository.TaskRepository
	statuses *repository.StatusRepository
	checker  AccessChecker
}

func NewTaskHandler(tasks *repository.TaskRepository, statuses *repository.StatusRepository, checker AccessChecker) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		statuses: statuses,
		checker:  checker,
	}
}

type CreateTaskRequest struct {
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description"`
	Documentation  string     `json:"documentation"`
	Priority       string     `json:"priority"`
	StatusID       string     `json:"status_id" binding:"required,uuid"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	AssigneeID     *string    `json:"assignee_id"`
}

type UpdateTaskRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Documentation  *string    `json:"documentation"`
	Priority       *string    `json:"priority"`
	StatusID       *string    `json:"status_id"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`
	AssigneeID     *string    `json:"assignee_id"`
}

type TaskResponse struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"project_id"`
	StatusID       string     `json:"status_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Documentation  string     `json:"documentation,omitempty"`
	Priority       string     `json:"priority"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	ActualHours    *float64   `json:"actual_hours,omitempty"`
	AssigneeID     *string    `json:"assignee_id,omitempty"`
	AssigneeName   *string    `json:"assignee_name,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func taskResponse(t *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:             t.ID.String(),
		ProjectID:      t.ProjectID.String(),
		StatusID:       t.StatusID.String(),
		Title:          t.Title,
		Description:    t.Description,
		Documentation:  t.Documentation,
		Priority:       t.Priority,
		DueDate:        t.DueDate,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		CompletedAt:    t.CompletedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.AssigneeID != nil {
		id := t.AssigneeID.String()
		resp.AssigneeID = &id
	}
	if t.Assignee != nil {
		resp.AssigneeName = &t.Assignee.Name
	}
	return resp
}

// resolveStatus loads the status and verifies it belongs to the project.
// The storage layer does not enforce this, so it is checked here on every
// write that touches status_id.
func (h *TaskHandler) resolveStatus(c *gin.Context, statusID, projectID uuid.UUID) (*model.TaskStatus, bool) {
	status, err := h.statuses.GetByID(c.Request.Context(), statusID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve status"})
		return nil, false
	}
	if status == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Status not found"})
		return nil, false
	}
	if status.ProjectID != projectID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status does not belong to this project"})
		return nil, false
	}
	return status, true
}

func (h *TaskHandler) ListByProject(c *gin.Context) {
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

	tasks, err := h.tasks.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = taskResponse(&tasks[i])
	}

	c.JSON(http.StatusOK, response)
}

func (h *TaskHandler) Create(c *gin.Context) {
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

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	statusID, err := uuid.Parse(req.StatusID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status_id format"})
		return
	}

	if _, ok := h.resolveStatus(c, statusID, projectID); !ok {
		return
	}

	task := &model.Task{
		ProjectID:      projectID,
		StatusID:       statusID,
		Title:          req.Title,
		Description:    req.Description,
		Documentation:  req.Documentation,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
	}
	if task.Priority == "" {
		task.Priority = "MEDIUM"
	}
	if req.AssigneeID != nil {
		assigneeID, err := uuid.Parse(*req.AssigneeID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee_id format"})
			return
		}
		task.AssigneeID = &assigneeID
	}

	if err := h.tasks.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, taskResponse(task))
}

// loadAuthorized fetches the task and checks access against its project.
func (h *TaskHandler) loadAuthorized(c *gin.Context, minRole string) (*model.Task, bool) {
	sess, ok := currentSession(c)
	if !ok {
		return nil, false
	}

	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil, false
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return nil, false
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return nil, false
	}

	if !requireAccess(c, h.checker, task.ProjectID, sess.UserID, minRole) {
		return nil, false
	}

	return task, true
}

func (h *TaskHandler) GetByID(c *gin.Context) {
	task, ok := h.loadAuthorized(c, "")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, taskResponse(task))
}

func (h *TaskHandler) Update(c *gin.Context) {
	task, ok := h.loadAuthorized(c, model.RoleMember)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Documentation != nil {
		task.Documentation = *req.Documentation
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.EstimatedHours != nil {
		task.EstimatedHours = req.EstimatedHours
	}
	if req.ActualHours != nil {
		task.ActualHours = req.ActualHours
	}
	if req.StatusID != nil {
		statusID, err := uuid.Parse(*req.StatusID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status_id format"})
			return
		}
		if _, ok := h.resolveStatus(c, statusID, task.ProjectID); !ok {
			return
		}
		task.StatusID = statusID
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			task.AssigneeID = nil
		} else {
			assigneeID, err := uuid.Parse(*req.AssigneeID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee_id format"})
				return
			}
			task.AssigneeID = &assigneeID
		}
	}

	if err := h.tasks.Update(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, taskResponse(task))
}

func (h *TaskHandler) Complete(c *gin.Context) {
	task, ok := h.loadAuthorized(c, model.RoleMember)
	if !ok {
		return
	}

	now := time.Now()
	task.CompletedAt = &now

	if err := h.tasks.Update(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete task"})
		return
	}

	c.JSON(http.StatusOK, taskResponse(task))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	task, ok := h.loadAuthorized(c, model.RoleMember)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), task.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}
