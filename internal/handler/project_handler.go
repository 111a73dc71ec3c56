package handler

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"planora/internal/model"
	"planora/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProjectHandler struct {
	projects *repository.ProjectRepository
	tasks    *repository.TaskRepository
	statuses *repository.StatusRepository
	checker  AccessChecker
	cache    ViewCache
}

func NewProjectHandler(
	projects *repository.ProjectRepository,
	tasks *repository.TaskRepository,
	statuses *repository.StatusRepository,
	checker AccessChecker,
	cache ViewCache,
) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		tasks:    tasks,
		statuses: statuses,
		checker:  checker,
		cache:    cache,
	}
}

type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	BannerImage string     `json:"banner_image"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateProjectRequest uses pointers so PATCH can distinguish omitted
// fields from explicit values. Status is raw because an explicit null is
// meaningful: it switches the project back to date-derived status.
type UpdateProjectRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Priority    *string         `json:"priority"`
	BannerImage *string         `json:"banner_image"`
	StartDate   *time.Time      `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
	Status      json.RawMessage `json:"status"`
}

type ProjectResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	OwnerID     string     `json:"owner_id"`
	Priority    string     `json:"priority"`
	BannerImage string     `json:"banner_image,omitempty"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type TaskStatusResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type ProjectDetailResponse struct {
	Project  ProjectResponse      `json:"project"`
	Statuses []TaskStatusResponse `json:"statuses"`
	Tasks    []TaskResponse       `json:"tasks"`
}

func projectResponse(p *model.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID.String(),
		Priority:    p.Priority,
		BannerImage: p.BannerImage,
		Status:      p.EffectiveStatus(time.Now()),
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		DeletedAt:   p.DeletedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     sess.UserID,
		Priority:    req.Priority,
		BannerImage: req.BannerImage,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if project.Priority == "" {
		project.Priority = "MEDIUM"
	}

	if err := h.projects.Create(c.Request.Context(), project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, projectResponse(project))
}

// List returns active projects the user owns or is a member of.
func (h *ProjectHandler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	projects, err := h.projects.ListForUser(c.Request.Context(), sess.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := make([]ProjectResponse, len(projects))
	for i := range projects {
		response[i] = projectResponse(&projects[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetByID returns the project with its statuses and tasks. The rendered
// view is cached until a membership or project mutation invalidates it.
func (h *ProjectHandler) GetByID(c *gin.Context) {
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

	if h.cache != nil {
		if payload, err := h.cache.GetProject(c.Request.Context(), projectID); err == nil && payload != nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			return
		}
	}

	project, err := h.projects.GetByID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}
	if project == nil || project.IsTrashed() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	statuses, err := h.statuses.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve statuses"})
		return
	}

	tasks, err := h.tasks.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	detail := ProjectDetailResponse{Project: projectResponse(project)}
	detail.Statuses = make([]TaskStatusResponse, len(statuses))
	for i, s := range statuses {
		detail.Statuses[i] = TaskStatusResponse{ID: s.ID.String(), Name: s.Name, Position: s.Position}
	}
	detail.Tasks = make([]TaskResponse, len(tasks))
	for i := range tasks {
		detail.Tasks[i] = taskResponse(&tasks[i])
	}

	if h.cache != nil {
		if payload, err := json.Marshal(detail); err == nil {
			if err := h.cache.SetProject(c.Request.Context(), projectID, payload); err != nil {
				log.Printf("⚠️  Failed to cache project view %s: %v", projectID, err)
			}
		}
	}

	c.JSON(http.StatusOK, detail)
}

func (h *ProjectHandler) Update(c *gin.Context) {
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

	project, err := h.projects.GetByID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}
	if project == nil || project.IsTrashed() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Priority != nil {
		project.Priority = *req.Priority
	}
	if req.BannerImage != nil {
		project.BannerImage = *req.BannerImage
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	if len(req.Status) > 0 {
		if bytes.Equal(req.Status, []byte("null")) {
			project.Status = nil
		} else {
			var status string
			if err := json.Unmarshal(req.Status, &status); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
				return
			}
			project.Status = &status
		}
	}

	if err := h.projects.Update(c.Request.Context(), project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	h.invalidate(c, projectID)
	c.JSON(http.StatusOK, projectResponse(project))
}

// Delete permanently removes the project and cascades over its children.
func (h *ProjectHandler) Delete(c *gin.Context) {
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

	if err := h.projects.Purge(c.Request.Context(), projectID); err != nil {
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	h.invalidate(c, projectID)
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted permanently"})
}

func (h *ProjectHandler) MoveToTrash(c *gin.Context) {
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

	if err := h.projects.MoveToTrash(c.Request.Context(), projectID); err != nil {
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found or already trashed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move project to trash"})
		return
	}

	h.invalidate(c, projectID)
	c.JSON(http.StatusOK, gin.H{"message": "Project moved to trash"})
}

func (h *ProjectHandler) Restore(c *gin.Context) {
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

	if err := h.projects.Restore(c.Request.Context(), projectID); err != nil {
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project is not in trash"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restore project"})
		return
	}

	h.invalidate(c, projectID)
	c.JSON(http.StatusOK, gin.H{"message": "Project restored"})
}

func (h *ProjectHandler) ListTrash(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	projects, err := h.projects.ListTrashed(c.Request.Context(), sess.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve trash"})
		return
	}

	response := make([]ProjectResponse, len(projects))
	for i := range projects {
		response[i] = projectResponse(&projects[i])
	}

	c.JSON(http.StatusOK, response)
}

func (h *ProjectHandler) invalidate(c *gin.Context, projectID uuid.UUID) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateProject(c.Request.Context(), projectID); err != nil {
		log.Printf("⚠️  Failed to invalidate project view %s: %v", projectID, err)
	}
}
