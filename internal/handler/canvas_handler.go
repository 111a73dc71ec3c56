package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"planora/internal/gateway"
	"planora/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// CanvasGateway is the subset of the bridge client the canvas needs.
type CanvasGateway interface {
	Query(ctx context.Context, req gateway.QueryRequest) (*gateway.Result, error)
	Exec(ctx context.Context, server, database, sql string, params map[string]interface{}) (*gateway.Result, error)
	WriteServer() string
	WriteDatabase() string
}

// CanvasHandler reads and writes the whiteboard blob through the SQL
// gateway directly, bypassing the ORM. A copy is mirrored into the local
// project row so the canvas survives gateway outages read-only.
type CanvasHandler struct {
	gw       CanvasGateway
	projects *repository.ProjectRepository
	checker  AccessChecker
}

func NewCanvasHandler(gw CanvasGateway, projects *repository.ProjectRepository, checker AccessChecker) *CanvasHandler {
	return &CanvasHandler{
		gw:       gw,
		projects: projects,
		checker:  checker,
	}
}

type CanvasPayload struct {
	Elements json.RawMessage `json:"elements"`
	AppState json.RawMessage `json:"appState"`
}

func emptyCanvas() CanvasPayload {
	return CanvasPayload{
		Elements: json.RawMessage("[]"),
		AppState: json.RawMessage("{}"),
	}
}

func (h *CanvasHandler) Get(c *gin.Context) {
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

	res, err := h.gw.Query(c.Request.Context(), gateway.QueryRequest{
		SQL:      "SELECT canvas_data FROM project_canvas WHERE project_id = @project_id",
		Server:   h.gw.WriteServer(),
		Database: h.gw.WriteDatabase(),
		Params:   map[string]interface{}{"project_id": projectID.String()},
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Canvas storage unavailable"})
		return
	}

	if len(res.Recordset) == 0 {
		c.JSON(http.StatusOK, emptyCanvas())
		return
	}

	raw, _ := res.Recordset[0]["canvas_data"].(string)
	var payload CanvasPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		// A corrupt blob is treated as "no data", not a hard failure.
		log.Printf("⚠️  Malformed canvas data for project %s: %v", projectID, err)
		c.JSON(http.StatusOK, emptyCanvas())
		return
	}

	c.JSON(http.StatusOK, payload)
}

func (h *CanvasHandler) Save(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	projectID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	// Any member may draw; the canvas is shared workspace, not owner-only.
	if !requireAccess(c, h.checker, projectID, sess.UserID, "") {
		return
	}

	var payload CanvasPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid canvas payload"})
		return
	}
	if payload.Elements == nil {
		payload.Elements = json.RawMessage("[]")
	}
	if payload.AppState == nil {
		payload.AppState = json.RawMessage("{}")
	}

	blob, err := json.Marshal(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode canvas"})
		return
	}

	params := map[string]interface{}{
		"project_id":  projectID.String(),
		"canvas_data": string(blob),
	}

	res, err := h.gw.Exec(c.Request.Context(), h.gw.WriteServer(), h.gw.WriteDatabase(),
		"UPDATE project_canvas SET canvas_data = @canvas_data WHERE project_id = @project_id", params)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Canvas storage unavailable"})
		return
	}

	updated := false
	for _, n := range res.RowsAffected {
		if n > 0 {
			updated = true
		}
	}
	if !updated {
		if _, err := h.gw.Exec(c.Request.Context(), h.gw.WriteServer(), h.gw.WriteDatabase(),
			"INSERT INTO project_canvas (project_id, canvas_data) VALUES (@project_id, @canvas_data)", params); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Canvas storage unavailable"})
			return
		}
	}

	// Best-effort local mirror.
	if err := h.projects.UpdateCanvas(c.Request.Context(), projectID, datatypes.JSON(blob)); err != nil {
		log.Printf("⚠️  Failed to mirror canvas for project %s: %v", projectID, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Canvas saved"})
}
