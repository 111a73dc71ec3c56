package handler

import (
	"context"
	"net/http"

	"planora/internal/access"
	"planora/internal/middleware"
	"planora/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccessChecker is satisfied by *access.Evaluator.
type AccessChecker interface {
	Check(ctx context.Context, projectID, userID uuid.UUID, minRole string) (access.Decision, error)
}

// ViewCache is satisfied by *cache.ProjectViewCache; a nil cache disables
// caching.
type ViewCache interface {
	GetProject(ctx context.Context, projectID uuid.UUID) ([]byte, error)
	SetProject(ctx context.Context, projectID uuid.UUID, payload []byte) error
	InvalidateProject(ctx context.Context, projectID uuid.UUID) error
}

func currentSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, false
	}
	return sess, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format"})
		return uuid.Nil, false
	}
	return id, true
}

// requireAccess runs the access check and writes the denial response.
// "not found" maps to 404 so outsiders cannot probe project existence;
// everything else is a 403 carrying the reason.
func requireAccess(c *gin.Context, checker AccessChecker, projectID, userID uuid.UUID, minRole string) bool {
	decision, err := checker.Check(c.Request.Context(), projectID, userID, minRole)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return false
	}
	if decision.HasAccess {
		return true
	}
	if decision.Reason == access.ReasonNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return false
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "reason": decision.Reason})
	return false
}
