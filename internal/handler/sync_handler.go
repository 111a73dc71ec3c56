package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"planora/internal/sync"

	"github.com/gin-gonic/gin"
)

// SyncRunner is satisfied by *sync.Orchestrator.
type SyncRunner interface {
	Sync(ctx context.Context, opts sync.Options) (*sync.Result, error)
	Status() sync.Status
}

type SyncHandler struct {
	runner SyncRunner
}

func NewSyncHandler(runner SyncRunner) *SyncHandler {
	return &SyncHandler{runner: runner}
}

func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.runner.Status())
}

// Trigger runs a sync and returns the per-table result. The run is
// best-effort: a failed table is reported, not fatal, so partial failure
// still answers 200 with success=false in the body.
func (h *SyncHandler) Trigger(c *gin.Context) {
	var opts sync.Options
	if err := c.ShouldBindJSON(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.runner.Sync(c.Request.Context(), opts)
	if err != nil {
		switch {
		case errors.Is(err, sync.ErrAlreadyRunning):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, sync.ErrInvalidDirection), errors.Is(err, sync.ErrNoTables),
			strings.Contains(err.Error(), "is not allowed"):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	sync.LogResult(result)
	c.JSON(http.StatusOK, result)
}
