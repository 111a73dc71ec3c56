package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthGateway interface {
	HealthCheck(ctx context.Context) bool
}

type HealthHandler struct {
	db *gorm.DB
	gw HealthGateway
}

func NewHealthHandler(db *gorm.DB, gw HealthGateway) *HealthHandler {
	return &HealthHandler{db: db, gw: gw}
}

// Check pings the primary store and the gateway. The gateway is reported
// but does not fail the endpoint: the app degrades without it.
func (h *HealthHandler) Check(c *gin.Context) {
	dbOK := false
	if sqlDB, err := h.db.DB(); err == nil {
		dbOK = sqlDB.PingContext(c.Request.Context()) == nil
	}

	gatewayOK := h.gw.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if !dbOK {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"database": dbOK,
		"gateway":  gatewayOK,
	})
}
