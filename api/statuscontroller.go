package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterStatusRoutes registers run status and index endpoints.
func RegisterStatusRoutes(r gin.IRoutes, h *newsHandler) {
	r.GET("/api/status", h.status)
	r.GET("/api/index/count", h.indexCount)
}

func (h *newsHandler) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Tracker().Snapshot())
}

func (h *newsHandler) indexCount(c *gin.Context) {
	n, err := h.svc.IndexCount(c.Request.Context())
	if err != nil {
		h.logger.Error("index count failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
