package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStats handles GET /api/stats
func (h *Handlers) GetStats(c *gin.Context) {
	stats, err := h.orders.GetStats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapStatsToResponse(stats, h.currency))
}
