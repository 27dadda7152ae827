package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NarcisseDedome/gestionpersonnel/internal/service"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/response"
)

// StatsHandler dashboard.
type StatsHandler struct {
	statsSvc service.StatsService
	now      func() time.Time
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc, now: time.Now}
}

// Get GET /api/v1/stats
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.statsSvc.Stats(c.Request.Context(), h.now())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, stats)
}
