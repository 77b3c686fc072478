package handlers

import (
	"bounty-backend/internal/api/response"
	"bounty-backend/internal/service"
	"bounty-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type StatusHandler struct {
	statusService *service.StatusService
	log           zerolog.Logger
}

func NewStatusHandler(
	statusService *service.StatusService,
	logger *logger.Logger,
) *StatusHandler {
	return &StatusHandler{
		statusService: statusService,
		log:           logger.GetLogger("status-handler"),
	}
}

func (h *StatusHandler) GetSystemStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	h.log.Debug().Msg("Retrieving system status")

	status, err := h.statusService.GetSystemStatus(c.Request.Context(), a)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.log.Info().
		Int64("pending_reviews", status.PendingReviews).
		Float64("memory_usage", status.Host.MemoryUsage).
		Msg("System status retrieved successfully")

	response.OK(c, status)
}
