package handlers

import (
	"bounty-backend/internal/api/response"
	"bounty-backend/internal/workflow"
	"bounty-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type NotificationHandler struct {
	engine *workflow.Engine
	log    zerolog.Logger
}

func NewNotificationHandler(engine *workflow.Engine, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		engine: engine,
		log:    logger.GetLogger("notification-handler"),
	}
}

// List 当前用户的通知，unread=true 只返回未读
func (h *NotificationHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	list, err := h.engine.ListNotifications(c.Request.Context(), a, c.Query("unread") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.engine.MarkNotificationRead(c.Request.Context(), a, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": id, "is_read": true})
}
