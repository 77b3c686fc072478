package handlers

import (
	"bounty-backend/internal/api/response"
	"bounty-backend/internal/workflow"
	"bounty-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AssignmentHandler struct {
	engine *workflow.Engine
	log    zerolog.Logger
}

func NewAssignmentHandler(engine *workflow.Engine, logger *logger.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		engine: engine,
		log:    logger.GetLogger("assignment-handler"),
	}
}

// Accept 接取任务
func (h *AssignmentHandler) Accept(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		TaskID        int64  `json:"task_id" binding:"required"`
		SubmitContent string `json:"submit_content"`
	}
	if !bind(c, &req) {
		return
	}

	snap, err := h.engine.Accept(c.Request.Context(), a, req.TaskID, req.SubmitContent)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, snap)
}

// Submit 提交作业
func (h *AssignmentHandler) Submit(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		SubmitContent string `json:"submit_content" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}

	snap, err := h.engine.Submit(c.Request.Context(), a, id, req.SubmitContent)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, snap)
}

// Appeal 发起申诉
func (h *AssignmentHandler) Appeal(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}

	snap, err := h.engine.Appeal(c.Request.Context(), a, id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, snap)
}

// Redo 重新开始被驳回的作业
func (h *AssignmentHandler) Redo(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	snap, err := h.engine.Redo(c.Request.Context(), a, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, snap)
}

func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	asg, err := h.engine.GetAssignment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, asg)
}

func (h *AssignmentHandler) ListByUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	userID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	list, err := h.engine.ListAssignmentsByUser(c.Request.Context(), a, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}
