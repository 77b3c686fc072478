package handlers

import (
	"strconv"

	"bounty-backend/internal/api/response"
	"bounty-backend/internal/models"
	"bounty-backend/internal/workflow"
	"bounty-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type TaskHandler struct {
	engine *workflow.Engine
	log    zerolog.Logger
}

func NewTaskHandler(engine *workflow.Engine, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		engine: engine,
		log:    logger.GetLogger("task-handler"),
	}
}

// Publish 发布任务
func (h *TaskHandler) Publish(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		Title        string          `json:"title" binding:"required"`
		Description  string          `json:"description"`
		RewardAmount decimal.Decimal `json:"reward_amount"`
	}
	if !bind(c, &req) {
		return
	}

	task, err := h.engine.Publish(c.Request.Context(), a, workflow.PublishInput{
		Title:        req.Title,
		Description:  req.Description,
		RewardAmount: req.RewardAmount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// ListTasks 任务列表
func (h *TaskHandler) ListTasks(c *gin.Context) {
	offset, ok := queryInt(c, "offset")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	var publisherID int64
	if raw := c.Query("publisher_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, err)
			return
		}
		publisherID = id
	}

	tasks, err := h.engine.ListTasks(c.Request.Context(), workflow.TaskQuery{
		Status:      models.TaskStatus(c.Query("status")),
		PublisherID: publisherID,
		Offset:      offset,
		Limit:       limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.log.Debug().Int("count", len(tasks)).Msg("Tasks listed")
	response.OK(c, tasks)
}

// GetTask 任务详情
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	task, err := h.engine.GetTask(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, task)
}

// Close 关闭任务
func (h *TaskHandler) Close(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	task, err := h.engine.Close(c.Request.Context(), a, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, task)
}
