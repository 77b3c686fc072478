package handlers

import (
	"bounty-backend/internal/api/response"
	"bounty-backend/internal/models"
	"bounty-backend/internal/workflow"
	"bounty-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type RewardHandler struct {
	engine *workflow.Engine
	log    zerolog.Logger
}

func NewRewardHandler(engine *workflow.Engine, logger *logger.Logger) *RewardHandler {
	return &RewardHandler{
		engine: engine,
		log:    logger.GetLogger("reward-handler"),
	}
}

func (h *RewardHandler) GetReward(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	reward, err := h.engine.GetReward(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, reward)
}

func (h *RewardHandler) ListByUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	userID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	list, err := h.engine.ListRewardsByUser(c.Request.Context(), a, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Settle 管理员确认奖励发放结果
func (h *RewardHandler) Settle(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status models.RewardStatus `json:"status" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}

	snap, err := h.engine.SettleReward(c.Request.Context(), a, id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, snap)
}
