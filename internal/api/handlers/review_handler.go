package handlers

import (
	"bounty-backend/internal/api/response"
	"bounty-backend/internal/models"
	"bounty-backend/internal/workflow"
	"bounty-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ReviewHandler struct {
	engine *workflow.Engine
	log    zerolog.Logger
}

func NewReviewHandler(engine *workflow.Engine, logger *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		engine: engine,
		log:    logger.GetLogger("review-handler"),
	}
}

type decisionRequest struct {
	ReviewResult  models.ReviewResult `json:"review_result" binding:"required"`
	ReviewComment string              `json:"review_comment"`
}

func (r decisionRequest) decision() workflow.Decision {
	return workflow.Decision{Result: r.ReviewResult, Comment: r.ReviewComment}
}

// Decide 按审核记录 ID 裁决
func (h *ReviewHandler) Decide(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req decisionRequest
	if !bind(c, &req) {
		return
	}

	snap, err := h.engine.Decide(c.Request.Context(), a, id, req.decision())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, snap)
}

// DecideAssignment 按 (作业, 审核类型) 裁决当前待审核记录
func (h *ReviewHandler) DecideAssignment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		AssignmentID int64             `json:"assignment_id" binding:"required"`
		ReviewType   models.ReviewType `json:"review_type" binding:"required"`
		decisionRequest
	}
	if !bind(c, &req) {
		return
	}

	snap, err := h.engine.DecideAssignment(c.Request.Context(), a, req.AssignmentID, req.ReviewType, req.decision())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, snap)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	review, err := h.engine.GetReview(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, review)
}

func (h *ReviewHandler) ListByAssignment(c *gin.Context) {
	id, ok := idParam(c, "assignment_id")
	if !ok {
		return
	}
	list, err := h.engine.ListReviewsByAssignment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}
