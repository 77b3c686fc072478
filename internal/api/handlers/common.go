package handlers

import (
	"fmt"
	"strconv"

	"bounty-backend/internal/api/middleware"
	"bounty-backend/internal/api/response"
	"bounty-backend/internal/apperr"
	"bounty-backend/internal/models"

	"github.com/gin-gonic/gin"
)

// idParam 解析路径中的正整数 ID
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, apperr.Validation(apperr.CodeInvalidParameter, "invalid %s", name))
		return 0, false
	}
	return id, true
}

// actor 读取认证中间件写入的身份
func actor(c *gin.Context) (models.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperr.Unauthenticated(apperr.CodeInvalidToken, "authentication required"))
		return models.Actor{}, false
	}
	return a, true
}

// bind 解析 JSON 请求体
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, err)
		return false
	}
	return true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(c, fmt.Errorf("%s must be an integer", name))
		return 0, false
	}
	return v, true
}
