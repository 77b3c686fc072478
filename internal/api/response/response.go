// Package response 统一的 JSON 响应格式 {"code", "message", "data"}
package response

import (
	"net/http"

	"bounty-backend/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Envelope 响应体
type Envelope struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
	Data    any         `json:"data"`
}

// OK 返回 200
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Code: apperr.CodeOK, Message: "success", Data: data})
}

// Created 返回 201
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Code: apperr.CodeOK, Message: "success", Data: data})
}

// Error 按错误分类返回对应状态码并终止后续处理
func Error(c *gin.Context, err error) {
	e := apperr.From(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(e), Envelope{Code: e.Code, Message: e.Message, Data: nil})
}

// BadRequest 请求参数错误
func BadRequest(c *gin.Context, err error) {
	Error(c, apperr.Validation(apperr.CodeInvalidParameter, "invalid request: %v", err))
}
