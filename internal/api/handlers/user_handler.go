package handlers

import (
	"bounty-backend/internal/api/response"
	"bounty-backend/internal/models"
	"bounty-backend/internal/service"
	"bounty-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	users *service.UserService
	log   zerolog.Logger
}

func NewUserHandler(users *service.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		users: users,
		log:   logger.GetLogger("user-handler"),
	}
}

// Register 处理用户注册
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Username string          `json:"username" binding:"required"`
		Password string          `json:"password" binding:"required"`
		Email    string          `json:"email"`
		Role     models.UserRole `json:"role"`
	}
	if !bind(c, &req) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Login 处理用户登录
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}

	res, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.log.Debug().Str("username", req.Username).Msg("Login failed")
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Me 当前用户信息
func (h *UserHandler) Me(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), a.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}
