package api

import (
	"time"

	"bounty-backend/internal/api/handlers"
	"bounty-backend/internal/api/middleware"
	"bounty-backend/internal/api/response"
	"bounty-backend/internal/apperr"
	"bounty-backend/internal/metrics"
	"bounty-backend/internal/store/types"
	"bounty-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers 路由用到的全部处理器
type Handlers struct {
	User         *handlers.UserHandler
	Task         *handlers.TaskHandler
	Assignment   *handlers.AssignmentHandler
	Review       *handlers.ReviewHandler
	Reward       *handlers.RewardHandler
	Notification *handlers.NotificationHandler
	Status       *handlers.StatusHandler
}

// Options 路由配置
type Options struct {
	RequestTimeout time.Duration
	// MetricsPath 为空时不暴露指标
	MetricsPath string
}

func NewRouter(
	h *Handlers,
	auth middleware.Authenticator,
	store types.Store,
	m *metrics.Metrics,
	opts Options,
	logger *logger.Logger,
) *gin.Engine {
	log := logger.GetLogger("router")

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(logger.GetLogger("http")),
		middleware.Timeout(opts.RequestTimeout),
	)

	r.GET("/healthz", func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			response.Error(c, apperr.Internal(err, "store unavailable"))
			return
		}
		response.OK(c, gin.H{"status": "ok"})
	})
	if opts.MetricsPath != "" && m != nil {
		r.GET(opts.MetricsPath, gin.WrapH(m.Handler()))
	}

	// 公开接口
	public := r.Group("/api/user")
	{
		public.POST("/register", h.User.Register)
		public.POST("/login", h.User.Login)
	}

	api := r.Group("/api", middleware.Auth(auth, logger.GetLogger("auth")))

	api.GET("/user/me", h.User.Me)

	// 任务
	api.POST("/tasks/publish", h.Task.Publish)
	api.GET("/tasks", h.Task.ListTasks)
	api.GET("/tasks/:id", h.Task.GetTask)
	api.POST("/tasks/:id/close", h.Task.Close)

	// 作业
	api.POST("/assignment/accept", h.Assignment.Accept)
	api.GET("/assignment/:id", h.Assignment.GetAssignment)
	api.GET("/assignment/user/:user_id", h.Assignment.ListByUser)
	api.POST("/assignment/submit/:id", h.Assignment.Submit)
	api.POST("/assignment/:id/appeal", h.Assignment.Appeal)
	api.POST("/assignment/:id/redo", h.Assignment.Redo)

	// 审核
	api.POST("/review/submit", h.Review.DecideAssignment)
	api.POST("/review/:id", h.Review.Decide)
	api.GET("/review/:id", h.Review.GetReview)
	api.GET("/review/assignment/:assignment_id", h.Review.ListByAssignment)

	// 奖励
	api.GET("/reward/:id", h.Reward.GetReward)
	api.GET("/reward/user/:user_id", h.Reward.ListByUser)
	api.PUT("/reward/:id", h.Reward.Settle)

	// 通知
	api.GET("/notifications", h.Notification.List)
	api.PATCH("/notifications/:id/read", h.Notification.MarkRead)

	api.GET("/admin/status", h.Status.GetSystemStatus)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperr.NotFound(apperr.CodeInvalidParameter, "route %s not found", c.Request.URL.Path))
	})

	log.Debug().Int("routes", len(r.Routes())).Msg("Router initialized")
	return r
}
