package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bounty-backend/internal/service"
	"bounty-backend/internal/store/types"
	"bounty-backend/pkg/config"
	"bounty-backend/pkg/logger"
	"bounty-backend/pkg/server"
)

type App struct {
	config     *config.ServerConfig
	configPath ConfigPath
	server     *server.Server
	store      types.Store
	users      *service.UserService
	logger     *logger.Logger
}

func NewApp(
	cfg *config.ServerConfig,
	configPath ConfigPath,
	srv *server.Server,
	store types.Store,
	users *service.UserService,
	logger *logger.Logger,
) *App {
	return &App{
		config:     cfg,
		configPath: configPath,
		server:     srv,
		store:      store,
		users:      users,
		logger:     logger,
	}
}

// Run 启动服务并阻塞到收到退出信号
func (a *App) Run() error {
	log := a.logger.GetLogger("app")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.Watch(ctx, string(a.configPath), a.reload); err != nil {
		log.Warn().Err(err).Msg("Config hot reload disabled")
	}

	if err := a.server.Start(); err != nil {
		return err
	}
	log.Info().
		Str("version", Version).
		Str("storage", a.config.Storage.Type).
		Str("reviewer_policy", a.config.Workflow.ReviewerPolicy).
		Msg("Bounty server running")

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	return a.server.Stop(a.config.Server.ShutdownTimeout)
}

// reload 配置变更时只热更新日志级别，其他字段需要重启
func (a *App) reload() {
	log := a.logger.GetLogger("app")

	root, err := os.Getwd()
	if err != nil {
		log.Warn().Err(err).Msg("Ignoring config change")
		return
	}
	cfg, err := config.LoadServerConfig(string(a.configPath), root)
	if err != nil {
		log.Warn().Err(err).Msg("Ignoring invalid config change")
		return
	}
	if cfg.Log.Debug != a.config.Log.Debug {
		logger.SetDebug(cfg.Log.Debug)
		a.config.Log.Debug = cfg.Log.Debug
		log.Info().Bool("debug", cfg.Log.Debug).Msg("Log level reloaded")
	}
}

// Migrate 建表已在打开存储时完成，这里只校验连接
func (a *App) Migrate(ctx context.Context) error {
	if err := a.store.Ping(ctx); err != nil {
		return err
	}
	log := a.logger.GetLogger("app")
	log.Info().Str("storage", a.config.Storage.Type).Msg("Schema migrated")
	return nil
}

func (a *App) CreateAdmin(ctx context.Context, username, password string) error {
	user, err := a.users.CreateAdmin(ctx, username, password)
	if err != nil {
		return err
	}
	log := a.logger.GetLogger("app")
	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("Admin created")
	return nil
}
