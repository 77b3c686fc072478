package main

import (
	"fmt"
	"os"

	"bounty-backend/internal/api"
	"bounty-backend/internal/metrics"
	"bounty-backend/internal/notify"
	"bounty-backend/internal/service"
	"bounty-backend/internal/store/factory"
	"bounty-backend/internal/store/types"
	"bounty-backend/internal/workflow"
	"bounty-backend/pkg/config"
	"bounty-backend/pkg/logger"
	"bounty-backend/pkg/server"

	"github.com/gin-gonic/gin"
)

// ConfigPath 配置文件路径的类型包装器
type ConfigPath string

func provideConfig(path ConfigPath) (*config.ServerConfig, error) {
	workspaceRoot, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return config.LoadServerConfig(string(path), workspaceRoot)
}

func provideLogger(cfg *config.ServerConfig) *logger.Logger {
	return logger.ProvideLogger(cfg.Log.Debug, cfg.Log.File)
}

func provideStoreConfig(cfg *config.ServerConfig) *types.Config {
	return &types.Config{
		Type:     cfg.Storage.Type,
		SQLite:   types.SQLiteConfig(cfg.Storage.SQLite),
		Postgres: types.PostgresConfig(cfg.Storage.Postgres),
		MySQL:    types.MySQLConfig(cfg.Storage.MySQL),
		Pool:     types.PoolConfig(cfg.Storage.Pool),
	}
}

func provideStore(cfg *types.Config, l *logger.Logger) (types.Store, func(), error) {
	log := l.GetLogger("store")
	store, err := factory.NewStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating store: %w", err)
	}
	log.Info().Str("type", cfg.Type).Msg("Store opened")

	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing store")
		}
	}
	return store, cleanup, nil
}

// provideSink 日志通道始终启用，NATS 按配置追加
func provideSink(cfg *config.ServerConfig, l *logger.Logger) (notify.Sink, func(), error) {
	sinks := notify.Multi{notify.NewLogSink(l.GetLogger("notify"))}
	cleanup := func() {}

	if cfg.Notify.Nats.Enabled {
		nc, err := notify.DialNats(cfg.Notify.Nats.URL)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, notify.NewNatsSink(nc, cfg.Notify.Nats.SubjectPrefix))
		cleanup = func() {
			if err := nc.Drain(); err != nil {
				log := l.GetLogger("notify")
				log.Warn().Err(err).Msg("Error draining nats connection")
			}
		}
	}
	return sinks, cleanup, nil
}

func providePolicy(cfg *config.ServerConfig) (workflow.ReviewerPolicy, error) {
	return workflow.NewReviewerPolicy(cfg.Workflow.ReviewerPolicy, cfg.Workflow.AdminReviewerID)
}

func provideEngine(
	store types.Store,
	policy workflow.ReviewerPolicy,
	sink notify.Sink,
	m *metrics.Metrics,
	cfg *config.ServerConfig,
	l *logger.Logger,
) *workflow.Engine {
	return workflow.NewEngine(store, policy, sink, m, l.GetLogger("workflow"), workflow.Config{
		DeliveryTimeout: cfg.Notify.DeliveryTimeout,
	})
}

func provideTokenIssuer(cfg *config.ServerConfig) *service.TokenIssuer {
	return service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

func provideUserService(store types.Store, tokens *service.TokenIssuer, l *logger.Logger) *service.UserService {
	return service.NewUserService(store, tokens, l.GetLogger("user-service"))
}

func provideStatusService(store types.Store, l *logger.Logger) *service.StatusService {
	return service.NewStatusService(store, l.GetLogger("status-service"))
}

func provideRouterOptions(cfg *config.ServerConfig) api.Options {
	opts := api.Options{RequestTimeout: cfg.Server.RequestTimeout}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}
	return opts
}

func provideServer(cfg *config.ServerConfig, router *gin.Engine, l *logger.Logger) *server.Server {
	return server.New(cfg, router, l.GetLogger("server"))
}
