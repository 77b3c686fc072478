//go:build wireinject
// +build wireinject

package main

import (
	"bounty-backend/internal/api"
	"bounty-backend/internal/api/handlers"
	"bounty-backend/internal/api/middleware"
	"bounty-backend/internal/metrics"
	"bounty-backend/internal/service"

	"github.com/google/wire"
)

func InitializeApp(configPath ConfigPath) (*App, func(), error) {
	wire.Build(
		// 基础设施
		provideConfig,
		provideLogger,
		metrics.New,

		// Store
		provideStoreConfig,
		provideStore,

		// 工作流
		provideSink,
		providePolicy,
		provideEngine,

		// Services
		provideTokenIssuer,
		provideUserService,
		provideStatusService,
		wire.Bind(new(middleware.Authenticator), new(*service.UserService)),

		// Handlers
		handlers.NewUserHandler,
		handlers.NewTaskHandler,
		handlers.NewAssignmentHandler,
		handlers.NewReviewHandler,
		handlers.NewRewardHandler,
		handlers.NewNotificationHandler,
		handlers.NewStatusHandler,
		wire.Struct(new(api.Handlers), "*"),

		// Router & Server
		provideRouterOptions,
		api.NewRouter,
		provideServer,
		NewApp,
	)
	return nil, nil, nil
}
