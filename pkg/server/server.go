package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"bounty-backend/pkg/config"

	"github.com/rs/zerolog"
	"github.com/soheilhy/cmux"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// ServiceName gRPC 健康检查使用的服务名
const ServiceName = "bounty.v1.Workflow"

// Server 在同一端口上提供 HTTP API 和 gRPC 健康检查
type Server struct {
	config *config.ServerConfig
	logger zerolog.Logger

	listener   net.Listener
	mux        cmux.CMux
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
	wg         sync.WaitGroup
}

// New 创建服务器实例
func New(cfg *config.ServerConfig, handler http.Handler, logger zerolog.Logger) *Server {
	grpcServer := grpc.NewServer(
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     15 * time.Minute,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  30 * time.Second,
			Timeout:               5 * time.Second,
		}),
	)

	// 注册服务
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	reflection.Register(grpcServer)

	return &Server{
		config:     cfg,
		logger:     logger.With().Str("component", "server").Logger(),
		grpcServer: grpcServer,
		health:     hs,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start 监听端口并启动服务
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("creating listener: %w", err)
	}

	if s.config.Server.TLS.Enabled {
		cert, err := tls.LoadX509KeyPair(s.config.Server.TLS.Cert, s.config.Server.TLS.Key)
		if err != nil {
			listener.Close()
			return fmt.Errorf("loading TLS certificate: %w", err)
		}
		listener = tls.NewListener(listener, &tls.Config{
			Certificates: []tls.Certificate{cert},
			NextProtos:   []string{"h2", "http/1.1"},
			MinVersion:   tls.VersionTLS12,
		})
	}
	s.listener = listener
	s.mux = cmux.New(listener)

	// 设置 gRPC 匹配器
	grpcL := s.mux.MatchWithWriters(
		cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"),
	)

	// 设置 HTTP 匹配器
	httpL := s.mux.Match(cmux.HTTP1Fast())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.grpcServer.Serve(grpcL); err != nil && !closed(err) {
			s.logger.Error().Err(err).Msg("gRPC server error")
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(httpL); err != nil && !errors.Is(err, http.ErrServerClosed) && !closed(err) {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.mux.Serve(); err != nil && !closed(err) {
			s.logger.Debug().Err(err).Msg("cmux stopped")
		}
	}()

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	s.logger.Info().
		Str("address", listener.Addr().String()).
		Bool("tls", s.config.Server.TLS.Enabled).
		Msg("Server started")
	return nil
}

// Addr 实际监听地址，端口配置为 0 时用于获取分配的端口
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop 优雅停止，超时后强制关闭
func (s *Server) Stop(timeout time.Duration) error {
	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var firstErr error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		firstErr = err
	}

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}

	if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug().Err(err).Msg("Error closing listener")
	}

	s.wg.Wait()
	s.logger.Info().Msg("Server stopped")
	return firstErr
}

// closed 判断是否为监听器关闭导致的退出
func closed(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, cmux.ErrListenerClosed) ||
		errors.Is(err, grpc.ErrServerStopped)
}
