package service

import (
	"context"
	"time"

	"bounty-backend/internal/apperr"
	"bounty-backend/internal/models"
	"bounty-backend/internal/store/types"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostProbe 采集主机状态
type HostProbe func(ctx context.Context) (models.HostStatus, error)

type StatusService struct {
	store  types.Store
	probe  HostProbe
	logger zerolog.Logger
}

func NewStatusService(store types.Store, logger zerolog.Logger) *StatusService {
	return &StatusService{
		store:  store,
		probe:  collectHostStatus,
		logger: logger.With().Str("service", "status").Logger(),
	}
}

// GetSystemStatus 管理员查看任务、审核和主机概况
func (s *StatusService) GetSystemStatus(ctx context.Context, actor models.Actor) (*models.SystemStatus, error) {
	if !actor.IsAdmin() {
		return nil, apperr.PermissionDenied(apperr.CodePermissionDenied, "admin only")
	}

	tasks, err := s.store.Tasks().CountByStatus(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to count tasks")
		return nil, apperr.From(err)
	}
	pending, err := s.store.Reviews().CountPending(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to count pending reviews")
		return nil, apperr.From(err)
	}

	status := &models.SystemStatus{
		Tasks:          tasks,
		PendingReviews: pending,
		GeneratedAt:    time.Now().UTC(),
	}

	// 主机信息采集失败不影响业务统计
	hs, err := s.probe(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to collect host status")
	}
	status.Host = hs

	s.logger.Debug().
		Int64("pending_reviews", pending).
		Float64("cpu_usage", hs.CPUUsage).
		Msg("System status retrieved")
	return status, nil
}

func collectHostStatus(ctx context.Context) (models.HostStatus, error) {
	var hs models.HostStatus

	// 获取 CPU 使用率，间隔为 0 时与上次调用比较
	cpuPercent, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return hs, err
	}
	if len(cpuPercent) > 0 {
		hs.CPUUsage = cpuPercent[0]
	}

	memInfo, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return hs, err
	}
	hs.MemoryUsage = memInfo.UsedPercent

	hostInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		return hs, err
	}
	hs.Hostname = hostInfo.Hostname
	hs.Uptime = hostInfo.Uptime

	return hs, nil
}
