// Package notify 负责把已持久化的通知投递到外部通道。
// 投递失败只记录日志，不影响工作流事务。
package notify

import (
	"context"
	"errors"

	"bounty-backend/internal/models"

	"github.com/rs/zerolog"
)

// Sink 通知投递通道
type Sink interface {
	Name() string
	Send(ctx context.Context, n *models.Notification) error
}

// LogSink 把通知写入日志
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("sink", "log").Logger()}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(ctx context.Context, n *models.Notification) error {
	s.logger.Info().
		Int64("notification_id", n.ID).
		Int64("user_id", n.UserID).
		Str("content", n.Content).
		Msg("notification delivered")
	return nil
}

// Multi 依次投递到多个通道，合并所有错误
type Multi []Sink

func (m Multi) Name() string { return "multi" }

func (m Multi) Send(ctx context.Context, n *models.Notification) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
