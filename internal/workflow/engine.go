// Package workflow 实现悬赏任务的接取、提交、审核、申诉与奖励流程。
// 每个操作在单个事务内完成：先按 Task → Assignment → Review → Reward 的顺序加锁，
// 校验前置条件后按 Assignment → Task → Reward → Notification 的顺序写入。
// 通知在事务提交后投递，投递失败只记录日志。
package workflow

import (
	"context"
	"errors"
	"time"

	"bounty-backend/internal/apperr"
	"bounty-backend/internal/metrics"
	"bounty-backend/internal/models"
	"bounty-backend/internal/notify"
	"bounty-backend/internal/store/types"

	"github.com/rs/zerolog"
)

// Config 工作流配置
type Config struct {
	DeliveryTimeout time.Duration
}

// Snapshot 操作完成后相关实体的状态
type Snapshot struct {
	Task       *models.Task       `json:"task,omitempty"`
	Assignment *models.Assignment `json:"assignment,omitempty"`
	Review     *models.Review     `json:"review,omitempty"`
	Reward     *models.Reward     `json:"reward,omitempty"`
}

// Engine 工作流引擎
type Engine struct {
	store   types.Store
	policy  ReviewerPolicy
	sink    notify.Sink
	metrics *metrics.Metrics
	logger  zerolog.Logger
	config  Config
	now     func() time.Time
}

// NewEngine 创建工作流引擎
func NewEngine(store types.Store, policy ReviewerPolicy, sink notify.Sink, m *metrics.Metrics, logger zerolog.Logger, cfg Config) *Engine {
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 5 * time.Second
	}
	if policy == nil {
		policy = PublisherPolicy{}
	}
	return &Engine{
		store:   store,
		policy:  policy,
		sink:    sink,
		metrics: m,
		logger:  logger.With().Str("service", "workflow").Logger(),
		config:  cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// outbox 事务内创建、提交后投递的通知
type outbox struct {
	notices []*models.Notification
}

// run 在事务中执行 fn，记录指标，提交后投递通知
func (e *Engine) run(ctx context.Context, op string, fn func(tx types.Store, box *outbox) error) error {
	start := time.Now()
	var box outbox
	err := e.store.WithTx(ctx, func(tx types.Store) error {
		box = outbox{}
		return fn(tx, &box)
	})
	if err != nil {
		err = e.translate(op, err)
		e.metrics.ObserveOperation(op, apperr.KindOf(err).String(), time.Since(start))
		return err
	}
	e.metrics.ObserveOperation(op, "ok", time.Since(start))

	e.dispatch(ctx, box.notices)
	return nil
}

// addNotice 在事务内落库通知并加入待投递列表
func (e *Engine) addNotice(ctx context.Context, tx types.Store, box *outbox, userID int64, content string) error {
	if content == "" {
		return nil
	}
	n := &models.Notification{UserID: userID, Content: content}
	if err := tx.Notifications().Create(ctx, n); err != nil {
		return err
	}
	box.notices = append(box.notices, n)
	return nil
}

// dispatch 投递通知，失败不影响已提交的事务
func (e *Engine) dispatch(ctx context.Context, notices []*models.Notification) {
	if e.sink == nil || len(notices) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.config.DeliveryTimeout)
	defer cancel()

	for _, n := range notices {
		err := e.sink.Send(ctx, n)
		e.metrics.ObserveNotification(e.sink.Name(), err)
		if err != nil {
			e.logger.Warn().Err(err).
				Int64("notification_id", n.ID).
				Int64("user_id", n.UserID).
				Msg("notification delivery failed")
		}
	}
}

// translate 把存储层错误转换为业务错误，原始错误只写日志
func (e *Engine) translate(op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, types.ErrConflict):
		return apperr.Conflict(apperr.CodeOperationFailed, "concurrent modification, please retry")
	case errors.Is(err, types.ErrNotFound):
		return apperr.NotFound(apperr.CodeInvalidParameter, "record not found")
	}
	e.logger.Error().Err(err).Str("operation", op).Msg("workflow operation failed")
	return apperr.From(err)
}

func taskNotFound(err error, id int64) error {
	if errors.Is(err, types.ErrNotFound) {
		return apperr.NotFound(apperr.CodeTaskNotFound, "task %d not found", id)
	}
	return err
}

func assignmentNotFound(err error, id int64) error {
	if errors.Is(err, types.ErrNotFound) {
		return apperr.NotFound(apperr.CodeAssignmentNotFound, "assignment %d not found", id)
	}
	return err
}

func reviewNotFound(err error, id int64) error {
	if errors.Is(err, types.ErrNotFound) {
		return apperr.NotFound(apperr.CodeReviewNotFound, "review %d not found", id)
	}
	return err
}

func rewardNotFound(err error, id int64) error {
	if errors.Is(err, types.ErrNotFound) {
		return apperr.NotFound(apperr.CodeRewardNotFound, "reward %d not found", id)
	}
	return err
}

// lockAssignment 按 Task → Assignment 的顺序加锁读取作业及其任务
func lockAssignment(ctx context.Context, tx types.Store, assignmentID int64) (*models.Task, *models.Assignment, error) {
	probe, err := tx.Assignments().Get(ctx, assignmentID)
	if err != nil {
		return nil, nil, assignmentNotFound(err, assignmentID)
	}
	task, err := tx.Tasks().GetForUpdate(ctx, probe.TaskID)
	if err != nil {
		return nil, nil, taskNotFound(err, probe.TaskID)
	}
	asg, err := tx.Assignments().GetForUpdate(ctx, assignmentID)
	if err != nil {
		return nil, nil, assignmentNotFound(err, assignmentID)
	}
	return task, asg, nil
}

// findReward 读取作业的奖励，不存在时返回 nil
func findReward(ctx context.Context, tx types.Store, assignmentID int64) (*models.Reward, error) {
	reward, err := tx.Rewards().FindByAssignment(ctx, assignmentID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil
	}
	return reward, err
}
