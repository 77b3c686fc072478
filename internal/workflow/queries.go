package workflow

import (
	"context"
	"errors"

	"bounty-backend/internal/apperr"
	"bounty-backend/internal/models"
	"bounty-backend/internal/store/types"
)

const (
	maxListOffset    = 10000
	maxListLimit     = 1000
	defaultListLimit = 20
)

// TaskQuery 任务列表查询参数
type TaskQuery struct {
	Status      models.TaskStatus
	PublisherID int64
	Offset      int
	Limit       int
}

func (q TaskQuery) filter() (types.TaskFilter, error) {
	if q.Status != "" && !q.Status.IsValid() {
		return types.TaskFilter{}, apperr.Validation(apperr.CodeInvalidParameter, "unknown task status %q", q.Status)
	}
	if q.Offset < 0 || q.Offset > maxListOffset {
		return types.TaskFilter{}, apperr.Validation(apperr.CodeInvalidParameter, "offset must be between 0 and %d", maxListOffset)
	}
	if q.Limit < 0 || q.Limit > maxListLimit {
		return types.TaskFilter{}, apperr.Validation(apperr.CodeInvalidParameter, "limit must be between 1 and %d", maxListLimit)
	}
	limit := q.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	return types.TaskFilter{Status: q.Status, PublisherID: q.PublisherID, Offset: q.Offset, Limit: limit}, nil
}

// GetTask 查询任务
func (e *Engine) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	task, err := e.store.Tasks().Get(ctx, id)
	if err != nil {
		return nil, e.readErr("get_task", taskNotFound(err, id))
	}
	return task, nil
}

// ListTasks 分页查询任务
func (e *Engine) ListTasks(ctx context.Context, q TaskQuery) ([]*models.Task, error) {
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}
	list, err := e.store.Tasks().List(ctx, filter)
	if err != nil {
		return nil, e.readErr("list_tasks", err)
	}
	return list, nil
}

func (e *Engine) GetAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	asg, err := e.store.Assignments().Get(ctx, id)
	if err != nil {
		return nil, e.readErr("get_assignment", assignmentNotFound(err, id))
	}
	return asg, nil
}

// ListAssignmentsByUser 只能查询自己的作业，管理员除外
func (e *Engine) ListAssignmentsByUser(ctx context.Context, actor models.Actor, userID int64) ([]*models.Assignment, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, apperr.PermissionDenied(apperr.CodeAssignmentPermissionDenied, "cannot list assignments of user %d", userID)
	}
	list, err := e.store.Assignments().ListByUser(ctx, userID)
	if err != nil {
		return nil, e.readErr("list_assignments", err)
	}
	return list, nil
}

func (e *Engine) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	review, err := e.store.Reviews().Get(ctx, id)
	if err != nil {
		return nil, e.readErr("get_review", reviewNotFound(err, id))
	}
	return review, nil
}

func (e *Engine) ListReviewsByAssignment(ctx context.Context, assignmentID int64) ([]*models.Review, error) {
	if _, err := e.store.Assignments().Get(ctx, assignmentID); err != nil {
		return nil, e.readErr("list_reviews", assignmentNotFound(err, assignmentID))
	}
	list, err := e.store.Reviews().ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, e.readErr("list_reviews", err)
	}
	return list, nil
}

func (e *Engine) GetReward(ctx context.Context, id int64) (*models.Reward, error) {
	reward, err := e.store.Rewards().Get(ctx, id)
	if err != nil {
		return nil, e.readErr("get_reward", rewardNotFound(err, id))
	}
	return reward, nil
}

// ListRewardsByUser 只能查询自己的奖励，管理员除外
func (e *Engine) ListRewardsByUser(ctx context.Context, actor models.Actor, userID int64) ([]*models.Reward, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, apperr.PermissionDenied(apperr.CodeRewardPermissionDenied, "cannot list rewards of user %d", userID)
	}
	list, err := e.store.Rewards().ListByUser(ctx, userID)
	if err != nil {
		return nil, e.readErr("list_rewards", err)
	}
	return list, nil
}

// ListNotifications 查询当前用户的通知
func (e *Engine) ListNotifications(ctx context.Context, actor models.Actor, unreadOnly bool) ([]*models.Notification, error) {
	list, err := e.store.Notifications().ListByUser(ctx, actor.UserID, unreadOnly)
	if err != nil {
		return nil, e.readErr("list_notifications", err)
	}
	return list, nil
}

// MarkNotificationRead 标记通知已读，只有接收者或管理员可以操作
func (e *Engine) MarkNotificationRead(ctx context.Context, actor models.Actor, id int64) error {
	n, err := e.store.Notifications().Get(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return apperr.NotFound(apperr.CodeNotificationNotFound, "notification %d not found", id)
		}
		return e.readErr("mark_read", err)
	}
	if !actor.IsAdmin() && n.UserID != actor.UserID {
		return apperr.PermissionDenied(apperr.CodeNotificationPermissionDenied, "no permission to modify notification %d", id)
	}
	if n.IsRead {
		return nil
	}
	if err := e.store.Notifications().MarkRead(ctx, id); err != nil {
		return e.readErr("mark_read", err)
	}
	return nil
}

// readErr 读路径的错误转换，不计入工作流指标
func (e *Engine) readErr(op string, err error) error {
	return e.translate(op, err)
}
