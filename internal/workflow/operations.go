package workflow

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"bounty-backend/internal/apperr"
	"bounty-backend/internal/models"
	"bounty-backend/internal/store/types"

	"github.com/shopspring/decimal"
)

const maxTitleLength = 128

// PublishInput 发布任务参数
type PublishInput struct {
	Title        string
	Description  string
	RewardAmount decimal.Decimal
}

// Publish 发布任务
func (e *Engine) Publish(ctx context.Context, actor models.Actor, in PublishInput) (*models.Task, error) {
	if !actor.CanPublish() {
		return nil, apperr.PermissionDenied(apperr.CodeTaskPermissionDenied, "only publishers can publish tasks")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		return nil, apperr.Validation(apperr.CodeInvalidTaskData, "title must be 1-%d characters", maxTitleLength)
	}
	if !in.RewardAmount.IsPositive() {
		return nil, apperr.Validation(apperr.CodeInvalidRewardAmount, "reward amount must be greater than zero")
	}

	task := &models.Task{
		Title:        title,
		Description:  in.Description,
		PublisherID:  actor.UserID,
		RewardAmount: in.RewardAmount.Round(2),
		Status:       models.TaskStatusOpen,
	}
	err := e.run(ctx, "publish", func(tx types.Store, box *outbox) error {
		return tx.Tasks().Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info().Int64("task_id", task.ID).Int64("publisher_id", actor.UserID).Msg("task published")
	return task, nil
}

// Close 关闭任务，已关闭的任务不能再被接取
func (e *Engine) Close(ctx context.Context, actor models.Actor, taskID int64) (*models.Task, error) {
	var task *models.Task
	err := e.run(ctx, "close", func(tx types.Store, box *outbox) error {
		var err error
		task, err = tx.Tasks().GetForUpdate(ctx, taskID)
		if err != nil {
			return taskNotFound(err, taskID)
		}
		if !actor.IsAdmin() && actor.UserID != task.PublisherID {
			return apperr.PermissionDenied(apperr.CodeTaskPermissionDenied, "only the publisher can close task %d", taskID)
		}
		if task.Status == models.TaskStatusClosed {
			return nil
		}
		task.Status = models.TaskStatusClosed
		return tx.Tasks().Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Accept 接取任务，创建作业与待审核的接取申请
func (e *Engine) Accept(ctx context.Context, actor models.Actor, taskID int64, submitContent string) (*Snapshot, error) {
	// 接取审核要求作业内容为空
	if strings.TrimSpace(submitContent) != "" {
		return nil, apperr.Validation(apperr.CodeInvalidParameter, "submit content can only be provided on submit")
	}

	out := &Snapshot{}
	err := e.run(ctx, "accept", func(tx types.Store, box *outbox) error {
		task, err := tx.Tasks().GetForUpdate(ctx, taskID)
		if err != nil {
			return taskNotFound(err, taskID)
		}

		existing, err := tx.Assignments().FindByTaskAndUser(ctx, taskID, actor.UserID)
		if err == nil {
			return apperr.Conflict(apperr.CodeTaskAlreadyAssigned, "task already accepted (assignment %d)", existing.ID)
		}
		if !errors.Is(err, types.ErrNotFound) {
			return err
		}

		if task.PublisherID == actor.UserID {
			return apperr.Conflict(apperr.CodeCannotAcceptOwnTask, "cannot accept your own task")
		}
		if task.Status != models.TaskStatusOpen {
			return apperr.InvalidState(apperr.CodeTaskNotAvailable, "task %d is not open (status: %s)", taskID, task.Status)
		}

		asg := &models.Assignment{
			TaskID: taskID,
			UserID: actor.UserID,
			Status: models.AssignmentTaskPending,
		}
		if err := tx.Assignments().Create(ctx, asg); err != nil {
			if errors.Is(err, types.ErrConflict) {
				return apperr.Conflict(apperr.CodeTaskAlreadyAssigned, "task already accepted")
			}
			return err
		}

		review, err := e.openReview(ctx, tx, asg, task, models.ReviewTypeAcceptance, "")
		if err != nil {
			return err
		}

		out.Task, out.Assignment, out.Review = task, asg, review
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("operation", "accept").
		Int64("task_id", taskID).
		Int64("assignment_id", out.Assignment.ID).
		Int64("review_id", out.Review.ID).
		Msg("assignment created")
	return out, nil
}

// Submit 提交作业内容，创建待审核的作业审核
func (e *Engine) Submit(ctx context.Context, actor models.Actor, assignmentID int64, content string) (*Snapshot, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation(apperr.CodeInvalidParameter, "submit content is required")
	}

	out := &Snapshot{}
	err := e.run(ctx, "submit", func(tx types.Store, box *outbox) error {
		task, asg, err := lockAssignment(ctx, tx, assignmentID)
		if err != nil {
			return err
		}
		if asg.UserID != actor.UserID {
			return apperr.PermissionDenied(apperr.CodeAssignmentPermissionDenied, "no permission to submit assignment %d", assignmentID)
		}
		if asg.Status != models.AssignmentTaskReceive {
			return apperr.InvalidState(apperr.CodeInvalidAssignmentStatus, "assignment %d cannot be submitted in status %s", assignmentID, asg.Status)
		}

		now := e.now()
		asg.SubmitContent = content
		asg.SubmitTime = &now
		asg.Status = models.AssignmentSubmissionPending
		if err := tx.Assignments().Update(ctx, asg); err != nil {
			return err
		}

		review, err := e.openReview(ctx, tx, asg, task, models.ReviewTypeSubmission, "")
		if err != nil {
			return err
		}

		out.Task, out.Assignment, out.Review = task, asg, review
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("operation", "submit").
		Int64("assignment_id", assignmentID).
		Int64("review_id", out.Review.ID).
		Str("status", string(out.Assignment.Status)).
		Msg("assignment submitted")
	return out, nil
}

// Appeal 对已完成或被驳回的作业发起申诉，记录申诉前的状态快照
func (e *Engine) Appeal(ctx context.Context, actor models.Actor, assignmentID int64, reason string) (*Snapshot, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation(apperr.CodeInvalidParameter, "appeal reason is required")
	}

	out := &Snapshot{}
	err := e.run(ctx, "appeal", func(tx types.Store, box *outbox) error {
		task, asg, err := lockAssignment(ctx, tx, assignmentID)
		if err != nil {
			return err
		}
		if asg.UserID != actor.UserID {
			return apperr.PermissionDenied(apperr.CodeAssignmentPermissionDenied, "no permission to appeal assignment %d", assignmentID)
		}
		if !asg.Status.Appealable() {
			return apperr.InvalidState(apperr.CodeAppealNotAllowed, "assignment %d cannot be appealed in status %s", assignmentID, asg.Status)
		}
		reward, err := findReward(ctx, tx, asg.ID)
		if err != nil {
			return err
		}

		prior := asg.Status
		asg.Status = models.AssignmentAppealing
		if err := tx.Assignments().Update(ctx, asg); err != nil {
			return err
		}

		review, err := e.openReview(ctx, tx, asg, task, models.ReviewTypeAppeal, reason, func(r *models.Review) {
			snapshotPrior(r, prior, task, reward)
		})
		if err != nil {
			return err
		}

		out.Task, out.Assignment, out.Review, out.Reward = task, asg, review, reward
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("operation", "appeal").
		Int64("assignment_id", assignmentID).
		Int64("review_id", out.Review.ID).
		Str("prior_status", string(out.Review.PriorAssignmentStatus)).
		Msg("appeal opened")
	return out, nil
}

// Redo 被驳回的作业重新开始
func (e *Engine) Redo(ctx context.Context, actor models.Actor, assignmentID int64) (*Snapshot, error) {
	out := &Snapshot{}
	err := e.run(ctx, "redo", func(tx types.Store, box *outbox) error {
		task, asg, err := lockAssignment(ctx, tx, assignmentID)
		if err != nil {
			return err
		}
		if asg.UserID != actor.UserID {
			return apperr.PermissionDenied(apperr.CodeAssignmentPermissionDenied, "no permission to redo assignment %d", assignmentID)
		}
		if asg.Status != models.AssignmentTaskReject {
			return apperr.InvalidState(apperr.CodeInvalidAssignmentStatus, "only rejected assignments can be redone, current status %s", asg.Status)
		}

		asg.Status = models.AssignmentTaskReceive
		asg.SubmitContent = ""
		asg.SubmitTime = nil
		if err := tx.Assignments().Update(ctx, asg); err != nil {
			return err
		}

		if next := nextTaskStatus(taskResume, task.Status, "", false); next != task.Status {
			task.Status = next
			if err := tx.Tasks().Update(ctx, task); err != nil {
				return err
			}
		}

		out.Task, out.Assignment = task, asg
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info().Str("operation", "redo").Int64("assignment_id", assignmentID).Msg("assignment reopened")
	return out, nil
}

// openReview 创建待审核记录，唯一键冲突说明已有同类型待审核
func (e *Engine) openReview(ctx context.Context, tx types.Store, asg *models.Assignment, task *models.Task,
	reviewType models.ReviewType, comment string, opts ...func(*models.Review)) (*models.Review, error) {
	review := &models.Review{
		AssignmentID:  asg.ID,
		ReviewerID:    e.policy.ReviewerFor(task),
		ReviewType:    reviewType,
		ReviewComment: comment,
	}
	review.MarkPending()
	for _, opt := range opts {
		opt(review)
	}

	if err := tx.Reviews().Create(ctx, review); err != nil {
		if errors.Is(err, types.ErrConflict) {
			return nil, apperr.Conflict(apperr.CodeReviewAlreadyExists, "a pending %s already exists for assignment %d", reviewType, asg.ID)
		}
		return nil, err
	}
	return review, nil
}

// snapshotPrior 记录申诉前的作业、任务、奖励状态
func snapshotPrior(r *models.Review, prior models.AssignmentStatus, task *models.Task, reward *models.Reward) {
	r.PriorAssignmentStatus = prior
	r.PriorTaskStatus = task.Status
	if reward != nil {
		r.PriorRewardStatus = reward.Status
		r.PriorRewardIssuedTime = reward.IssuedTime
	}
}
