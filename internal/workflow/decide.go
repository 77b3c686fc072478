package workflow

import (
	"context"
	"errors"
	"time"

	"bounty-backend/internal/apperr"
	"bounty-backend/internal/models"
	"bounty-backend/internal/store/types"
)

// Decision 审核结论
type Decision struct {
	Result  models.ReviewResult
	Comment string
}

func (d Decision) validate() error {
	if !d.Result.IsDecision() {
		return apperr.Validation(apperr.CodeInvalidReviewResult, "review result must be approved or rejected, got %q", d.Result)
	}
	return nil
}

// decideState 一次裁决涉及的已加锁实体
type decideState struct {
	task   *models.Task
	asg    *models.Assignment
	review *models.Review
	reward *models.Reward
}

func (s *decideState) snapshot(out *Snapshot) {
	out.Task, out.Assignment, out.Review, out.Reward = s.task, s.asg, s.review, s.reward
}

// Decide 对指定审核记录给出结论。
// 已裁决的记录再次提交相同结论时不做任何修改；申诉审核允许改判。
func (e *Engine) Decide(ctx context.Context, actor models.Actor, reviewID int64, d Decision) (*Snapshot, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	out := &Snapshot{}
	applied := false
	err := e.run(ctx, "decide", func(tx types.Store, box *outbox) error {
		applied = false
		probe, err := tx.Reviews().Get(ctx, reviewID)
		if err != nil {
			return reviewNotFound(err, reviewID)
		}
		task, asg, err := lockAssignment(ctx, tx, probe.AssignmentID)
		if err != nil {
			return err
		}
		review, err := tx.Reviews().GetForUpdate(ctx, reviewID)
		if err != nil {
			return reviewNotFound(err, reviewID)
		}
		if !e.policy.CanReview(actor, task) {
			return apperr.PermissionDenied(apperr.CodeReviewPermissionDenied, "no permission to review task %d", task.ID)
		}

		st := &decideState{task: task, asg: asg, review: review}
		defer st.snapshot(out)

		if review.IsPending() {
			applied = true
			return e.decidePending(ctx, tx, box, actor, st, d)
		}

		if review.ReviewResult == d.Result {
			st.reward, err = findReward(ctx, tx, asg.ID)
			return err
		}
		if review.ReviewType != models.ReviewTypeAppeal {
			return apperr.Conflict(apperr.CodeReviewAlreadyCompleted, "review %d is already %s", reviewID, review.ReviewResult)
		}
		applied = true
		return e.reverseAppeal(ctx, tx, box, actor, st, d)
	})
	if err != nil {
		return nil, err
	}

	if applied {
		e.metrics.ObserveTransition(out.Review.ReviewType.String(), d.Result.String())
		e.logger.Info().
			Str("operation", "decide").
			Int64("review_id", reviewID).
			Str("review_type", out.Review.ReviewType.String()).
			Str("result", d.Result.String()).
			Str("assignment_status", out.Assignment.Status.String()).
			Str("task_status", out.Task.Status.String()).
			Msg("review decided")
	} else {
		e.logger.Debug().Int64("review_id", reviewID).Str("result", d.Result.String()).Msg("review already decided, ignoring")
	}
	return out, nil
}

// DecideAssignment 按 (作业, 审核类型) 定位当前待审核记录并裁决。
// 找不到待审核记录时补建一条，这种情况只会出现在历史数据上。
func (e *Engine) DecideAssignment(ctx context.Context, actor models.Actor, assignmentID int64, reviewType models.ReviewType, d Decision) (*Snapshot, error) {
	if !reviewType.IsValid() {
		return nil, apperr.Validation(apperr.CodeInvalidParameter, "unknown review type %q", reviewType)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}

	out := &Snapshot{}
	err := e.run(ctx, "decide", func(tx types.Store, box *outbox) error {
		task, asg, err := lockAssignment(ctx, tx, assignmentID)
		if err != nil {
			return err
		}
		if !e.policy.CanReview(actor, task) {
			return apperr.PermissionDenied(apperr.CodeReviewPermissionDenied, "no permission to review task %d", task.ID)
		}

		review, err := tx.Reviews().FindPending(ctx, assignmentID, reviewType)
		if errors.Is(err, types.ErrNotFound) {
			review, err = e.backfillReview(ctx, tx, task, asg, reviewType)
		}
		if err != nil {
			return err
		}

		st := &decideState{task: task, asg: asg, review: review}
		defer st.snapshot(out)
		return e.decidePending(ctx, tx, box, actor, st, d)
	})
	if err != nil {
		return nil, err
	}

	e.metrics.ObserveTransition(reviewType.String(), d.Result.String())
	e.logger.Info().
		Str("operation", "decide").
		Int64("assignment_id", assignmentID).
		Int64("review_id", out.Review.ID).
		Str("review_type", reviewType.String()).
		Str("result", d.Result.String()).
		Msg("review decided")
	return out, nil
}

// backfillReview 为缺失待审核记录的作业补建一条
func (e *Engine) backfillReview(ctx context.Context, tx types.Store, task *models.Task, asg *models.Assignment, reviewType models.ReviewType) (*models.Review, error) {
	e.logger.Warn().
		Int64("assignment_id", asg.ID).
		Str("review_type", reviewType.String()).
		Str("assignment_status", asg.Status.String()).
		Msg("no pending review found, creating one")

	if reviewType != models.ReviewTypeAppeal {
		return e.openReview(ctx, tx, asg, task, reviewType, "")
	}

	reward, err := findReward(ctx, tx, asg.ID)
	if err != nil {
		return nil, err
	}
	// 没有快照时只能根据任务当前状态推断申诉前的结论
	prior := models.AssignmentTaskReject
	if task.Status == models.TaskStatusCompleted {
		prior = models.AssignmentTaskCompleted
	}
	return e.openReview(ctx, tx, asg, task, reviewType, "", func(r *models.Review) {
		snapshotPrior(r, prior, task, reward)
	})
}

// decidePending 首次裁决一条待审核记录
func (e *Engine) decidePending(ctx context.Context, tx types.Store, box *outbox, actor models.Actor, st *decideState, d Decision) error {
	review, asg := st.review, st.asg

	if want := requiredStatus[review.ReviewType]; asg.Status != want {
		return apperr.InvalidState(apperr.CodeInvalidAssignmentStatus,
			"%s requires assignment status %s, current status %s", review.ReviewType, want, asg.Status)
	}
	switch review.ReviewType {
	case models.ReviewTypeAcceptance:
		if asg.HasSubmission() {
			return apperr.InvalidState(apperr.CodeInvalidAssignmentStatus, "assignment %d already has submitted content", asg.ID)
		}
		if d.Result == models.ReviewResultApproved && st.task.Status == models.TaskStatusClosed {
			return apperr.InvalidState(apperr.CodeTaskNotAvailable, "task %d is closed", st.task.ID)
		}
	case models.ReviewTypeSubmission:
		if !asg.HasSubmission() {
			return apperr.InvalidState(apperr.CodeInvalidAssignmentStatus, "assignment %d has no submitted content", asg.ID)
		}
	}

	from := asg.Status
	if review.ReviewType == models.ReviewTypeAppeal {
		from = review.PriorAssignmentStatus
	}
	o, ok := lookup(review.ReviewType, from, d.Result)
	if !ok {
		return apperr.InvalidState(apperr.CodeInvalidAssignmentStatus, "no transition for %s from %s", review.ReviewType, from)
	}

	now := e.now()
	e.resolve(review, actor, d, now)
	if err := tx.Reviews().Update(ctx, review); err != nil {
		return err
	}

	if err := e.apply(ctx, tx, st, o, now); err != nil {
		return err
	}

	if review.ReviewType == models.ReviewTypeAcceptance && d.Result == models.ReviewResultApproved {
		if err := e.rejectSiblings(ctx, tx, actor, st, now); err != nil {
			return err
		}
	}

	return e.addNotice(ctx, tx, box, asg.UserID, noticeContent(o.notice, st.task, d.Comment))
}

// reverseAppeal 改判已裁决的申诉
func (e *Engine) reverseAppeal(ctx context.Context, tx types.Store, box *outbox, actor models.Actor, st *decideState, d Decision) error {
	review, asg := st.review, st.asg
	prior := review.PriorAssignmentStatus

	approve, ok := lookup(models.ReviewTypeAppeal, prior, models.ReviewResultApproved)
	if !ok {
		return apperr.InvalidState(apperr.CodeInvalidAssignmentStatus, "appeal %d has no recorded prior status", review.ID)
	}

	// 改判前作业必须仍处于上一次裁决后的状态
	expect := prior
	if review.ReviewResult == models.ReviewResultApproved {
		expect = approve.assignment
	}
	if asg.Status != expect {
		return apperr.InvalidState(apperr.CodeInvalidAssignmentStatus,
			"appeal %d can no longer be reversed, assignment status %s", review.ID, asg.Status)
	}

	reward, err := findReward(ctx, tx, asg.ID)
	if err != nil {
		return err
	}
	if want, ok := decidedRewardStatus(review, approve, reward); ok && reward.Status != want {
		return apperr.InvalidState(apperr.CodeInvalidRewardStatus,
			"appeal %d can no longer be reversed, reward %d is %s", review.ID, reward.ID, reward.Status)
	}

	o, ok := lookup(models.ReviewTypeAppeal, prior, d.Result)
	if !ok {
		return apperr.InvalidState(apperr.CodeInvalidAssignmentStatus, "no transition for appeal from %s", prior)
	}

	now := e.now()
	e.resolve(review, actor, d, now)
	if err := tx.Reviews().Update(ctx, review); err != nil {
		return err
	}
	if err := e.apply(ctx, tx, st, o, now); err != nil {
		return err
	}

	e.logger.Info().
		Int64("review_id", review.ID).
		Str("prior_status", prior.String()).
		Str("result", d.Result.String()).
		Msg("appeal decision reversed")
	return e.addNotice(ctx, tx, box, asg.UserID, noticeContent(o.notice, st.task, d.Comment))
}

// decidedRewardStatus 上一次申诉裁决后奖励应处的状态
func decidedRewardStatus(review *models.Review, approve outcome, reward *models.Reward) (models.RewardStatus, bool) {
	if reward == nil {
		return "", false
	}
	if review.ReviewResult == models.ReviewResultApproved {
		switch approve.reward {
		case rewardIssue:
			return models.RewardStatusIssued, true
		case rewardResetPending:
			return models.RewardStatusPending, true
		}
		return "", false
	}
	if review.PriorRewardStatus == "" {
		return models.RewardStatusFailed, true
	}
	return review.PriorRewardStatus, true
}

// resolve 写入审核结论，申诉记录保留申诉理由
func (e *Engine) resolve(review *models.Review, actor models.Actor, d Decision, now time.Time) {
	review.Resolve(d.Result, now)
	review.ReviewerID = actor.UserID
	if review.ReviewType != models.ReviewTypeAppeal {
		review.ReviewComment = d.Comment
	}
}

// apply 按 Assignment → Task → Reward 的顺序写入状态转换
func (e *Engine) apply(ctx context.Context, tx types.Store, st *decideState, o outcome, now time.Time) error {
	asg, task, review := st.asg, st.task, st.review

	next := o.assignment
	if next == "" {
		next = review.PriorAssignmentStatus
	}
	asg.Status = next
	asg.ReviewTime = &now
	if err := tx.Assignments().Update(ctx, asg); err != nil {
		return err
	}

	othersActive := false
	if o.task == taskReleaseIfIdle {
		var err error
		if othersActive, err = hasOtherActive(ctx, tx, task.ID, asg.ID); err != nil {
			return err
		}
	}
	if ts := nextTaskStatus(o.task, task.Status, review.PriorTaskStatus, othersActive); ts != task.Status {
		task.Status = ts
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return err
		}
	}

	reward, err := findReward(ctx, tx, asg.ID)
	if err != nil {
		return err
	}
	st.reward, err = e.applyReward(ctx, tx, o.reward, task, asg, review, reward, now)
	return err
}

// applyReward 按规则创建或切换奖励状态，奖励记录从不删除
func (e *Engine) applyReward(ctx context.Context, tx types.Store, rule rewardRule, task *models.Task, asg *models.Assignment,
	review *models.Review, reward *models.Reward, now time.Time) (*models.Reward, error) {
	switch rule {
	case rewardEnsurePending:
		if reward == nil {
			return createReward(ctx, tx, task, asg, models.RewardStatusPending, now)
		}
		if reward.Status != models.RewardStatusFailed {
			return reward, nil
		}
		reward.SetStatus(models.RewardStatusPending, now)

	case rewardIssue:
		if reward == nil {
			return createReward(ctx, tx, task, asg, models.RewardStatusIssued, now)
		}
		if reward.Status == models.RewardStatusIssued {
			return reward, nil
		}
		reward.SetStatus(models.RewardStatusIssued, now)

	case rewardResetPending:
		if reward == nil || reward.Status == models.RewardStatusPending {
			return reward, nil
		}
		reward.SetStatus(models.RewardStatusPending, now)

	case rewardRestore:
		if reward == nil {
			return nil, nil
		}
		if review.PriorRewardStatus == "" {
			// 申诉前没有奖励，已创建的奖励作废
			if reward.Status == models.RewardStatusFailed {
				return reward, nil
			}
			reward.SetStatus(models.RewardStatusFailed, now)
		} else {
			reward.Status = review.PriorRewardStatus
			reward.IssuedTime = review.PriorRewardIssuedTime
		}

	default:
		return reward, nil
	}

	if err := tx.Rewards().Update(ctx, reward); err != nil {
		return nil, err
	}
	return reward, nil
}

func createReward(ctx context.Context, tx types.Store, task *models.Task, asg *models.Assignment, status models.RewardStatus, now time.Time) (*models.Reward, error) {
	reward := &models.Reward{
		AssignmentID: asg.ID,
		Amount:       task.RewardAmount,
	}
	reward.SetStatus(status, now)
	if err := tx.Rewards().Create(ctx, reward); err != nil {
		return nil, err
	}
	return reward, nil
}

// rejectSiblings 同一任务其他待审核的接取申请自动拒绝，不发送通知
func (e *Engine) rejectSiblings(ctx context.Context, tx types.Store, actor models.Actor, st *decideState, now time.Time) error {
	pending, err := tx.Reviews().ListPendingByTask(ctx, st.task.ID, models.ReviewTypeAcceptance)
	if err != nil {
		return err
	}
	for _, r := range pending {
		if r.AssignmentID == st.asg.ID {
			continue
		}
		sibling, err := tx.Assignments().GetForUpdate(ctx, r.AssignmentID)
		if err != nil {
			return err
		}

		r.Resolve(models.ReviewResultRejected, now)
		r.ReviewerID = actor.UserID
		r.ReviewComment = siblingRejectComment
		if err := tx.Reviews().Update(ctx, r); err != nil {
			return err
		}

		if sibling.Status == models.AssignmentTaskPending {
			sibling.Status = models.AssignmentTaskReceivementRejected
			sibling.ReviewTime = &now
			if err := tx.Assignments().Update(ctx, sibling); err != nil {
				return err
			}
		}
		e.logger.Debug().
			Int64("review_id", r.ID).
			Int64("assignment_id", sibling.ID).
			Msg("sibling acceptance review auto-rejected")
	}
	return nil
}

// hasOtherActive 任务下是否还有其他占用任务的作业
func hasOtherActive(ctx context.Context, tx types.Store, taskID, exceptID int64) (bool, error) {
	list, err := tx.Assignments().ListByTask(ctx, taskID)
	if err != nil {
		return false, err
	}
	for _, a := range list {
		if a.ID != exceptID && activeStatuses[a.Status] {
			return true, nil
		}
	}
	return false, nil
}
