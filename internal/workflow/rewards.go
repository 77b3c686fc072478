package workflow

import (
	"context"

	"bounty-backend/internal/apperr"
	"bounty-backend/internal/models"
	"bounty-backend/internal/store/types"
)

// SettleReward 管理员确认奖励发放结果，pending 只能切换到 issued 或 failed
func (e *Engine) SettleReward(ctx context.Context, actor models.Actor, rewardID int64, status models.RewardStatus) (*Snapshot, error) {
	if !actor.IsAdmin() {
		return nil, apperr.PermissionDenied(apperr.CodeRewardPermissionDenied, "only admins can settle rewards")
	}
	if status != models.RewardStatusIssued && status != models.RewardStatusFailed {
		return nil, apperr.Validation(apperr.CodeInvalidRewardStatus, "reward can only be settled as issued or failed, got %q", status)
	}

	out := &Snapshot{}
	changed := false
	err := e.run(ctx, "settle_reward", func(tx types.Store, box *outbox) error {
		changed = false
		current, err := tx.Rewards().Get(ctx, rewardID)
		if err != nil {
			return rewardNotFound(err, rewardID)
		}
		task, asg, err := lockAssignment(ctx, tx, current.AssignmentID)
		if err != nil {
			return err
		}
		reward, err := tx.Rewards().GetForUpdate(ctx, rewardID)
		if err != nil {
			return rewardNotFound(err, rewardID)
		}
		out.Task, out.Assignment, out.Reward = task, asg, reward

		if reward.Status == status {
			return nil
		}
		if reward.Status != models.RewardStatusPending {
			return apperr.InvalidState(apperr.CodeInvalidRewardStatus, "reward %d is already %s", rewardID, reward.Status)
		}
		if asg.Status != models.AssignmentTaskCompleted {
			return apperr.InvalidState(apperr.CodeInvalidAssignmentStatus,
				"reward %d cannot be settled while assignment %d is %s", rewardID, asg.ID, asg.Status)
		}

		reward.SetStatus(status, e.now())
		if err := tx.Rewards().Update(ctx, reward); err != nil {
			return err
		}
		changed = true

		kind := noticeRewardIssued
		if status == models.RewardStatusFailed {
			kind = noticeRewardFailed
		}
		return e.addNotice(ctx, tx, box, asg.UserID, noticeContent(kind, task, ""))
	})
	if err != nil {
		return nil, err
	}

	if changed {
		e.logger.Info().
			Int64("reward_id", rewardID).
			Str("status", status.String()).
			Str("amount", out.Reward.Amount.StringFixed(2)).
			Msg("reward settled")
	}
	return out, nil
}
