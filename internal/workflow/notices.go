package workflow

import (
	"fmt"

	"bounty-backend/internal/models"
)

type noticeKind int

const (
	noticeNone noticeKind = iota
	noticeAcceptApproved
	noticeAcceptRejected
	noticeSubmissionApproved
	noticeSubmissionRejected
	noticeAppealOverturned
	noticeAppealRedo
	noticeAppealRejected
	noticeRewardIssued
	noticeRewardFailed
)

// siblingRejectComment 同一任务其他申请被自动拒绝时写入的审核意见
const siblingRejectComment = "automatically rejected: another applicant was approved for this task"

func withReason(comment string) string {
	if comment == "" {
		return ""
	}
	return ", reason: " + comment
}

// noticeContent 生成通知文本
func noticeContent(kind noticeKind, task *models.Task, comment string) string {
	switch kind {
	case noticeAcceptApproved:
		return fmt.Sprintf("Your request to take task %q was approved, you can start working now", task.Title)
	case noticeAcceptRejected:
		return fmt.Sprintf("Your request to take task %q was rejected%s", task.Title, withReason(comment))
	case noticeSubmissionApproved:
		return fmt.Sprintf("Your submission for task %q was approved, the reward is pending", task.Title)
	case noticeSubmissionRejected:
		return fmt.Sprintf("Your submission for task %q was rejected%s. You may appeal this decision", task.Title, withReason(comment))
	case noticeAppealOverturned:
		return fmt.Sprintf("Your appeal for task %q was approved, the reward has been issued", task.Title)
	case noticeAppealRedo:
		return fmt.Sprintf("Your appeal for task %q was approved, the task is reopened for you", task.Title)
	case noticeAppealRejected:
		return fmt.Sprintf("Your appeal for task %q was rejected%s", task.Title, withReason(comment))
	case noticeRewardIssued:
		return fmt.Sprintf("The reward for task %q has been issued", task.Title)
	case noticeRewardFailed:
		return fmt.Sprintf("The reward for task %q could not be issued", task.Title)
	default:
		return ""
	}
}
