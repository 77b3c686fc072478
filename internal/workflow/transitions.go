package workflow

import (
	"bounty-backend/internal/models"
)

type taskRule int

const (
	taskKeep taskRule = iota
	// open → in_progress
	taskStart
	// 没有其他进行中的作业时回到 open
	taskReleaseIfIdle
	taskComplete
	// completed → in_progress
	taskReopenIfCompleted
	taskResume
	// 恢复申诉前快照
	taskRestore
)

type rewardRule int

const (
	rewardKeep rewardRule = iota
	rewardEnsurePending
	rewardIssue
	rewardResetPending
	rewardRestore
)

// outcome 一次审核结论对各实体的影响
type outcome struct {
	assignment models.AssignmentStatus // 为空表示恢复快照
	task       taskRule
	reward     rewardRule
	notice     noticeKind
}

type transitionKey struct {
	reviewType models.ReviewType
	from       models.AssignmentStatus
	result     models.ReviewResult
}

// transitions 审核状态机。
// 申诉的 from 取申诉前的作业状态，而不是 appealing。
var transitions = map[transitionKey]outcome{
	{models.ReviewTypeAcceptance, models.AssignmentTaskPending, models.ReviewResultApproved}: {
		assignment: models.AssignmentTaskReceive,
		task:       taskStart,
		notice:     noticeAcceptApproved,
	},
	{models.ReviewTypeAcceptance, models.AssignmentTaskPending, models.ReviewResultRejected}: {
		assignment: models.AssignmentTaskReceivementRejected,
		task:       taskReleaseIfIdle,
		notice:     noticeAcceptRejected,
	},
	{models.ReviewTypeSubmission, models.AssignmentSubmissionPending, models.ReviewResultApproved}: {
		assignment: models.AssignmentTaskCompleted,
		task:       taskComplete,
		reward:     rewardEnsurePending,
		notice:     noticeSubmissionApproved,
	},
	{models.ReviewTypeSubmission, models.AssignmentSubmissionPending, models.ReviewResultRejected}: {
		assignment: models.AssignmentTaskReject,
		task:       taskReopenIfCompleted,
		notice:     noticeSubmissionRejected,
	},
	{models.ReviewTypeAppeal, models.AssignmentTaskReject, models.ReviewResultApproved}: {
		assignment: models.AssignmentTaskCompleted,
		task:       taskComplete,
		reward:     rewardIssue,
		notice:     noticeAppealOverturned,
	},
	{models.ReviewTypeAppeal, models.AssignmentTaskCompleted, models.ReviewResultApproved}: {
		assignment: models.AssignmentTaskReceive,
		task:       taskResume,
		reward:     rewardResetPending,
		notice:     noticeAppealRedo,
	},
	{models.ReviewTypeAppeal, models.AssignmentTaskReject, models.ReviewResultRejected}: {
		task:   taskRestore,
		reward: rewardRestore,
		notice: noticeAppealRejected,
	},
	{models.ReviewTypeAppeal, models.AssignmentTaskCompleted, models.ReviewResultRejected}: {
		task:   taskRestore,
		reward: rewardRestore,
		notice: noticeAppealRejected,
	},
}

// lookup 查找状态转换
func lookup(reviewType models.ReviewType, from models.AssignmentStatus, result models.ReviewResult) (outcome, bool) {
	o, ok := transitions[transitionKey{reviewType, from, result}]
	return o, ok
}

// requiredStatus 每种审核类型首次裁决时作业必须处于的状态
var requiredStatus = map[models.ReviewType]models.AssignmentStatus{
	models.ReviewTypeAcceptance: models.AssignmentTaskPending,
	models.ReviewTypeSubmission: models.AssignmentSubmissionPending,
	models.ReviewTypeAppeal:     models.AssignmentAppealing,
}

// activeStatuses 占用任务的作业状态
var activeStatuses = map[models.AssignmentStatus]bool{
	models.AssignmentTaskReceive:       true,
	models.AssignmentSubmissionPending: true,
	models.AssignmentTaskCompleted:     true,
	models.AssignmentTaskReject:        true,
	models.AssignmentAppealing:         true,
}

// nextTaskStatus 计算任务的新状态，已关闭的任务不再变化
func nextTaskStatus(rule taskRule, current models.TaskStatus, prior models.TaskStatus, othersActive bool) models.TaskStatus {
	if current == models.TaskStatusClosed {
		return current
	}
	switch rule {
	case taskStart:
		if current == models.TaskStatusOpen {
			return models.TaskStatusInProgress
		}
	case taskReleaseIfIdle:
		if current == models.TaskStatusInProgress && !othersActive {
			return models.TaskStatusOpen
		}
	case taskComplete:
		return models.TaskStatusCompleted
	case taskReopenIfCompleted:
		if current == models.TaskStatusCompleted {
			return models.TaskStatusInProgress
		}
	case taskResume:
		return models.TaskStatusInProgress
	case taskRestore:
		if prior != "" {
			return prior
		}
	}
	return current
}
