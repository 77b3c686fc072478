package models

import "time"

type AssignmentStatus string

const (
	AssignmentTaskPending             AssignmentStatus = "task_pending"                  // 接取申请待审核
	AssignmentTaskReceive             AssignmentStatus = "task_receive"                  // 已接取，进行中
	AssignmentTaskReceivementRejected AssignmentStatus = "task_receivement_rejected"     // 接取申请被拒绝
	AssignmentSubmissionPending       AssignmentStatus = "assignment_submission_pending" // 作业待审核
	AssignmentTaskCompleted           AssignmentStatus = "task_completed"                // 作业通过
	AssignmentTaskReject              AssignmentStatus = "task_reject"                   // 作业被驳回
	AssignmentAppealing               AssignmentStatus = "appealing"                     // 申诉中
)

func (s AssignmentStatus) String() string {
	return string(s)
}

// IsValid 判断作业状态是否合法
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentTaskPending, AssignmentTaskReceive, AssignmentTaskReceivementRejected,
		AssignmentSubmissionPending, AssignmentTaskCompleted, AssignmentTaskReject, AssignmentAppealing:
		return true
	default:
		return false
	}
}

// Appealable 只有已完成或被驳回的作业可以申诉
func (s AssignmentStatus) Appealable() bool {
	return s == AssignmentTaskCompleted || s == AssignmentTaskReject
}

// Assignment 一个用户对一个任务的接取记录，(task_id, user_id) 唯一
type Assignment struct {
	ID            int64            `json:"id" gorm:"primaryKey"`
	TaskID        int64            `json:"task_id" gorm:"not null;uniqueIndex:idx_assignment_task_user"`
	UserID        int64            `json:"user_id" gorm:"not null;uniqueIndex:idx_assignment_task_user;index"`
	Status        AssignmentStatus `json:"status" gorm:"size:40;not null;index"`
	SubmitContent string           `json:"submit_content,omitempty" gorm:"type:text"`
	SubmitTime    *time.Time       `json:"submit_time,omitempty"`
	ReviewTime    *time.Time       `json:"review_time,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (Assignment) TableName() string { return "task_assignments" }

// HasSubmission 是否已有提交内容
func (a *Assignment) HasSubmission() bool {
	return a.SubmitContent != ""
}
