package models

import (
	"fmt"
	"time"
)

type ReviewType string
type ReviewResult string

const (
	ReviewTypeAcceptance ReviewType = "acceptance_review"
	ReviewTypeSubmission ReviewType = "submission_review"
	ReviewTypeAppeal     ReviewType = "appeal_review"

	ReviewResultPending  ReviewResult = "pending"
	ReviewResultApproved ReviewResult = "approved"
	ReviewResultRejected ReviewResult = "rejected"
)

func (t ReviewType) String() string {
	return string(t)
}

// IsValid 判断审核类型是否合法
func (t ReviewType) IsValid() bool {
	switch t {
	case ReviewTypeAcceptance, ReviewTypeSubmission, ReviewTypeAppeal:
		return true
	default:
		return false
	}
}

func (r ReviewResult) String() string {
	return string(r)
}

// IsValid 判断审核结果是否合法
func (r ReviewResult) IsValid() bool {
	switch r {
	case ReviewResultPending, ReviewResultApproved, ReviewResultRejected:
		return true
	default:
		return false
	}
}

// IsDecision 只有 approved / rejected 是审核人可以给出的结论
func (r ReviewResult) IsDecision() bool {
	return r == ReviewResultApproved || r == ReviewResultRejected
}

// Review 一次审核记录。
// PendingKey 仅在 pending 时非空，取值为 "<assignment_id>:<review_type>"，
// 依靠唯一索引保证同一作业同一类型最多一条待审核记录。
type Review struct {
	ID            int64        `json:"id" gorm:"primaryKey"`
	AssignmentID  int64        `json:"assignment_id" gorm:"not null;index"`
	ReviewerID    int64        `json:"reviewer_id" gorm:"not null"`
	ReviewType    ReviewType   `json:"review_type" gorm:"size:32;not null"`
	ReviewResult  ReviewResult `json:"review_result" gorm:"size:16;not null;default:pending;index"`
	ReviewComment string       `json:"review_comment,omitempty" gorm:"type:text"`
	ReviewTime    *time.Time   `json:"review_time,omitempty"`
	PendingKey    *string      `json:"-" gorm:"size:64;uniqueIndex"`

	// 申诉前的状态快照，只有 appeal_review 使用
	PriorAssignmentStatus AssignmentStatus `json:"prior_assignment_status,omitempty" gorm:"size:40"`
	PriorTaskStatus       TaskStatus       `json:"prior_task_status,omitempty" gorm:"size:32"`
	PriorRewardStatus     RewardStatus     `json:"prior_reward_status,omitempty" gorm:"size:16"`
	PriorRewardIssuedTime *time.Time       `json:"prior_reward_issued_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }

// PendingReviewKey 返回待审核唯一键
func PendingReviewKey(assignmentID int64, reviewType ReviewType) string {
	return fmt.Sprintf("%d:%s", assignmentID, reviewType)
}

// MarkPending 将记录置为待审核并设置唯一键
func (r *Review) MarkPending() {
	key := PendingReviewKey(r.AssignmentID, r.ReviewType)
	r.ReviewResult = ReviewResultPending
	r.PendingKey = &key
}

// Resolve 写入审核结论并释放唯一键
func (r *Review) Resolve(result ReviewResult, at time.Time) {
	r.ReviewResult = result
	r.ReviewTime = &at
	r.PendingKey = nil
}

func (r *Review) IsPending() bool {
	return r.ReviewResult == ReviewResultPending
}
