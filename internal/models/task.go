package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusClosed     TaskStatus = "closed"
)

func (s TaskStatus) String() string {
	return string(s)
}

// IsValid 判断任务状态是否合法
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusCompleted, TaskStatusClosed:
		return true
	default:
		return false
	}
}

// Task 悬赏任务，状态只由工作流引擎修改
type Task struct {
	ID           int64           `json:"id" gorm:"primaryKey"`
	Title        string          `json:"title" gorm:"size:128;not null"`
	Description  string          `json:"description" gorm:"type:text"`
	PublisherID  int64           `json:"publisher_id" gorm:"not null;index"`
	RewardAmount decimal.Decimal `json:"reward_amount" gorm:"type:decimal(12,2);not null"`
	Status       TaskStatus      `json:"status" gorm:"size:32;not null;default:open;index"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }
