package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RewardStatus string

const (
	RewardStatusPending RewardStatus = "pending"
	RewardStatusIssued  RewardStatus = "issued"
	RewardStatusFailed  RewardStatus = "failed"
)

func (s RewardStatus) String() string {
	return string(s)
}

// IsValid 判断奖励状态是否合法
func (s RewardStatus) IsValid() bool {
	switch s {
	case RewardStatusPending, RewardStatusIssued, RewardStatusFailed:
		return true
	default:
		return false
	}
}

// Reward 每个作业最多一条奖励记录，只切换状态不删除
type Reward struct {
	ID           int64           `json:"id" gorm:"primaryKey"`
	AssignmentID int64           `json:"assignment_id" gorm:"not null;uniqueIndex"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Status       RewardStatus    `json:"status" gorm:"size:16;not null;default:pending;index"`
	IssuedTime   *time.Time      `json:"issued_time,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (Reward) TableName() string { return "rewards" }

// SetStatus 切换状态，issued 时写入发放时间，离开 issued 时清空
func (r *Reward) SetStatus(status RewardStatus, at time.Time) {
	r.Status = status
	if status == RewardStatusIssued {
		r.IssuedTime = &at
	} else {
		r.IssuedTime = nil
	}
}
