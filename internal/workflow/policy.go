package workflow

import (
	"fmt"

	"bounty-backend/internal/models"
)

// ReviewerPolicy 决定谁可以审核某个任务，以及新的待审核记录指派给谁
type ReviewerPolicy interface {
	CanReview(actor models.Actor, task *models.Task) bool
	ReviewerFor(task *models.Task) int64
}

// PublisherPolicy 任务发布者或管理员审核，待审核记录指派给发布者
type PublisherPolicy struct{}

func (PublisherPolicy) CanReview(actor models.Actor, task *models.Task) bool {
	return actor.IsAdmin() || actor.UserID == task.PublisherID
}

func (PublisherPolicy) ReviewerFor(task *models.Task) int64 {
	return task.PublisherID
}

// AdminPolicy 只有管理员可以审核，待审核记录指派给配置的管理员
type AdminPolicy struct {
	ReviewerID int64
}

func (AdminPolicy) CanReview(actor models.Actor, task *models.Task) bool {
	return actor.IsAdmin()
}

func (p AdminPolicy) ReviewerFor(task *models.Task) int64 {
	if p.ReviewerID == 0 {
		return task.PublisherID
	}
	return p.ReviewerID
}

// NewReviewerPolicy 根据配置创建审核策略
func NewReviewerPolicy(mode string, adminReviewerID int64) (ReviewerPolicy, error) {
	switch mode {
	case "", "publisher":
		return PublisherPolicy{}, nil
	case "admin":
		return AdminPolicy{ReviewerID: adminReviewerID}, nil
	default:
		return nil, fmt.Errorf("unknown reviewer policy: %s", mode)
	}
}
