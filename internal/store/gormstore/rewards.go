package gormstore

import (
	"context"
	"fmt"

	"bounty-backend/internal/models"
)

type rewardStore struct {
	s *Store
}

// Create 创建奖励，同一作业重复创建返回 ErrConflict
func (r *rewardStore) Create(ctx context.Context, reward *models.Reward) error {
	if err := r.s.conn(ctx).Create(reward).Error; err != nil {
		return fmt.Errorf("inserting reward: %w", translate(err))
	}
	return nil
}

func (r *rewardStore) Get(ctx context.Context, id int64) (*models.Reward, error) {
	var reward models.Reward
	if err := r.s.conn(ctx).First(&reward, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("querying reward: %w", translate(err))
	}
	return &reward, nil
}

func (r *rewardStore) GetForUpdate(ctx context.Context, id int64) (*models.Reward, error) {
	var reward models.Reward
	if err := r.s.locked(ctx).First(&reward, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("locking reward: %w", translate(err))
	}
	return &reward, nil
}

func (r *rewardStore) FindByAssignment(ctx context.Context, assignmentID int64) (*models.Reward, error) {
	var reward models.Reward
	if err := r.s.locked(ctx).First(&reward, "assignment_id = ?", assignmentID).Error; err != nil {
		return nil, fmt.Errorf("querying reward by assignment: %w", translate(err))
	}
	return &reward, nil
}

// ListByUser 通过作业表关联用户
func (r *rewardStore) ListByUser(ctx context.Context, userID int64) ([]*models.Reward, error) {
	var list []*models.Reward
	err := r.s.conn(ctx).
		Joins("JOIN task_assignments ON task_assignments.id = rewards.assignment_id").
		Where("task_assignments.user_id = ?", userID).
		Order("rewards.id DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("listing rewards by user: %w", translate(err))
	}
	return list, nil
}

func (r *rewardStore) Update(ctx context.Context, reward *models.Reward) error {
	if err := r.s.conn(ctx).Model(reward).Select("*").Omit("created_at").Updates(reward).Error; err != nil {
		return fmt.Errorf("updating reward: %w", translate(err))
	}
	return nil
}
