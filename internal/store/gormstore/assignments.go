package gormstore

import (
	"context"
	"fmt"

	"bounty-backend/internal/models"
)

type assignmentStore struct {
	s *Store
}

// Create 创建作业，(task_id, user_id) 重复时返回 ErrConflict
func (a *assignmentStore) Create(ctx context.Context, asg *models.Assignment) error {
	if err := a.s.conn(ctx).Create(asg).Error; err != nil {
		return fmt.Errorf("inserting assignment: %w", translate(err))
	}
	return nil
}

func (a *assignmentStore) Get(ctx context.Context, id int64) (*models.Assignment, error) {
	var asg models.Assignment
	if err := a.s.conn(ctx).First(&asg, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("querying assignment: %w", translate(err))
	}
	return &asg, nil
}

func (a *assignmentStore) GetForUpdate(ctx context.Context, id int64) (*models.Assignment, error) {
	var asg models.Assignment
	if err := a.s.locked(ctx).First(&asg, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("locking assignment: %w", translate(err))
	}
	return &asg, nil
}

func (a *assignmentStore) FindByTaskAndUser(ctx context.Context, taskID, userID int64) (*models.Assignment, error) {
	var asg models.Assignment
	err := a.s.locked(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&asg).Error
	if err != nil {
		return nil, fmt.Errorf("querying assignment by task and user: %w", translate(err))
	}
	return &asg, nil
}

func (a *assignmentStore) ListByTask(ctx context.Context, taskID int64) ([]*models.Assignment, error) {
	var list []*models.Assignment
	if err := a.s.conn(ctx).Where("task_id = ?", taskID).Order("id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("listing assignments by task: %w", translate(err))
	}
	return list, nil
}

func (a *assignmentStore) ListByUser(ctx context.Context, userID int64) ([]*models.Assignment, error) {
	var list []*models.Assignment
	if err := a.s.conn(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("listing assignments by user: %w", translate(err))
	}
	return list, nil
}

// Update 更新作业
func (a *assignmentStore) Update(ctx context.Context, asg *models.Assignment) error {
	if err := a.s.conn(ctx).Model(asg).Select("*").Omit("created_at").Updates(asg).Error; err != nil {
		return fmt.Errorf("updating assignment: %w", translate(err))
	}
	return nil
}
