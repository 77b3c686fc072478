package gormstore

import (
	"context"
	"fmt"

	"bounty-backend/internal/models"
	"bounty-backend/internal/store/types"
)

type taskStore struct {
	s *Store
}

// Create 创建任务
func (t *taskStore) Create(ctx context.Context, task *models.Task) error {
	if err := t.s.conn(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("inserting task: %w", translate(err))
	}
	return nil
}

// Get 获取任务
func (t *taskStore) Get(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	if err := t.s.conn(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("querying task: %w", translate(err))
	}
	return &task, nil
}

func (t *taskStore) GetForUpdate(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	if err := t.s.locked(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("locking task: %w", translate(err))
	}
	return &task, nil
}

// Update 更新任务
func (t *taskStore) Update(ctx context.Context, task *models.Task) error {
	if err := t.s.conn(ctx).Model(task).Select("*").Omit("created_at").Updates(task).Error; err != nil {
		return fmt.Errorf("updating task: %w", translate(err))
	}
	return nil
}

// List 列出任务
func (t *taskStore) List(ctx context.Context, filter types.TaskFilter) ([]*models.Task, error) {
	offset, limit := clampPage(filter.Offset, filter.Limit)

	q := t.s.conn(ctx).Model(&models.Task{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PublisherID != 0 {
		q = q.Where("publisher_id = ?", filter.PublisherID)
	}

	var tasks []*models.Task
	if err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("listing tasks: %w", translate(err))
	}
	return tasks, nil
}

// CountByStatus 按状态统计任务数量
func (t *taskStore) CountByStatus(ctx context.Context) (map[models.TaskStatus]int64, error) {
	var rows []struct {
		Status models.TaskStatus
		Count  int64
	}
	err := t.s.conn(ctx).Model(&models.Task{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("counting tasks: %w", translate(err))
	}

	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
