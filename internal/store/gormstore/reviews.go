package gormstore

import (
	"context"
	"fmt"

	"bounty-backend/internal/models"
)

type reviewStore struct {
	s *Store
}

// Create 创建审核记录，待审核唯一键冲突时返回 ErrConflict
func (r *reviewStore) Create(ctx context.Context, review *models.Review) error {
	if err := r.s.conn(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("inserting review: %w", translate(err))
	}
	return nil
}

func (r *reviewStore) Get(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	if err := r.s.conn(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("querying review: %w", translate(err))
	}
	return &review, nil
}

func (r *reviewStore) GetForUpdate(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	if err := r.s.locked(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("locking review: %w", translate(err))
	}
	return &review, nil
}

// FindPending 通过待审核唯一键定位记录
func (r *reviewStore) FindPending(ctx context.Context, assignmentID int64, reviewType models.ReviewType) (*models.Review, error) {
	var review models.Review
	err := r.s.locked(ctx).
		Where("pending_key = ?", models.PendingReviewKey(assignmentID, reviewType)).
		First(&review).Error
	if err != nil {
		return nil, fmt.Errorf("querying pending review: %w", translate(err))
	}
	return &review, nil
}

func (r *reviewStore) ListByAssignment(ctx context.Context, assignmentID int64) ([]*models.Review, error) {
	var list []*models.Review
	if err := r.s.conn(ctx).Where("assignment_id = ?", assignmentID).Order("id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("listing reviews: %w", translate(err))
	}
	return list, nil
}

func (r *reviewStore) ListPendingByTask(ctx context.Context, taskID int64, reviewType models.ReviewType) ([]*models.Review, error) {
	sub := r.s.conn(ctx).Model(&models.Assignment{}).Select("id").Where("task_id = ?", taskID)

	var list []*models.Review
	err := r.s.locked(ctx).
		Where("review_type = ? AND review_result = ? AND assignment_id IN (?)",
			reviewType, models.ReviewResultPending, sub).
		Order("id").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("listing pending reviews by task: %w", translate(err))
	}
	return list, nil
}

// Update 更新审核记录
func (r *reviewStore) Update(ctx context.Context, review *models.Review) error {
	if err := r.s.conn(ctx).Model(review).Select("*").Omit("created_at").Updates(review).Error; err != nil {
		return fmt.Errorf("updating review: %w", translate(err))
	}
	return nil
}

func (r *reviewStore) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.s.conn(ctx).Model(&models.Review{}).
		Where("review_result = ?", models.ReviewResultPending).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("counting pending reviews: %w", translate(err))
	}
	return n, nil
}
