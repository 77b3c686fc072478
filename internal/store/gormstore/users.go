package gormstore

import (
	"context"
	"fmt"

	"bounty-backend/internal/models"
)

type notificationStore struct {
	s *Store
}

func (n *notificationStore) Create(ctx context.Context, notice *models.Notification) error {
	if err := n.s.conn(ctx).Create(notice).Error; err != nil {
		return fmt.Errorf("inserting notification: %w", translate(err))
	}
	return nil
}

func (n *notificationStore) Get(ctx context.Context, id int64) (*models.Notification, error) {
	var notice models.Notification
	if err := n.s.conn(ctx).First(&notice, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("querying notification: %w", translate(err))
	}
	return &notice, nil
}

func (n *notificationStore) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*models.Notification, error) {
	q := n.s.conn(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var list []*models.Notification
	if err := q.Order("id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("listing notifications: %w", translate(err))
	}
	return list, nil
}

// MarkRead 标记已读
func (n *notificationStore) MarkRead(ctx context.Context, id int64) error {
	res := n.s.conn(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("marking notification read: %w", translate(res.Error))
	}
	return nil
}

type userStore struct {
	s *Store
}

// Create 创建用户，用户名重复返回 ErrConflict
func (u *userStore) Create(ctx context.Context, user *models.User) error {
	if err := u.s.conn(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("inserting user: %w", translate(err))
	}
	return nil
}

func (u *userStore) Get(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := u.s.conn(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("querying user: %w", translate(err))
	}
	return &user, nil
}

func (u *userStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := u.s.conn(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, fmt.Errorf("querying user by username: %w", translate(err))
	}
	return &user, nil
}
