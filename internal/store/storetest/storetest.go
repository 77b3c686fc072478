// Package storetest 为各存储实现提供一致性测试
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"bounty-backend/internal/models"
	"bounty-backend/internal/store/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory 为每个子测试返回一个空的存储
type Factory func(t *testing.T) types.Store

// Run 执行全部一致性测试
func Run(t *testing.T, newStore Factory) {
	t.Run("Task Operations", func(t *testing.T) { testTasks(t, newStore(t)) })
	t.Run("Assignment Uniqueness", func(t *testing.T) { testAssignments(t, newStore(t)) })
	t.Run("Pending Review Uniqueness", func(t *testing.T) { testPendingReviews(t, newStore(t)) })
	t.Run("Reward Per Assignment", func(t *testing.T) { testRewards(t, newStore(t)) })
	t.Run("Notifications", func(t *testing.T) { testNotifications(t, newStore(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Transaction Rollback", func(t *testing.T) { testRollback(t, newStore(t)) })
}

// SeedTask 创建一个开放任务
func SeedTask(t *testing.T, s types.Store, publisherID int64, amount string) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:        "translate docs",
		Description:  "translate the user guide",
		PublisherID:  publisherID,
		RewardAmount: decimal.RequireFromString(amount),
		Status:       models.TaskStatusOpen,
	}
	require.NoError(t, s.Tasks().Create(context.Background(), task))
	return task
}

func testTasks(t *testing.T, s types.Store) {
	ctx := context.Background()

	task := SeedTask(t, s, 1, "100.50")
	assert.NotZero(t, task.ID)

	got, err := s.Tasks().Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "translate docs", got.Title)
	assert.True(t, decimal.RequireFromString("100.5").Equal(got.RewardAmount))
	assert.Equal(t, models.TaskStatusOpen, got.Status)

	got.Status = models.TaskStatusInProgress
	require.NoError(t, s.Tasks().Update(ctx, got))

	SeedTask(t, s, 2, "10")

	open, err := s.Tasks().List(ctx, types.TaskFilter{Status: models.TaskStatusOpen})
	require.NoError(t, err)
	assert.Len(t, open, 1)

	all, err := s.Tasks().List(ctx, types.TaskFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	counts, err := s.Tasks().CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.TaskStatusOpen])
	assert.Equal(t, int64(1), counts[models.TaskStatusInProgress])

	_, err = s.Tasks().Get(ctx, 9999)
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func testAssignments(t *testing.T, s types.Store) {
	ctx := context.Background()
	task := SeedTask(t, s, 1, "100")

	first := &models.Assignment{TaskID: task.ID, UserID: 7, Status: models.AssignmentTaskPending}
	require.NoError(t, s.Assignments().Create(ctx, first))

	dup := &models.Assignment{TaskID: task.ID, UserID: 7, Status: models.AssignmentTaskPending}
	err := s.Assignments().Create(ctx, dup)
	assert.True(t, errors.Is(err, types.ErrConflict), "got %v", err)

	other := &models.Assignment{TaskID: task.ID, UserID: 8, Status: models.AssignmentTaskPending}
	require.NoError(t, s.Assignments().Create(ctx, other))

	found, err := s.Assignments().FindByTaskAndUser(ctx, task.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, other.ID, found.ID)

	now := time.Now()
	found.Status = models.AssignmentSubmissionPending
	found.SubmitContent = "uploads/report.pdf"
	found.SubmitTime = &now
	require.NoError(t, s.Assignments().Update(ctx, found))

	got, err := s.Assignments().Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentSubmissionPending, got.Status)
	assert.Equal(t, "uploads/report.pdf", got.SubmitContent)
	require.NotNil(t, got.SubmitTime)

	byTask, err := s.Assignments().ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, byTask, 2)

	byUser, err := s.Assignments().ListByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, first.ID, byUser[0].ID)
}

func testPendingReviews(t *testing.T, s types.Store) {
	ctx := context.Background()
	task := SeedTask(t, s, 1, "100")
	asg := &models.Assignment{TaskID: task.ID, UserID: 7, Status: models.AssignmentTaskPending}
	require.NoError(t, s.Assignments().Create(ctx, asg))

	review := &models.Review{AssignmentID: asg.ID, ReviewerID: 1, ReviewType: models.ReviewTypeAcceptance}
	review.MarkPending()
	require.NoError(t, s.Reviews().Create(ctx, review))

	dup := &models.Review{AssignmentID: asg.ID, ReviewerID: 1, ReviewType: models.ReviewTypeAcceptance}
	dup.MarkPending()
	err := s.Reviews().Create(ctx, dup)
	assert.True(t, errors.Is(err, types.ErrConflict), "got %v", err)

	// 不同类型互不影响
	sub := &models.Review{AssignmentID: asg.ID, ReviewerID: 1, ReviewType: models.ReviewTypeSubmission}
	sub.MarkPending()
	require.NoError(t, s.Reviews().Create(ctx, sub))

	pending, err := s.Reviews().FindPending(ctx, asg.ID, models.ReviewTypeAcceptance)
	require.NoError(t, err)
	assert.Equal(t, review.ID, pending.ID)

	byTask, err := s.Reviews().ListPendingByTask(ctx, task.ID, models.ReviewTypeAcceptance)
	require.NoError(t, err)
	assert.Len(t, byTask, 1)

	n, err := s.Reviews().CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	pending.Resolve(models.ReviewResultApproved, time.Now())
	require.NoError(t, s.Reviews().Update(ctx, pending))

	_, err = s.Reviews().FindPending(ctx, asg.ID, models.ReviewTypeAcceptance)
	assert.True(t, errors.Is(err, types.ErrNotFound))

	// 释放唯一键后可以再次创建
	again := &models.Review{AssignmentID: asg.ID, ReviewerID: 1, ReviewType: models.ReviewTypeAcceptance}
	again.MarkPending()
	require.NoError(t, s.Reviews().Create(ctx, again))

	list, err := s.Reviews().ListByAssignment(ctx, asg.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func testRewards(t *testing.T, s types.Store) {
	ctx := context.Background()
	task := SeedTask(t, s, 1, "100")
	asg := &models.Assignment{TaskID: task.ID, UserID: 7, Status: models.AssignmentTaskCompleted}
	require.NoError(t, s.Assignments().Create(ctx, asg))

	reward := &models.Reward{AssignmentID: asg.ID, Amount: task.RewardAmount, Status: models.RewardStatusPending}
	require.NoError(t, s.Rewards().Create(ctx, reward))

	dup := &models.Reward{AssignmentID: asg.ID, Amount: task.RewardAmount, Status: models.RewardStatusPending}
	err := s.Rewards().Create(ctx, dup)
	assert.True(t, errors.Is(err, types.ErrConflict), "got %v", err)

	got, err := s.Rewards().FindByAssignment(ctx, asg.ID)
	require.NoError(t, err)
	got.SetStatus(models.RewardStatusIssued, time.Now())
	require.NoError(t, s.Rewards().Update(ctx, got))

	byUser, err := s.Rewards().ListByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, models.RewardStatusIssued, byUser[0].Status)
	assert.NotNil(t, byUser[0].IssuedTime)
	assert.True(t, decimal.NewFromInt(100).Equal(byUser[0].Amount))
}

func testNotifications(t *testing.T, s types.Store) {
	ctx := context.Background()
	for _, content := range []string{"first", "second"} {
		require.NoError(t, s.Notifications().Create(ctx, &models.Notification{UserID: 7, Content: content}))
	}

	list, err := s.Notifications().ListByUser(ctx, 7, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Content)

	require.NoError(t, s.Notifications().MarkRead(ctx, list[0].ID))

	unread, err := s.Notifications().ListByUser(ctx, 7, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "first", unread[0].Content)
}

func testUsers(t *testing.T, s types.Store) {
	ctx := context.Background()
	u := &models.User{Username: "alice", PasswordHash: "x", Role: models.RolePublisher}
	require.NoError(t, s.Users().Create(ctx, u))

	err := s.Users().Create(ctx, &models.User{Username: "alice", PasswordHash: "y", Role: models.RoleUser})
	assert.True(t, errors.Is(err, types.ErrConflict), "got %v", err)

	got, err := s.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, models.RolePublisher, got.Role)
}

func testRollback(t *testing.T, s types.Store) {
	ctx := context.Background()
	task := SeedTask(t, s, 1, "100")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx types.Store) error {
		locked, err := tx.Tasks().GetForUpdate(ctx, task.ID)
		if err != nil {
			return err
		}
		locked.Status = models.TaskStatusClosed
		if err := tx.Tasks().Update(ctx, locked); err != nil {
			return err
		}
		if err := tx.Assignments().Create(ctx, &models.Assignment{TaskID: task.ID, UserID: 9, Status: models.AssignmentTaskPending}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Tasks().Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusOpen, got.Status)

	_, err = s.Assignments().FindByTaskAndUser(ctx, task.ID, 9)
	assert.True(t, errors.Is(err, types.ErrNotFound))

	err = s.WithTx(ctx, func(tx types.Store) error {
		locked, err := tx.Tasks().GetForUpdate(ctx, task.ID)
		if err != nil {
			return err
		}
		locked.Status = models.TaskStatusInProgress
		return tx.Tasks().Update(ctx, locked)
	})
	require.NoError(t, err)

	got, err = s.Tasks().Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, got.Status)
}
