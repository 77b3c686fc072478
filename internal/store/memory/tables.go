package memory

import (
	"context"
	"fmt"
	"sort"

	"bounty-backend/internal/models"
	"bounty-backend/internal/store/types"
)

// Task 操作
type taskStore struct{ s *Store }

func (t *taskStore) Create(ctx context.Context, task *models.Task) error {
	defer t.s.lock()()
	ts := now()
	task.ID = t.s.data.nextID()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = ts
	}
	task.UpdatedAt = ts
	t.s.data.tasks[task.ID] = cloneTask(task)
	return nil
}

func (t *taskStore) Get(ctx context.Context, id int64) (*models.Task, error) {
	defer t.s.rlock()()
	task, ok := t.s.data.tasks[id]
	if !ok {
		return nil, fmt.Errorf("querying task %d: %w", id, types.ErrNotFound)
	}
	return cloneTask(task), nil
}

func (t *taskStore) GetForUpdate(ctx context.Context, id int64) (*models.Task, error) {
	return t.Get(ctx, id)
}

func (t *taskStore) Update(ctx context.Context, task *models.Task) error {
	defer t.s.lock()()
	if _, ok := t.s.data.tasks[task.ID]; !ok {
		return fmt.Errorf("updating task %d: %w", task.ID, types.ErrNotFound)
	}
	task.UpdatedAt = now()
	t.s.data.tasks[task.ID] = cloneTask(task)
	return nil
}

func (t *taskStore) List(ctx context.Context, filter types.TaskFilter) ([]*models.Task, error) {
	defer t.s.rlock()()
	var list []*models.Task
	for _, task := range t.s.data.tasks {
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.PublisherID != 0 && task.PublisherID != filter.PublisherID {
			continue
		}
		list = append(list, cloneTask(task))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return page(list, filter.Offset, filter.Limit), nil
}

func (t *taskStore) CountByStatus(ctx context.Context) (map[models.TaskStatus]int64, error) {
	defer t.s.rlock()()
	counts := make(map[models.TaskStatus]int64)
	for _, task := range t.s.data.tasks {
		counts[task.Status]++
	}
	return counts, nil
}

// Assignment 操作
type assignmentStore struct{ s *Store }

func (a *assignmentStore) Create(ctx context.Context, asg *models.Assignment) error {
	defer a.s.lock()()
	for _, existing := range a.s.data.assignments {
		if existing.TaskID == asg.TaskID && existing.UserID == asg.UserID {
			return fmt.Errorf("inserting assignment: %w", types.ErrConflict)
		}
	}
	ts := now()
	asg.ID = a.s.data.nextID()
	asg.CreatedAt = ts
	asg.UpdatedAt = ts
	a.s.data.assignments[asg.ID] = cloneAssignment(asg)
	return nil
}

func (a *assignmentStore) Get(ctx context.Context, id int64) (*models.Assignment, error) {
	defer a.s.rlock()()
	asg, ok := a.s.data.assignments[id]
	if !ok {
		return nil, fmt.Errorf("querying assignment %d: %w", id, types.ErrNotFound)
	}
	return cloneAssignment(asg), nil
}

func (a *assignmentStore) GetForUpdate(ctx context.Context, id int64) (*models.Assignment, error) {
	return a.Get(ctx, id)
}

func (a *assignmentStore) FindByTaskAndUser(ctx context.Context, taskID, userID int64) (*models.Assignment, error) {
	defer a.s.rlock()()
	for _, asg := range a.s.data.assignments {
		if asg.TaskID == taskID && asg.UserID == userID {
			return cloneAssignment(asg), nil
		}
	}
	return nil, fmt.Errorf("querying assignment by task and user: %w", types.ErrNotFound)
}

func (a *assignmentStore) ListByTask(ctx context.Context, taskID int64) ([]*models.Assignment, error) {
	defer a.s.rlock()()
	var list []*models.Assignment
	for _, asg := range a.s.data.assignments {
		if asg.TaskID == taskID {
			list = append(list, cloneAssignment(asg))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (a *assignmentStore) ListByUser(ctx context.Context, userID int64) ([]*models.Assignment, error) {
	defer a.s.rlock()()
	var list []*models.Assignment
	for _, asg := range a.s.data.assignments {
		if asg.UserID == userID {
			list = append(list, cloneAssignment(asg))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (a *assignmentStore) Update(ctx context.Context, asg *models.Assignment) error {
	defer a.s.lock()()
	if _, ok := a.s.data.assignments[asg.ID]; !ok {
		return fmt.Errorf("updating assignment %d: %w", asg.ID, types.ErrNotFound)
	}
	asg.UpdatedAt = now()
	a.s.data.assignments[asg.ID] = cloneAssignment(asg)
	return nil
}

// Review 操作
type reviewStore struct{ s *Store }

// pendingTaken 检查待审核唯一键是否已被其他记录占用
func (r *reviewStore) pendingTaken(review *models.Review) bool {
	if review.PendingKey == nil {
		return false
	}
	for id, existing := range r.s.data.reviews {
		if id != review.ID && existing.PendingKey != nil && *existing.PendingKey == *review.PendingKey {
			return true
		}
	}
	return false
}

func (r *reviewStore) Create(ctx context.Context, review *models.Review) error {
	defer r.s.lock()()
	if r.pendingTaken(review) {
		return fmt.Errorf("inserting review: %w", types.ErrConflict)
	}
	ts := now()
	review.ID = r.s.data.nextID()
	review.CreatedAt = ts
	review.UpdatedAt = ts
	r.s.data.reviews[review.ID] = cloneReview(review)
	return nil
}

func (r *reviewStore) Get(ctx context.Context, id int64) (*models.Review, error) {
	defer r.s.rlock()()
	review, ok := r.s.data.reviews[id]
	if !ok {
		return nil, fmt.Errorf("querying review %d: %w", id, types.ErrNotFound)
	}
	return cloneReview(review), nil
}

func (r *reviewStore) GetForUpdate(ctx context.Context, id int64) (*models.Review, error) {
	return r.Get(ctx, id)
}

func (r *reviewStore) FindPending(ctx context.Context, assignmentID int64, reviewType models.ReviewType) (*models.Review, error) {
	defer r.s.rlock()()
	key := models.PendingReviewKey(assignmentID, reviewType)
	for _, review := range r.s.data.reviews {
		if review.PendingKey != nil && *review.PendingKey == key {
			return cloneReview(review), nil
		}
	}
	return nil, fmt.Errorf("querying pending review: %w", types.ErrNotFound)
}

func (r *reviewStore) ListByAssignment(ctx context.Context, assignmentID int64) ([]*models.Review, error) {
	defer r.s.rlock()()
	var list []*models.Review
	for _, review := range r.s.data.reviews {
		if review.AssignmentID == assignmentID {
			list = append(list, cloneReview(review))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *reviewStore) ListPendingByTask(ctx context.Context, taskID int64, reviewType models.ReviewType) ([]*models.Review, error) {
	defer r.s.rlock()()
	var list []*models.Review
	for _, review := range r.s.data.reviews {
		if review.ReviewType != reviewType || review.ReviewResult != models.ReviewResultPending {
			continue
		}
		asg, ok := r.s.data.assignments[review.AssignmentID]
		if !ok || asg.TaskID != taskID {
			continue
		}
		list = append(list, cloneReview(review))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *reviewStore) Update(ctx context.Context, review *models.Review) error {
	defer r.s.lock()()
	if _, ok := r.s.data.reviews[review.ID]; !ok {
		return fmt.Errorf("updating review %d: %w", review.ID, types.ErrNotFound)
	}
	if r.pendingTaken(review) {
		return fmt.Errorf("updating review: %w", types.ErrConflict)
	}
	review.UpdatedAt = now()
	r.s.data.reviews[review.ID] = cloneReview(review)
	return nil
}

func (r *reviewStore) CountPending(ctx context.Context) (int64, error) {
	defer r.s.rlock()()
	var n int64
	for _, review := range r.s.data.reviews {
		if review.ReviewResult == models.ReviewResultPending {
			n++
		}
	}
	return n, nil
}

// Reward 操作
type rewardStore struct{ s *Store }

func (r *rewardStore) Create(ctx context.Context, reward *models.Reward) error {
	defer r.s.lock()()
	for _, existing := range r.s.data.rewards {
		if existing.AssignmentID == reward.AssignmentID {
			return fmt.Errorf("inserting reward: %w", types.ErrConflict)
		}
	}
	ts := now()
	reward.ID = r.s.data.nextID()
	reward.CreatedAt = ts
	reward.UpdatedAt = ts
	r.s.data.rewards[reward.ID] = cloneReward(reward)
	return nil
}

func (r *rewardStore) Get(ctx context.Context, id int64) (*models.Reward, error) {
	defer r.s.rlock()()
	reward, ok := r.s.data.rewards[id]
	if !ok {
		return nil, fmt.Errorf("querying reward %d: %w", id, types.ErrNotFound)
	}
	return cloneReward(reward), nil
}

func (r *rewardStore) GetForUpdate(ctx context.Context, id int64) (*models.Reward, error) {
	return r.Get(ctx, id)
}

func (r *rewardStore) FindByAssignment(ctx context.Context, assignmentID int64) (*models.Reward, error) {
	defer r.s.rlock()()
	for _, reward := range r.s.data.rewards {
		if reward.AssignmentID == assignmentID {
			return cloneReward(reward), nil
		}
	}
	return nil, fmt.Errorf("querying reward by assignment: %w", types.ErrNotFound)
}

func (r *rewardStore) ListByUser(ctx context.Context, userID int64) ([]*models.Reward, error) {
	defer r.s.rlock()()
	var list []*models.Reward
	for _, reward := range r.s.data.rewards {
		asg, ok := r.s.data.assignments[reward.AssignmentID]
		if ok && asg.UserID == userID {
			list = append(list, cloneReward(reward))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (r *rewardStore) Update(ctx context.Context, reward *models.Reward) error {
	defer r.s.lock()()
	if _, ok := r.s.data.rewards[reward.ID]; !ok {
		return fmt.Errorf("updating reward %d: %w", reward.ID, types.ErrNotFound)
	}
	reward.UpdatedAt = now()
	r.s.data.rewards[reward.ID] = cloneReward(reward)
	return nil
}

// Notification 操作
type notificationStore struct{ s *Store }

func (n *notificationStore) Create(ctx context.Context, notice *models.Notification) error {
	defer n.s.lock()()
	notice.ID = n.s.data.nextID()
	notice.CreatedAt = now()
	n.s.data.notifications[notice.ID] = cloneNotification(notice)
	return nil
}

func (n *notificationStore) Get(ctx context.Context, id int64) (*models.Notification, error) {
	defer n.s.rlock()()
	notice, ok := n.s.data.notifications[id]
	if !ok {
		return nil, fmt.Errorf("querying notification %d: %w", id, types.ErrNotFound)
	}
	return cloneNotification(notice), nil
}

func (n *notificationStore) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*models.Notification, error) {
	defer n.s.rlock()()
	var list []*models.Notification
	for _, notice := range n.s.data.notifications {
		if notice.UserID != userID || (unreadOnly && notice.IsRead) {
			continue
		}
		list = append(list, cloneNotification(notice))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (n *notificationStore) MarkRead(ctx context.Context, id int64) error {
	defer n.s.lock()()
	notice, ok := n.s.data.notifications[id]
	if !ok {
		return fmt.Errorf("marking notification %d read: %w", id, types.ErrNotFound)
	}
	notice.IsRead = true
	return nil
}

// User 操作
type userStore struct{ s *Store }

func (u *userStore) Create(ctx context.Context, user *models.User) error {
	defer u.s.lock()()
	for _, existing := range u.s.data.users {
		if existing.Username == user.Username {
			return fmt.Errorf("inserting user: %w", types.ErrConflict)
		}
	}
	ts := now()
	user.ID = u.s.data.nextID()
	user.CreatedAt = ts
	user.UpdatedAt = ts
	u.s.data.users[user.ID] = cloneUser(user)
	return nil
}

func (u *userStore) Get(ctx context.Context, id int64) (*models.User, error) {
	defer u.s.rlock()()
	user, ok := u.s.data.users[id]
	if !ok {
		return nil, fmt.Errorf("querying user %d: %w", id, types.ErrNotFound)
	}
	return cloneUser(user), nil
}

func (u *userStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer u.s.rlock()()
	for _, user := range u.s.data.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return nil, fmt.Errorf("querying user by username: %w", types.ErrNotFound)
}
