package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bounty-backend/internal/models"
	"bounty-backend/internal/store/types"
)

// dataset 内存中的全部数据
type dataset struct {
	tasks         map[int64]*models.Task
	assignments   map[int64]*models.Assignment
	reviews       map[int64]*models.Review
	rewards       map[int64]*models.Reward
	notifications map[int64]*models.Notification
	users         map[int64]*models.User
	lastID        int64 // 用于生成自增ID
}

func newDataset() *dataset {
	return &dataset{
		tasks:         make(map[int64]*models.Task),
		assignments:   make(map[int64]*models.Assignment),
		reviews:       make(map[int64]*models.Review),
		rewards:       make(map[int64]*models.Reward),
		notifications: make(map[int64]*models.Notification),
		users:         make(map[int64]*models.User),
	}
}

// clone 事务开始时的快照，回滚时整体恢复
func (d *dataset) clone() *dataset {
	c := newDataset()
	c.lastID = d.lastID
	for id, v := range d.tasks {
		c.tasks[id] = cloneTask(v)
	}
	for id, v := range d.assignments {
		c.assignments[id] = cloneAssignment(v)
	}
	for id, v := range d.reviews {
		c.reviews[id] = cloneReview(v)
	}
	for id, v := range d.rewards {
		c.rewards[id] = cloneReward(v)
	}
	for id, v := range d.notifications {
		c.notifications[id] = cloneNotification(v)
	}
	for id, v := range d.users {
		c.users[id] = cloneUser(v)
	}
	return c
}

func (d *dataset) nextID() int64 {
	d.lastID++
	return d.lastID
}

// Store 基于内存的存储，事务持有全局锁，失败时恢复快照
type Store struct {
	mu   *sync.RWMutex
	data *dataset
	inTx bool
}

func NewStore() *Store {
	return &Store{
		mu:   &sync.RWMutex{},
		data: newDataset(),
	}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) Tasks() types.TaskStore                 { return &taskStore{s} }
func (s *Store) Assignments() types.AssignmentStore     { return &assignmentStore{s} }
func (s *Store) Reviews() types.ReviewStore             { return &reviewStore{s} }
func (s *Store) Rewards() types.RewardStore             { return &rewardStore{s} }
func (s *Store) Notifications() types.NotificationStore { return &notificationStore{s} }
func (s *Store) Users() types.UserStore                 { return &userStore{s} }

// WithTx 串行执行事务
func (s *Store) WithTx(ctx context.Context, fn func(tx types.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	err := fn(&Store{mu: s.mu, data: s.data, inTx: true})
	if err == nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("commit transaction: %w", ctxErr)
		}
	}
	if err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneTask(t *models.Task) *models.Task {
	c := *t
	return &c
}

func cloneAssignment(a *models.Assignment) *models.Assignment {
	c := *a
	c.SubmitTime = cloneTime(a.SubmitTime)
	c.ReviewTime = cloneTime(a.ReviewTime)
	return &c
}

func cloneReview(r *models.Review) *models.Review {
	c := *r
	c.ReviewTime = cloneTime(r.ReviewTime)
	c.PriorRewardIssuedTime = cloneTime(r.PriorRewardIssuedTime)
	if r.PendingKey != nil {
		key := *r.PendingKey
		c.PendingKey = &key
	}
	return &c
}

func cloneReward(r *models.Reward) *models.Reward {
	c := *r
	c.IssuedTime = cloneTime(r.IssuedTime)
	return &c
}

func cloneNotification(n *models.Notification) *models.Notification {
	c := *n
	return &c
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
