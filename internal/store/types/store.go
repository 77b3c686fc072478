package types

import (
	"context"
	"errors"
	"time"

	"bounty-backend/internal/models"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrConflict 违反唯一约束
	ErrConflict = errors.New("unique constraint violated")
)

// Store 定义了存储层接口
type Store interface {
	Tasks() TaskStore
	Assignments() AssignmentStore
	Reviews() ReviewStore
	Rewards() RewardStore
	Notifications() NotificationStore
	Users() UserStore

	// WithTx 在单个事务中执行 fn，fn 返回错误时回滚
	WithTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}

// TaskFilter 任务列表过滤条件
type TaskFilter struct {
	Status      models.TaskStatus
	PublisherID int64
	Offset      int
	Limit       int
}

type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, id int64) (*models.Task, error)
	// GetForUpdate 读取并加行锁，只能在事务中使用
	GetForUpdate(ctx context.Context, id int64) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	List(ctx context.Context, filter TaskFilter) ([]*models.Task, error)
	CountByStatus(ctx context.Context) (map[models.TaskStatus]int64, error)
}

type AssignmentStore interface {
	Create(ctx context.Context, a *models.Assignment) error
	Get(ctx context.Context, id int64) (*models.Assignment, error)
	GetForUpdate(ctx context.Context, id int64) (*models.Assignment, error)
	FindByTaskAndUser(ctx context.Context, taskID, userID int64) (*models.Assignment, error)
	ListByTask(ctx context.Context, taskID int64) ([]*models.Assignment, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Assignment, error)
	Update(ctx context.Context, a *models.Assignment) error
}

type ReviewStore interface {
	// Create 插入审核记录，待审核唯一键冲突时返回 ErrConflict
	Create(ctx context.Context, r *models.Review) error
	Get(ctx context.Context, id int64) (*models.Review, error)
	GetForUpdate(ctx context.Context, id int64) (*models.Review, error)
	// FindPending 加锁读取某作业某类型的待审核记录
	FindPending(ctx context.Context, assignmentID int64, reviewType models.ReviewType) (*models.Review, error)
	ListByAssignment(ctx context.Context, assignmentID int64) ([]*models.Review, error)
	// ListPendingByTask 同一任务下所有作业的某类型待审核记录
	ListPendingByTask(ctx context.Context, taskID int64, reviewType models.ReviewType) ([]*models.Review, error)
	Update(ctx context.Context, r *models.Review) error
	CountPending(ctx context.Context) (int64, error)
}

type RewardStore interface {
	Create(ctx context.Context, r *models.Reward) error
	Get(ctx context.Context, id int64) (*models.Reward, error)
	GetForUpdate(ctx context.Context, id int64) (*models.Reward, error)
	// FindByAssignment 加锁读取作业对应的奖励
	FindByAssignment(ctx context.Context, assignmentID int64) (*models.Reward, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Reward, error)
	Update(ctx context.Context, r *models.Reward) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	Get(ctx context.Context, id int64) (*models.Notification, error)
	ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Config 存储配置
type Config struct {
	Type     string         `yaml:"type"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Pool     PoolConfig     `yaml:"pool"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// PoolConfig 连接池配置，sqlite 固定使用单连接
type PoolConfig struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}
