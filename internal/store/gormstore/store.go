package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bounty-backend/internal/models"
	"bounty-backend/internal/store/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store 通用GORM存储实现
type Store struct {
	db *gorm.DB
	// sqlite 不支持行锁，依靠单连接串行化事务
	rowLocks bool
}

// NewGormStore 创建GORM存储实例并迁移表结构
func NewGormStore(dialector gorm.Dialector, pool types.PoolConfig) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(gormLogWriter{}, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	s := &Store{
		db:       db,
		rowLocks: dialector.Name() != "sqlite",
	}

	if err := s.Migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	return s, nil
}

// Migrate 自动迁移所有表
func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Assignment{},
		&models.Review{},
		&models.Reward{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("auto migrating tables: %w", err)
	}
	return nil
}

func (s *Store) Tasks() types.TaskStore                 { return &taskStore{s} }
func (s *Store) Assignments() types.AssignmentStore     { return &assignmentStore{s} }
func (s *Store) Reviews() types.ReviewStore             { return &reviewStore{s} }
func (s *Store) Rewards() types.RewardStore             { return &rewardStore{s} }
func (s *Store) Notifications() types.NotificationStore { return &notificationStore{s} }
func (s *Store) Users() types.UserStore                 { return &userStore{s} }

// WithTx 在事务中执行 fn
func (s *Store) WithTx(ctx context.Context, fn func(tx types.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, rowLocks: s.rowLocks})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting sql db: %w", err)
	}
	return sqlDB.Close()
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// locked 返回带 FOR UPDATE 的查询
func (s *Store) locked(ctx context.Context) *gorm.DB {
	db := s.db.WithContext(ctx)
	if s.rowLocks {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// translate 将驱动错误转换为存储层哨兵错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return types.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%w: %v", types.ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), isForeignKeyViolation(err):
		// 引用的记录不存在
		return fmt.Errorf("%w: %v", types.ErrNotFound, err)
	default:
		return err
	}
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}

func isForeignKeyViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "violates foreign key constraint") ||
		strings.Contains(msg, "a foreign key constraint fails")
}

func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	return offset, limit
}
