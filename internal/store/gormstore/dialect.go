package gormstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bounty-backend/internal/store/types"

	"github.com/glebarez/sqlite"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
)

// gormLogWriter 把 gorm 日志转到 zerolog
type gormLogWriter struct{}

func (gormLogWriter) Printf(format string, args ...interface{}) {
	zlog.Error().Str("component", "gorm").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// NewSQLiteStore 创建SQLite存储实例。
// 所有事务共用一个连接，写入天然串行。
func NewSQLiteStore(cfg types.SQLiteConfig) (*Store, error) {
	dsn := cfg.Path
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	return NewGormStore(sqlite.Open(dsn), types.PoolConfig{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
}

// NewPostgresStore 创建PostgreSQL存储实例
func NewPostgresStore(cfg types.PostgresConfig, pool types.PoolConfig) (*Store, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, sslMode)

	return NewGormStore(postgres.Open(dsn), pool)
}

// NewMySQLStore 创建MySQL存储实例
func NewMySQLStore(cfg types.MySQLConfig, pool types.PoolConfig) (*Store, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	return NewGormStore(mysql.Open(dsn), pool)
}
