package factory

import (
	"fmt"

	"bounty-backend/internal/store/gormstore"
	"bounty-backend/internal/store/memory"
	"bounty-backend/internal/store/types"
)

// NewStore 创建新的存储实例
func NewStore(cfg *types.Config) (types.Store, error) {
	switch cfg.Type {
	case "memory":
		return memory.NewStore(), nil
	case "sqlite":
		return gormstore.NewSQLiteStore(cfg.SQLite)
	case "postgres":
		return gormstore.NewPostgresStore(cfg.Postgres, cfg.Pool)
	case "mysql":
		return gormstore.NewMySQLStore(cfg.MySQL, cfg.Pool)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
