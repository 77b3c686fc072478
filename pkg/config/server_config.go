package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ServerConfig 服务端配置
type ServerConfig struct {
	// 服务器配置
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		TLS  struct {
			Enabled bool   `yaml:"enabled"`
			Cert    string `yaml:"cert"`
			Key     string `yaml:"key"`
		} `yaml:"tls"`
		RequestTimeout  time.Duration `yaml:"request_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	// 日志配置
	Log struct {
		Debug bool   `yaml:"debug"`
		File  string `yaml:"file"`
	} `yaml:"log"`

	// 存储配置
	Storage struct {
		Type   string `yaml:"type"`
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		Postgres struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
			SSLMode  string `yaml:"sslmode"`
		} `yaml:"postgres"`
		MySQL struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
		} `yaml:"mysql"`
		Pool struct {
			MaxOpenConns    int           `yaml:"max_open_conns"`
			MaxIdleConns    int           `yaml:"max_idle_conns"`
			ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		} `yaml:"pool"`
	} `yaml:"storage"`

	// 认证配置
	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	// 工作流配置
	Workflow struct {
		// publisher: 发布者审核; admin: 只有管理员审核
		ReviewerPolicy  string `yaml:"reviewer_policy"`
		AdminReviewerID int64  `yaml:"admin_reviewer_id"`
	} `yaml:"workflow"`

	// 通知投递配置
	Notify struct {
		DeliveryTimeout time.Duration `yaml:"delivery_timeout"`
		Nats            struct {
			Enabled       bool   `yaml:"enabled"`
			URL           string `yaml:"url"`
			SubjectPrefix string `yaml:"subject_prefix"`
		} `yaml:"nats"`
	} `yaml:"notify"`

	// 指标配置
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// LoadServerConfig 加载服务端配置，未设置的字段使用默认值
func LoadServerConfig(path string, workspaceRoot string) (*ServerConfig, error) {
	cfg := DefaultServerConfig()
	if err := LoadConfig(path, cfg); err != nil {
		return nil, err
	}

	// 处理相对路径
	if err := cfg.resolveRelativePaths(workspaceRoot); err != nil {
		return nil, fmt.Errorf("resolving paths: %w", err)
	}

	return cfg, nil
}

// Validate 实现Config接口
func (c *ServerConfig) Validate() error {
	if c.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Server.TLS.Enabled && (c.Server.TLS.Cert == "" || c.Server.TLS.Key == "") {
		return fmt.Errorf("server.tls.cert and server.tls.key are required when tls is enabled")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("invalid server.request_timeout: %s", c.Server.RequestTimeout)
	}

	switch c.Storage.Type {
	case "memory":
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required")
		}
	case "postgres":
		if c.Storage.Postgres.Host == "" || c.Storage.Postgres.DBName == "" {
			return fmt.Errorf("storage.postgres.host and storage.postgres.dbname are required")
		}
	case "mysql":
		if c.Storage.MySQL.Host == "" || c.Storage.MySQL.DBName == "" {
			return fmt.Errorf("storage.mysql.host and storage.mysql.dbname are required")
		}
	case "":
		return fmt.Errorf("storage.type is required")
	default:
		return fmt.Errorf("unsupported storage.type: %s", c.Storage.Type)
	}

	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth.jwt_secret must be at least 16 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid auth.token_ttl: %s", c.Auth.TokenTTL)
	}

	switch c.Workflow.ReviewerPolicy {
	case "publisher", "admin":
	default:
		return fmt.Errorf("unsupported workflow.reviewer_policy: %q", c.Workflow.ReviewerPolicy)
	}

	if c.Notify.Nats.Enabled && c.Notify.Nats.URL == "" {
		return fmt.Errorf("notify.nats.url is required when nats is enabled")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}
	return nil
}

// Address 监听地址
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// resolveRelativePaths 处理相对路径
func (c *ServerConfig) resolveRelativePaths(baseDir string) error {
	// 处理日志文件路径
	if c.Log.File != "" && !filepath.IsAbs(c.Log.File) {
		c.Log.File = filepath.Join(baseDir, c.Log.File)
	}

	// 处理SQLite数据库路径，内存数据库保持原样
	path := c.Storage.SQLite.Path
	if c.Storage.Type == "sqlite" && !filepath.IsAbs(path) && !strings.HasPrefix(path, "file:") && path != ":memory:" {
		c.Storage.SQLite.Path = filepath.Join(baseDir, path)
		// 确保数据库目录存在
		if err := os.MkdirAll(filepath.Dir(c.Storage.SQLite.Path), 0755); err != nil {
			return fmt.Errorf("creating sqlite directory: %w", err)
		}
	}

	return nil
}

// DefaultServerConfig 返回默认服务端配置
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{}

	// 服务器配置
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.RequestTimeout = 10 * time.Second
	cfg.Server.ShutdownTimeout = 5 * time.Second

	// 日志配置
	cfg.Log.Debug = false
	cfg.Log.File = "data/bounty-server.log"

	// 存储配置
	cfg.Storage.Type = "sqlite"
	cfg.Storage.SQLite.Path = "data/bounty.db"
	cfg.Storage.Postgres.Port = 5432
	cfg.Storage.Postgres.SSLMode = "disable"
	cfg.Storage.MySQL.Port = 3306
	cfg.Storage.Pool.MaxOpenConns = 20
	cfg.Storage.Pool.MaxIdleConns = 5
	cfg.Storage.Pool.ConnMaxLifetime = 30 * time.Minute

	// 认证配置
	cfg.Auth.TokenTTL = 24 * time.Hour

	// 工作流配置
	cfg.Workflow.ReviewerPolicy = "publisher"

	// 通知配置
	cfg.Notify.DeliveryTimeout = 5 * time.Second
	cfg.Notify.Nats.URL = "nats://127.0.0.1:4222"
	cfg.Notify.Nats.SubjectPrefix = "bounty.notifications"

	// 指标配置
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"

	return cfg
}
