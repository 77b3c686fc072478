package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"bounty-backend/internal/apperr"
	"bounty-backend/internal/models"
	"bounty-backend/internal/store/types"
	"bounty-backend/pkg/utils/password"

	"github.com/rs/zerolog"
)

const minPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,64}$`)

// RegisterInput 注册参数
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Role     models.UserRole
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// UserService 用户服务，同时作为请求身份的提供方
type UserService struct {
	store  types.Store
	tokens *TokenIssuer
	logger zerolog.Logger
	hash   func(string) (string, error)
}

// NewUserService 创建用户服务实例
func NewUserService(store types.Store, tokens *TokenIssuer, logger zerolog.Logger) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
		logger: logger.With().Str("service", "user").Logger(),
		hash:   password.HashPassword,
	}
}

// Register 注册普通用户或发布者
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if in.Role != models.RoleUser && in.Role != models.RolePublisher {
		return nil, apperr.Validation(apperr.CodeInvalidParameter, "role must be user or publisher")
	}
	return s.create(ctx, in)
}

// CreateAdmin 创建管理员，只通过命令行调用
func (s *UserService) CreateAdmin(ctx context.Context, username, pass string) (*models.User, error) {
	return s.create(ctx, RegisterInput{Username: username, Password: pass, Role: models.RoleAdmin})
}

func (s *UserService) create(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if !usernamePattern.MatchString(in.Username) {
		return nil, apperr.Validation(apperr.CodeInvalidParameter, "username must be 3-64 letters, digits, '.', '_' or '-'")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Validation(apperr.CodeWeakPassword, "password must be at least %d characters", minPasswordLength)
	}

	// 使用 Argon2id 哈希密码
	hashed, err := s.hash(in.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, apperr.Internal(err, "internal server error")
	}

	user := &models.User{
		Username:     in.Username,
		PasswordHash: hashed,
		Email:        strings.TrimSpace(in.Email),
		Role:         in.Role,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, types.ErrConflict) {
			return nil, apperr.Conflict(apperr.CodeUserAlreadyExists, "username %s already exists", in.Username)
		}
		s.logger.Error().Err(err).Msg("Failed to create user")
		return nil, apperr.From(err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("role", user.Role.String()).Msg("user registered")
	return user, nil
}

// Login 校验用户名密码并签发令牌
func (s *UserService) Login(ctx context.Context, username, pass string) (*LoginResult, error) {
	user, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, apperr.Unauthenticated(apperr.CodeInvalidCredentials, "invalid username or password")
		}
		s.logger.Error().Err(err).Msg("Failed to get user")
		return nil, apperr.From(err)
	}

	valid, err := password.VerifyPassword(pass, user.PasswordHash)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to verify password")
		return nil, apperr.Internal(err, "internal server error")
	}
	if !valid {
		return nil, apperr.Unauthenticated(apperr.CodeInvalidCredentials, "invalid username or password")
	}

	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

// Authenticate 将令牌解析为请求身份
func (s *UserService) Authenticate(token string) (models.Actor, error) {
	return s.tokens.Parse(token)
}

// GetUser 查询用户
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.Users().Get(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, apperr.NotFound(apperr.CodeUserNotFound, "user %d not found", id)
		}
		return nil, apperr.From(err)
	}
	return user, nil
}
