package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bounty-backend/internal/apperr"
	"bounty-backend/internal/models"
	"bounty-backend/internal/store/memory"
	"bounty-backend/internal/store/storetest"
	"bounty-backend/pkg/utils/password"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func newUserService(t *testing.T) *UserService {
	t.Helper()
	s := NewUserService(memory.NewStore(), NewTokenIssuer(testSecret, time.Hour), zerolog.Nop())
	s.hash = func(p string) (string, error) {
		return password.Hash(p, password.Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 8, KeyLen: 16})
	}
	return s
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	user := &models.User{ID: 42, Role: models.RolePublisher}

	token, expires, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	actor, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, models.Actor{UserID: 42, Role: models.RolePublisher}, actor)

	t.Run("expired", func(t *testing.T) {
		issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { issuer.now = time.Now }()

		_, err := issuer.Parse(token)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		assert.Equal(t, apperr.CodeTokenExpired, apperr.CodeOf(err))
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenIssuer("another-secret-0123456789", time.Hour).Parse(token)
		assert.Equal(t, apperr.CodeInvalidToken, apperr.CodeOf(err))
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1, Role: models.RoleAdmin}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Parse(unsigned)
		assert.Equal(t, apperr.CodeInvalidToken, apperr.CodeOf(err))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not-a-token")
		assert.Equal(t, apperr.CodeInvalidToken, apperr.CodeOf(err))
	})
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newUserService(t)

	user, err := s.Register(ctx, RegisterInput{Username: "alice", Password: "correct-horse", Role: models.RolePublisher})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RolePublisher, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	res, err := s.Login(ctx, "alice", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	actor, err := s.Authenticate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.UserID)
	assert.Equal(t, models.RolePublisher, actor.Role)

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func TestUserService_Errors(t *testing.T) {
	ctx := context.Background()
	s := newUserService(t)
	_, err := s.Register(ctx, RegisterInput{Username: "bob", Password: "long-enough"})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		code apperr.Code
	}{
		{"duplicate username", func() error {
			_, err := s.Register(ctx, RegisterInput{Username: "bob", Password: "long-enough"})
			return err
		}, apperr.CodeUserAlreadyExists},
		{"weak password", func() error {
			_, err := s.Register(ctx, RegisterInput{Username: "carol", Password: "short"})
			return err
		}, apperr.CodeWeakPassword},
		{"bad username", func() error {
			_, err := s.Register(ctx, RegisterInput{Username: "a b", Password: "long-enough"})
			return err
		}, apperr.CodeInvalidParameter},
		{"self-assigned admin", func() error {
			_, err := s.Register(ctx, RegisterInput{Username: "mallory", Password: "long-enough", Role: models.RoleAdmin})
			return err
		}, apperr.CodeInvalidParameter},
		{"wrong password", func() error {
			_, err := s.Login(ctx, "bob", "not-the-password")
			return err
		}, apperr.CodeInvalidCredentials},
		{"unknown user", func() error {
			_, err := s.Login(ctx, "nobody", "long-enough")
			return err
		}, apperr.CodeInvalidCredentials},
		{"missing user", func() error {
			_, err := s.GetUser(ctx, 9999)
			return err
		}, apperr.CodeUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, apperr.CodeOf(tt.call()))
		})
	}

	admin, err := s.CreateAdmin(ctx, "root", "long-enough")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestStatusService(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	storetest.SeedTask(t, store, 1, "10")
	storetest.SeedTask(t, store, 1, "20")

	s := NewStatusService(store, zerolog.Nop())
	s.probe = func(context.Context) (models.HostStatus, error) {
		return models.HostStatus{Hostname: "test-host", CPUUsage: 12.5}, nil
	}

	_, err := s.GetSystemStatus(ctx, models.Actor{UserID: 2, Role: models.RolePublisher})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	status, err := s.GetSystemStatus(ctx, models.Actor{UserID: 3, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.Tasks[models.TaskStatusOpen])
	assert.Zero(t, status.PendingReviews)
	assert.Equal(t, "test-host", status.Host.Hostname)

	s.probe = func(context.Context) (models.HostStatus, error) {
		return models.HostStatus{}, errors.New("no /proc")
	}
	status, err = s.GetSystemStatus(ctx, models.Actor{UserID: 3, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Empty(t, status.Host.Hostname)
}
