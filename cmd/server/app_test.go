package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"bounty-backend/internal/apperr"
	"bounty-backend/internal/models"
	"bounty-backend/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appConfig = `
server:
  host: 127.0.0.1
  port: 18080
log:
  debug: %s
  file: ""
storage:
  type: memory
auth:
  jwt_secret: app-test-secret-0123456789
metrics:
  enabled: false
`

func writeAppConfig(t *testing.T, path string, debug bool) {
	t.Helper()
	flag := "false"
	if debug {
		flag = "true"
	}
	content := []byte(fmt.Sprintf(appConfig, flag))
	require.NoError(t, os.WriteFile(path, content, 0644))
}

func newTestApp(t *testing.T) (*App, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	writeAppConfig(t, path, false)

	app, cleanup, err := InitializeApp(ConfigPath(path))
	require.NoError(t, err)
	t.Cleanup(cleanup)
	t.Cleanup(func() { logger.SetDebug(false) })
	return app, path
}

func TestInitializeApp(t *testing.T) {
	app, _ := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.Migrate(ctx))
	require.NoError(t, app.CreateAdmin(ctx, "root", "root-password"))

	res, err := app.users.Login(ctx, "root", "root-password")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
	assert.NotEmpty(t, res.Token)

	err = app.CreateAdmin(ctx, "root", "root-password")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, apperr.CodeUserAlreadyExists, apperr.CodeOf(err))
}

func TestInitializeApp_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  type: redis\n"), 0644))

	_, _, err := InitializeApp(ConfigPath(path))
	assert.ErrorContains(t, err, "unsupported storage.type")

	_, _, err = InitializeApp(ConfigPath(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestApp_Reload(t *testing.T) {
	app, path := newTestApp(t)
	require.False(t, app.config.Log.Debug)

	writeAppConfig(t, path, true)
	app.reload()
	assert.True(t, app.config.Log.Debug)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	// 非法配置被忽略
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: -1\n"), 0644))
	app.reload()
	assert.True(t, app.config.Log.Debug)

	writeAppConfig(t, path, false)
	app.reload()
	assert.False(t, app.config.Log.Debug)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestRootCmd(t *testing.T) {
	cmd := rootCmd()
	for _, name := range []string{"serve", "migrate", "create-admin", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "configs/server.yaml", flag.DefValue)
}
