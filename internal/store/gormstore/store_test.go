package gormstore

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"bounty-backend/internal/store/storetest"
	"bounty-backend/internal/store/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestStore 每个测试使用独立的内存数据库
func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := NewSQLiteStore(types.SQLiteConfig{Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", name)})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) types.Store {
		return newTestStore(t)
	})
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", gorm.ErrRecordNotFound, types.ErrNotFound},
		{"duplicated", gorm.ErrDuplicatedKey, types.ErrConflict},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"), types.ErrConflict},
		{"postgres unique", errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_username"`), types.ErrConflict},
		{"mysql unique", errors.New("Error 1062: Duplicate entry 'alice' for key 'idx_users_username'"), types.ErrConflict},
		{"foreign key", gorm.ErrForeignKeyViolated, types.ErrNotFound},
		{"sqlite foreign key", errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), types.ErrNotFound},
		{"postgres foreign key", errors.New(`ERROR: insert or update on table "rewards" violates foreign key constraint "fk_rewards_assignment"`), types.ErrNotFound},
		{"mysql foreign key", errors.New("Error 1452: Cannot add or update a child row: a foreign key constraint fails"), types.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tt.err), tt.want)
		})
	}

	plain := errors.New("connection refused")
	assert.Equal(t, plain, translate(plain))
	assert.Nil(t, translate(nil))
}
