package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"go_memo_keep/internal/config"
	"go_memo_keep/internal/model"
	"go_memo_keep/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	gormDB, err := repository.NewDB(config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		URL:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	db, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Now().UTC()
	tenants := []model.Tenant{
		{Identifier: "h5_ok", Channel: model.ChannelH5, MemoCount: 1, LastActiveAt: now},
		{Identifier: "h5_stale", Channel: model.ChannelH5, MemoCount: 5, LastActiveAt: now},
		{Identifier: "app_missing", Channel: model.ChannelApp, MemoCount: 0, LastActiveAt: now},
	}
	require.NoError(t, gormDB.Create(&tenants).Error)
	memos := []model.Memo{
		{OwnerIdentifier: "h5_ok", Title: "a", Body: "a", CreatedAt: now, UpdatedAt: now},
		{OwnerIdentifier: "h5_stale", Title: "b", Body: "b", CreatedAt: now, UpdatedAt: now},
		{OwnerIdentifier: "app_missing", Title: "c", Body: "c", CreatedAt: now, UpdatedAt: now},
		{OwnerIdentifier: "app_missing", Title: "d", Body: "d", CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, gormDB.Create(&memos).Error)

	ctx := context.Background()
	want := []drift{
		{Identifier: "app_missing", Stored: 0, Actual: 2},
		{Identifier: "h5_stale", Stored: 5, Actual: 1},
	}

	t.Run("正常系: dry-run は更新しない", func(t *testing.T) {
		drifts, fixed, err := reconcile(ctx, db, true)
		require.NoError(t, err)
		assert.Equal(t, want, drifts)
		assert.Zero(t, fixed)
	})

	t.Run("正常系: ずれを修正する", func(t *testing.T) {
		drifts, fixed, err := reconcile(ctx, db, false)
		require.NoError(t, err)
		assert.Equal(t, want, drifts)
		assert.EqualValues(t, 2, fixed)

		var stale model.Tenant
		require.NoError(t, gormDB.First(&stale, "identifier = ?", "h5_stale").Error)
		assert.EqualValues(t, 1, stale.MemoCount)
	})

	t.Run("正常系: 2回目はずれなし", func(t *testing.T) {
		drifts, fixed, err := reconcile(ctx, db, false)
		require.NoError(t, err)
		assert.Empty(t, drifts)
		assert.Zero(t, fixed)
	})
}
