package service

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go_memo_keep/internal/config"
	"go_memo_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// setupTestDB はテストごとに独立したインメモリSQLiteを作成します。
// 接続は1本に制限するので、トランザクション内では必ず tx を使うこと。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.NewDB(config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		URL:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to connect database for testing: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// fakeClock は呼ぶたびに step だけ進む時計
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock(start time.Time, step time.Duration) *fakeClock {
	return &fakeClock{now: start, step: step}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
