// cmd/migrate は tenants / memos テーブルを作成・更新します。
package main

import (
	"flag"
	"log/slog"
	"os"

	"go_memo_keep/internal/config"
	"go_memo_keep/internal/repository"
)

func main() {
	configDir := flag.String("config", "configs", "config.yaml を置いたディレクトリ")
	flag.Parse()

	if err := config.LoadConfig(*configDir); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := config.NewLogger(config.Cfg.Log)
	slog.SetDefault(logger)

	// NewDB 側の自動マイグレーションは使わず、ここで明示的に実行する
	dbCfg := config.Cfg.Database
	dbCfg.AutoMigrate = false

	db, err := repository.NewDB(dbCfg, logger)
	if err != nil {
		logger.Error("Failed to connect database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		logger.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Migration completed", slog.String("driver", dbCfg.Driver))
}
