package repository

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go_memo_keep/internal/config"
	"go_memo_keep/internal/model"

	slogGorm "github.com/orandin/slog-gorm" // slogGormはエイリアス
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB は設定されたドライバでDBに接続し、コネクションプールを設定します。
func NewDB(cfg config.DatabaseConfig, appLogger *slog.Logger) (*gorm.DB, error) {
	if appLogger == nil {
		appLogger = slog.Default()
	}

	// APP_ENV=dev のときはすべてのSQLを出す
	var gormLogLevel gormlogger.LogLevel
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		gormLogLevel = gormlogger.Info
	} else {
		gormLogLevel = gormlogger.Warn
	}

	slogGormLogger := slogGorm.New(
		slogGorm.WithHandler(appLogger.Handler()),
		slogGorm.WithTraceAll(),
		slogGorm.WithSlowThreshold(500*time.Millisecond),
	)

	dialector, err := newDialector(cfg.Driver, cfg.URL)
	if err != nil {
		appLogger.Error("Unsupported database driver", slog.String("driver", cfg.Driver))
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  slogGormLogger.LogMode(gormLogLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		appLogger.Error("Failed to connect to database with GORM", slog.String("driver", cfg.Driver), slog.Any("error", err))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		return nil, err
	}

	if err = sqlDB.Ping(); err != nil {
		appLogger.Error("Error pinging database", slog.Any("error", err))
		sqlDB.Close()
		return nil, err
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	appLogger.Info("Database connection established with GORM", slog.String("driver", cfg.Driver))

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			appLogger.Error("Auto migration failed", slog.Any("error", err))
			sqlDB.Close()
			return nil, err
		}
		appLogger.Info("Auto migration completed")
	}

	return db, nil
}

func newDialector(driver, url string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case config.DriverPostgres, "":
		return postgres.Open(url), nil
	case config.DriverMySQL:
		// datetime をマイクロ秒で持つ (既定は秒)
		precision := 6
		return mysql.New(mysql.Config{DSN: url, DefaultDatetimePrecision: &precision}), nil
	case config.DriverSQLite:
		return sqlite.Open(url), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate はこのサービスが所有するテーブル (tenants, memos) を作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Tenant{}, &model.Memo{}); err != nil {
		return fmt.Errorf("repository.Migrate: %w", err)
	}
	return nil
}
