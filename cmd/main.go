// cmd/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go_memo_keep/internal/config"
	"go_memo_keep/internal/handlers"
	"go_memo_keep/internal/metrics"
	"go_memo_keep/internal/repository"
	"go_memo_keep/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configDir := flag.String("config", "configs", "config.yaml を置いたディレクトリ")
	flag.Parse()

	// 設定ファイル読み込み用の一時的なロガー
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	if err := config.LoadConfig(*configDir); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := config.NewLogger(config.Cfg.Log)
	slog.SetDefault(logger)
	slog.Info("Application starting...", slog.String("version", config.AppVersion))

	// 1. データベース接続 (GORM)
	db, err := repository.NewDB(config.Cfg.Database, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	// 2. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(sqlDB, config.Cfg.Database.Driver),
	)
	var m *metrics.Metrics
	if config.Cfg.Metrics.Enabled {
		m = metrics.New(registry, config.Cfg.Metrics.Namespace)
	}

	// 3. 依存関係の注入
	tenantRepo := repository.NewGormTenantRepository()
	memoRepo := repository.NewGormMemoRepository()

	tenantService := service.NewTenantService(db, tenantRepo)
	memoService := service.NewMemoService(db, memoRepo, tenantRepo, m)
	provider := service.NewIdentityProvider(config.Cfg.Wechat)
	authService := service.NewAuthService(tenantService, provider, config.Cfg.Wechat, m)

	if report := authService.CheckConfig(context.Background()); !report.Configured {
		slog.Warn("WeChat login is not configured", slog.Any("errors", report.Errors))
	}

	// 4. ルーター
	r := handlers.NewRouter(handlers.RouterDeps{
		Config:        config.Cfg,
		Logger:        logger,
		DB:            sqlDB,
		TenantService: tenantService,
		MemoService:   memoService,
		AuthService:   authService,
		Metrics:       m,
		Gatherer:      registry,
	})

	// 5. サーバー起動
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
