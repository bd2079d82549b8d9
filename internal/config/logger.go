package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLevel は設定ファイルのログレベル文字列を slog.Level に変換します。不明な値は Info。
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// NewLogger は APP_ENV=dev なら tint、それ以外は JSON のロガーを返します。
func NewLogger(cfg LogConfig) *slog.Logger {
	logLevel := new(slog.LevelVar)
	level, ok := ParseLevel(cfg.Level)
	logLevel.Set(level)

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
	}
	logger := slog.New(handler)
	if !ok {
		logger.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", cfg.Level))
	}
	logger.Debug("Logger initialized", slog.String("APP_ENV", appEnv))
	return logger
}
