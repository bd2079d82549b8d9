// internal/config/config.go
package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Wechat   WechatConfig   `mapstructure:"wechat"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres | mysql | sqlite
	URL             string        `mapstructure:"url"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type AuthConfig struct {
	IdentityHeader   string `mapstructure:"identity_header"`
	TestLoginEnabled bool   `mapstructure:"test_login_enabled"`
}

type WechatConfig struct {
	Provider string        `mapstructure:"provider"` // wechat | stub
	AppID    string        `mapstructure:"app_id"`
	Secret   string        `mapstructure:"secret"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

var Cfg Config

// Default はファイルや環境変数を読まずにデフォルト値だけの Config を返します (テスト用)。
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Printf("Error unmarshalling default config: %s\n", err)
	}
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultServerPort)

	v.SetDefault("database.driver", DefaultDatabaseDriver)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("log.level", DefaultLogLevel)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization", DefaultIdentityHeader})
	v.SetDefault("cors.exposed_headers", []string{"X-Request-Id"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("auth.identity_header", DefaultIdentityHeader)
	v.SetDefault("auth.test_login_enabled", false)

	v.SetDefault("wechat.provider", ProviderWechat)
	v.SetDefault("wechat.app_id", "")
	v.SetDefault("wechat.secret", "")
	v.SetDefault("wechat.base_url", DefaultWechatBaseURL)
	v.SetDefault("wechat.timeout", DefaultWechatTimeout)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "memo_keep")
}

func LoadConfig(path string) error {
	// .env があれば環境変数として読み込む (既存の環境変数は上書きしない)
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: failed to load .env file: %s\n", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	setDefaults(v)

	// APP_DATABASE_URL のように接頭辞をつけた環境変数で上書きできる
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 従来から使われている環境変数名も紐付ける
	v.BindEnv("server.port", "APP_SERVER_PORT", "PORT")
	v.BindEnv("database.url", "APP_DATABASE_URL", "DATABASE_URL")
	v.BindEnv("wechat.app_id", "APP_WECHAT_APP_ID", "WECHAT_APPID")
	v.BindEnv("wechat.secret", "APP_WECHAT_SECRET", "WECHAT_SECRET")
	v.BindEnv("auth.identity_header", "APP_AUTH_IDENTITY_HEADER", "AUTH_IDENTITY_HEADER")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	if err := v.Unmarshal(&Cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	Cfg.Server.Port = normalizePort(Cfg.Server.Port)
	if Cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Database Driver: %s", Cfg.Database.Driver)
	log.Printf("Identity Header: %s", Cfg.Auth.IdentityHeader)
	log.Printf("Wechat Provider: %s (app id set: %t)", Cfg.Wechat.Provider, Cfg.Wechat.AppID != "")
	log.Printf("Test Login Enabled: %t", Cfg.Auth.TestLoginEnabled)

	return nil
}

// normalizePort は "8080" のような数字だけの指定を ":8080" に揃えます。
func normalizePort(port string) string {
	if port == "" {
		return DefaultServerPort
	}
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
