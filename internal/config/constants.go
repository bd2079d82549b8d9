// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "memo_keep"
	AppVersion = "2.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort     = ":8080"
	DefaultLogLevel       = "info"
	DefaultDatabaseDriver = DriverPostgres
	DefaultIdentityHeader = "User-Id"
	DefaultWechatBaseURL  = "https://api.weixin.qq.com"
	DefaultWechatTimeout  = 10 * time.Second
)

// データベースドライバ
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// IDプロバイダ
const (
	ProviderWechat = "wechat"
	ProviderStub   = "stub"
)
