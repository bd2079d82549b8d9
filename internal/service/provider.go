//go:generate mockery --name IdentityProvider --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"log/slog"
	"strings"

	"go_memo_keep/internal/config"
	"go_memo_keep/internal/middleware"
	"go_memo_keep/internal/model"

	"github.com/google/uuid"
)

// IdentityProvider は外部IDプロバイダでログインコードを安定したサブジェクトIDに交換します。
// 失敗は *model.ProviderError で返し、Kind で分類する。
type IdentityProvider interface {
	Exchange(ctx context.Context, code string) (*model.ProviderSession, error)
}

// --- StubProvider ---
// 外部に接続しない開発用の実装。同じコードからは同じサブジェクトを返す。
// "invalid" で始まるコードは無効なコードとして拒否する。
type StubProvider struct{}

func (p *StubProvider) Exchange(ctx context.Context, code string) (*model.ProviderSession, error) {
	logger := middleware.GetLogger(ctx)
	if strings.HasPrefix(code, "invalid") {
		logger.Info("--- Rejecting code (StubProvider) ---")
		return nil, &model.ProviderError{Kind: model.ErrProviderInvalidCode, ProviderCode: 40029, Message: msgInvalidCode}
	}
	subject := "stub_" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(code)).String()[:8]
	logger.Info("--- Exchanging code (StubProvider) ---", "subject", subject)
	return &model.ProviderSession{Subject: subject, SessionToken: uuid.NewString()}, nil
}

// --- NewIdentityProvider ファクトリ関数 ---
func NewIdentityProvider(cfg config.WechatConfig) IdentityProvider {
	logger := slog.Default()
	switch cfg.Provider {
	case config.ProviderWechat:
		logger.Info("Initializing WeChat identity provider...", "base_url", cfg.BaseURL)
		return NewWechatProvider(cfg)
	case config.ProviderStub:
		logger.Info("Initializing stub identity provider...")
		return &StubProvider{}
	default:
		logger.Warn("Unknown identity provider type, defaulting to WeChat", "type", cfg.Provider)
		return NewWechatProvider(cfg)
	}
}
