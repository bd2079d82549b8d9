package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go_memo_keep/internal/config"
	"go_memo_keep/internal/metrics"
	"go_memo_keep/internal/middleware"
	"go_memo_keep/internal/model"

	"github.com/google/uuid"
)

// probeCode は疎通テストで使う意図的に無効なコード
const probeCode = "invalid_code_for_connection_test"

// AuthService は外部IDプロバイダ経由のログインと、その設定確認を扱います。
type AuthService interface {
	WechatLogin(ctx context.Context, req *model.WechatLoginRequest) (*model.Tenant, error)
	TestLogin(ctx context.Context, req *model.TestLoginRequest) (*model.Tenant, error)
	CheckConfig(ctx context.Context) *model.ProviderConfigReport
	TestConnection(ctx context.Context) *model.ProviderProbeResult
}

type authService struct {
	tenantService TenantService
	provider      IdentityProvider
	cfg           config.WechatConfig
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewAuthService は AuthService の新しいインスタンスを生成します
func NewAuthService(tenantService TenantService, provider IdentityProvider, cfg config.WechatConfig, m *metrics.Metrics) AuthService {
	return &authService{
		tenantService: tenantService,
		provider:      provider,
		cfg:           cfg,
		metrics:       m,
		now:           utcNow,
	}
}

// WechatLogin は code をプロバイダで交換し、"wx_" + openid のテナントを自動登録します。
// プロバイダの失敗とテナント登録の失敗は別のエラーとして返す。無効なコードはリトライしない。
func (s *authService) WechatLogin(ctx context.Context, req *model.WechatLoginRequest) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)

	session, err := s.provider.Exchange(ctx, req.Code)
	s.metrics.ObserveProviderExchange(providerOutcome(err))
	if err != nil {
		logger.Warn("WeChat login failed at provider exchange", "error", err)
		return nil, providerAppError(err)
	}

	identifier := "wx_" + session.Subject
	hints := &model.ProfileHints{
		DisplayName:          req.Nickname,
		AvatarReference:      req.AvatarURL,
		ExternalSubject:      &session.Subject,
		ExternalSessionToken: &session.SessionToken,
	}
	tenant, err := s.tenantService.AutoRegister(ctx, identifier, hints)
	if err != nil {
		logger.Error("WeChat login failed at tenant registration", "identifier", identifier, "error", err)
		return nil, err
	}

	logger.Info("WeChat login succeeded", "identifier", identifier)
	return tenant, nil
}

// TestLogin は開発用に "<userType>_test_<unixMillis>_<rand8>" のテナントを作成します。
func (s *authService) TestLogin(ctx context.Context, req *model.TestLoginRequest) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)

	userType := req.UserType
	if userType == "" {
		userType = model.ChannelH5
	}
	if !model.IsKnownChannel(userType) {
		return nil, model.NewAppError("INVALID_USER_TYPE", "ユーザー種別が正しくありません。", "userType", model.ErrInvalidInput)
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	identifier := fmt.Sprintf("%s_test_%d_%s", userType, s.now().UnixMilli(), suffix)

	tenant, err := s.tenantService.AutoRegister(ctx, identifier, &model.ProfileHints{
		DisplayName:     req.Nickname,
		AvatarReference: req.AvatarURL,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Test login succeeded", "identifier", identifier)
	return tenant, nil
}

// CheckConfig は AppID / AppSecret の有無と形式を検査します。値そのものは返さない。
func (s *authService) CheckConfig(ctx context.Context) *model.ProviderConfigReport {
	report := &model.ProviderConfigReport{
		Errors:    []string{},
		Warnings:  []string{},
		HasAppID:  s.cfg.AppID != "",
		HasSecret: s.cfg.Secret != "",
	}

	if !report.HasAppID {
		report.Errors = append(report.Errors, "WeChatのAppIDが設定されていません。")
	} else if !strings.HasPrefix(s.cfg.AppID, "wx") || len(s.cfg.AppID) != 18 {
		report.Warnings = append(report.Warnings, "AppIDの形式が正しくない可能性があります (wxで始まる18文字)。")
	}

	if !report.HasSecret {
		report.Errors = append(report.Errors, "WeChatのAppSecretが設定されていません。")
	} else if len(s.cfg.Secret) != 32 {
		report.Warnings = append(report.Warnings, "AppSecretの長さが正しくない可能性があります (通常32文字)。")
	}

	report.Configured = len(report.Errors) == 0
	return report
}

// TestConnection は無効なコードでプロバイダを呼び出し、設定と疎通を確認します。
// 無効なコードとして拒否されれば認証情報は受け付けられている。
func (s *authService) TestConnection(ctx context.Context) *model.ProviderProbeResult {
	logger := middleware.GetLogger(ctx)

	if report := s.CheckConfig(ctx); !report.Configured {
		return &model.ProviderProbeResult{Success: false, Message: "WeChatの設定が不完全です。"}
	}

	_, err := s.provider.Exchange(ctx, probeCode)
	var pErr *model.ProviderError
	errors.As(err, &pErr)

	switch {
	case err == nil, errors.Is(err, model.ErrProviderInvalidCode):
		return &model.ProviderProbeResult{Success: true, Message: "WeChat APIへの接続は正常で、設定も有効です。"}
	case errors.Is(err, model.ErrProviderRejected):
		logger.Warn("WeChat API probe rejected", "error", err)
		result := &model.ProviderProbeResult{Success: false, Message: "WeChat APIの設定に誤りがあります。"}
		if pErr != nil {
			result.ProviderCode = pErr.ProviderCode
			result.Message += " " + pErr.Message
		}
		return result
	case pErr != nil && pErr.ProviderCode != 0:
		// 応答はあったがエラーコードが返った
		logger.Warn("WeChat API probe returned an error code", "error", err)
		return &model.ProviderProbeResult{Success: false, Message: "WeChat APIの設定に誤りがあります。 " + pErr.Message, ProviderCode: pErr.ProviderCode}
	default:
		logger.Warn("WeChat API probe could not reach provider", "error", err)
		return &model.ProviderProbeResult{Success: false, Message: "WeChat APIに接続できません。"}
	}
}

// providerAppError はプロバイダのエラーをクライアント向けの AppError に変換します。
func providerAppError(err error) *model.AppError {
	var pErr *model.ProviderError
	if !errors.As(err, &pErr) {
		pErr = &model.ProviderError{Kind: model.ErrProviderUnavailable, Message: msgProviderFailed}
		err = fmt.Errorf("%w: %w", model.ErrProviderUnavailable, err)
	}

	var code string
	switch {
	case errors.Is(err, model.ErrProviderConfig):
		code = "PROVIDER_CONFIG_ERROR"
	case errors.Is(err, model.ErrProviderInvalidCode):
		code = "INVALID_LOGIN_CODE"
	case errors.Is(err, model.ErrProviderRateLimited):
		code = "PROVIDER_RATE_LIMITED"
	case errors.Is(err, model.ErrProviderRiskBlocked):
		code = "PROVIDER_RISK_BLOCKED"
	case errors.Is(err, model.ErrProviderTimeout):
		code = "PROVIDER_TIMEOUT"
	default:
		code = "PROVIDER_UNAVAILABLE"
	}
	return model.NewAppError(code, pErr.Message, "", err)
}

func providerOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrProviderConfig):
		return "config_error"
	case errors.Is(err, model.ErrProviderInvalidCode):
		return "invalid_code"
	case errors.Is(err, model.ErrProviderRateLimited):
		return "rate_limited"
	case errors.Is(err, model.ErrProviderRiskBlocked):
		return "risk_blocked"
	case errors.Is(err, model.ErrProviderTimeout):
		return "timeout"
	default:
		return "unavailable"
	}
}
