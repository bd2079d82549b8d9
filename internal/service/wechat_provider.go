package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go_memo_keep/internal/config"
	"go_memo_keep/internal/middleware"
	"go_memo_keep/internal/model"
)

// クライアントに返すメッセージ。WeChat のエラーコードそのものは返さない。
const (
	msgProviderNotConfigured = "WeChatのAppIDまたはAppSecretが設定されていません。"
	msgInvalidAppID          = "WeChatのAppIDが無効です。"
	msgInvalidSecret         = "WeChatのAppSecretが無効です。"
	msgInvalidCode           = "ログインコードが無効か、既に使用されています。"
	msgRateLimited           = "リクエストが多すぎます。しばらくしてから再度お試しください。"
	msgRiskBlocked           = "安全上の理由によりログインが制限されています。"
	msgProviderBusy          = "WeChatサーバーが混雑しています。しばらくしてから再度お試しください。"
	msgProviderFailed        = "WeChatログインに失敗しました。"
	msgProviderTimeout       = "WeChatサーバーへの接続がタイムアウトしました。"
)

const maxProviderResponseBytes = 1 << 20

// WechatProvider は WeChat ミニプログラムの jscode2session API を呼び出す実装です。
type WechatProvider struct {
	appID      string
	secret     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func NewWechatProvider(cfg config.WechatConfig) *WechatProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultWechatTimeout
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultWechatBaseURL
	}
	return &WechatProvider{
		appID:      cfg.AppID,
		secret:     cfg.Secret,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// jscode2sessionResponse は成功時と失敗時で共通のレスポンス形式
type jscode2sessionResponse struct {
	OpenID     string `json:"openid"`
	SessionKey string `json:"session_key"`
	UnionID    string `json:"unionid"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

// Exchange は code をサブジェクトIDとセッションキーに交換します。
// 設定が空ならネットワークに出ずに ErrProviderConfig を返す。呼び出しは timeout で打ち切る。
func (p *WechatProvider) Exchange(ctx context.Context, code string) (*model.ProviderSession, error) {
	logger := middleware.GetLogger(ctx)

	if p.appID == "" || p.secret == "" {
		logger.Error("WeChat provider is not configured", "has_app_id", p.appID != "", "has_secret", p.secret != "")
		return nil, &model.ProviderError{Kind: model.ErrProviderConfig, Message: msgProviderNotConfigured}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("appid", p.appID)
	params.Set("secret", p.secret)
	params.Set("js_code", code)
	params.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/sns/jscode2session?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("WechatProvider.Exchange: %w", err)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			logger.Error("WeChat API request timed out", "timeout", p.timeout)
			return nil, &model.ProviderError{Kind: model.ErrProviderTimeout, Message: msgProviderTimeout}
		}
		// url.Error には secret を含むURLが入るので原因だけを記録する
		logger.Error("WeChat API request failed", "error", unwrapURLError(err))
		return nil, &model.ProviderError{Kind: model.ErrProviderUnavailable, Message: msgProviderFailed}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("WeChat API returned unexpected status", "status", resp.StatusCode)
		return nil, &model.ProviderError{Kind: model.ErrProviderUnavailable, Message: msgProviderFailed}
	}

	var body jscode2sessionResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProviderResponseBytes)).Decode(&body); err != nil {
		if isTimeout(err) {
			return nil, &model.ProviderError{Kind: model.ErrProviderTimeout, Message: msgProviderTimeout}
		}
		logger.Error("Failed to decode WeChat API response", "error", err)
		return nil, &model.ProviderError{Kind: model.ErrProviderUnavailable, Message: msgProviderFailed}
	}

	if body.ErrCode != 0 {
		pErr := classifyProviderCode(body.ErrCode)
		logger.Warn("WeChat API rejected the code", "errcode", body.ErrCode, "errmsg", body.ErrMsg)
		return nil, pErr
	}
	if body.OpenID == "" {
		logger.Error("WeChat API response has no openid")
		return nil, &model.ProviderError{Kind: model.ErrProviderUnavailable, Message: msgProviderFailed}
	}

	logger.Info("WeChat code exchanged", "latency", time.Since(start), "has_unionid", body.UnionID != "")
	return &model.ProviderSession{
		Subject:      body.OpenID,
		SessionToken: body.SessionKey,
		UnionID:      body.UnionID,
	}, nil
}

// classifyProviderCode は WeChat の errcode をエラー分類に変換します。
func classifyProviderCode(errCode int) *model.ProviderError {
	pErr := &model.ProviderError{ProviderCode: errCode}
	switch errCode {
	case 40013:
		pErr.Kind, pErr.Message = model.ErrProviderConfig, msgInvalidAppID
	case 40125:
		pErr.Kind, pErr.Message = model.ErrProviderConfig, msgInvalidSecret
	case 40029, 40163:
		pErr.Kind, pErr.Message = model.ErrProviderInvalidCode, msgInvalidCode
	case 45011:
		pErr.Kind, pErr.Message = model.ErrProviderRateLimited, msgRateLimited
	case 40226:
		pErr.Kind, pErr.Message = model.ErrProviderRiskBlocked, msgRiskBlocked
	case -1:
		pErr.Kind, pErr.Message = model.ErrProviderUnavailable, msgProviderBusy
	default:
		pErr.Kind, pErr.Message = model.ErrProviderUnavailable, msgProviderFailed
	}
	return pErr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
