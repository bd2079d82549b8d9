package handlers

import (
	"log/slog"
	"net/http"

	"go_memo_keep/internal/model"
	"go_memo_keep/internal/service"
	"go_memo_keep/internal/webutil"
)

type AuthHandler struct {
	service          service.AuthService
	logger           *slog.Logger
	testLoginEnabled bool
}

func NewAuthHandler(s service.AuthService, logger *slog.Logger, testLoginEnabled bool) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		service:          s,
		logger:           logger,
		testLoginEnabled: testLoginEnabled,
	}
}

// WechatLogin はミニプログラムのログインコードを openid に交換し、wx_ テナントを登録します
func (h *AuthHandler) WechatLogin(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "WechatLogin"))

	var req model.WechatLoginRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode login request body", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, invalidBody(err))
		return
	}
	if err := webutil.ValidateStruct(req); err != nil {
		logger.Warn("Validation failed for wechat login", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	tenant, err := h.service.WechatLogin(r.Context(), &req)
	if err != nil {
		// プロバイダのエラーはサービス層でログ出力済み
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("WeChat login successful", slog.String("identifier", tenant.Identifier))
	webutil.RespondWithData(w, http.StatusOK, "ログインに成功しました。", model.NewTenantResponse(tenant), logger)
}

// TestLogin は開発用に使い捨ての識別子を発行します。無効な環境では存在しないルートとして扱う。
func (h *AuthHandler) TestLogin(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "TestLogin"))

	if !h.testLoginEnabled {
		logger.Warn("Test login requested while disabled")
		NotFound(w, r)
		return
	}

	var req model.TestLoginRequest
	if err := webutil.DecodeOptionalJSONBody(r, &req); err != nil {
		webutil.HandleError(w, logger, invalidBody(err))
		return
	}
	if err := webutil.ValidateStruct(req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	tenant, err := h.service.TestLogin(r.Context(), &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithData(w, http.StatusOK, "テストログインに成功しました。", model.NewTenantResponse(tenant), logger)
}

// WechatConfig はWeChat設定の検査結果を返します。シークレットの値は返さない。
func (h *AuthHandler) WechatConfig(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "WechatConfig"))

	report := h.service.CheckConfig(r.Context())
	message := "WeChat設定は正常です。"
	if !report.Configured {
		message = "WeChat設定が不完全です。"
	}
	webutil.RespondWithData(w, http.StatusOK, message, report, logger)
}

// TestWechatAPI はダミーのコードでWeChat APIへの疎通と認証情報を確認します。
func (h *AuthHandler) TestWechatAPI(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "TestWechatAPI"))

	result := h.service.TestConnection(r.Context())
	if !result.Success {
		logger.Warn("WeChat API probe failed", slog.String("message", result.Message), slog.Int("provider_code", result.ProviderCode))
		webutil.RespondWithData(w, http.StatusBadRequest, result.Message, result, logger)
		return
	}
	webutil.RespondWithData(w, http.StatusOK, result.Message, result, logger)
}
