package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"go_memo_keep/internal/metrics"
	"go_memo_keep/internal/model"
	"go_memo_keep/internal/webutil"
)

// TenantRegistrar は識別子からテナントを自動登録 (upsert) する機能です。
// service.TenantService がこれを満たす。
type TenantRegistrar interface {
	AutoRegister(ctx context.Context, identifier string, hints *model.ProfileHints) (*model.Tenant, error)
}

// IdentityGate はクライアントが名乗る識別子ヘッダーを検証し、テナントを解決するミドルウェアです。
type IdentityGate struct {
	registrar TenantRegistrar
	header    string
	metrics   *metrics.Metrics
}

func NewIdentityGate(registrar TenantRegistrar, header string, m *metrics.Metrics) *IdentityGate {
	if header == "" {
		header = "User-Id"
	}
	return &IdentityGate{registrar: registrar, header: header, metrics: m}
}

// Require は識別子が必須のエンドポイント用です。
// ヘッダーなし、形式不正、テナント解決失敗はストアに触れる前にエラーレスポンスを返す。
func (g *IdentityGate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLogger(r.Context())

		identifier := r.Header.Get(g.header)
		if identifier == "" {
			logger.Warn("Identity gate rejected: header missing", slog.String("header", g.header))
			g.metrics.ObserveGate("required", metrics.GateMissing)
			appErr := model.NewAppError("MISSING_IDENTITY", "リクエストヘッダーにユーザーID ("+g.header+") が必要です。", g.header, model.ErrMissingIdentity)
			webutil.HandleError(w, logger, appErr)
			return
		}

		if !model.IsValidIdentifier(identifier) {
			logger.Warn("Identity gate rejected: invalid identifier", slog.String("identifier", identifier))
			g.metrics.ObserveGate("required", metrics.GateInvalid)
			appErr := model.NewAppError("INVALID_IDENTITY", "ユーザーIDの形式が正しくありません。", g.header, model.ErrInvalidIdentity)
			webutil.HandleError(w, logger, appErr)
			return
		}

		if _, err := g.registrar.AutoRegister(r.Context(), identifier, nil); err != nil {
			logger.Error("Identity gate failed to resolve tenant", slog.String("identifier", identifier), slog.Any("error", err))
			g.metrics.ObserveGate("required", metrics.GateResolutionFailed)
			appErr := model.NewAppError("IDENTITY_RESOLUTION_FAILED", "ユーザー情報の確認に失敗しました。", "", model.ErrIdentityResolution)
			webutil.HandleError(w, logger, appErr)
			return
		}

		g.metrics.ObserveGate("required", metrics.GateBound)
		next.ServeHTTP(w, r.WithContext(bindIdentifier(r.Context(), identifier)))
	})
}

// Optional は識別子があれば利用するエンドポイント用です。
// ヘッダーなしや検証失敗は握りつぶし、識別子なしで処理を続ける。
func (g *IdentityGate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLogger(r.Context())

		identifier := r.Header.Get(g.header)
		if identifier == "" || !model.IsValidIdentifier(identifier) {
			g.metrics.ObserveGate("optional", metrics.GateSkipped)
			next.ServeHTTP(w, r)
			return
		}

		if _, err := g.registrar.AutoRegister(r.Context(), identifier, nil); err != nil {
			logger.Warn("Optional identity resolution failed, continuing without identity",
				slog.String("identifier", identifier), slog.Any("error", err))
			g.metrics.ObserveGate("optional", metrics.GateResolutionFailed)
			next.ServeHTTP(w, r)
			return
		}

		g.metrics.ObserveGate("optional", metrics.GateBound)
		next.ServeHTTP(w, r.WithContext(bindIdentifier(r.Context(), identifier)))
	})
}

func bindIdentifier(ctx context.Context, identifier string) context.Context {
	recordIdentifier(ctx, identifier)
	ctx = WithLogger(ctx, GetLogger(ctx).With(slog.String("identifier", identifier)))
	return context.WithValue(ctx, model.IdentifierKey, identifier)
}

// IdentifierFromContext はゲートが束縛した識別子を返します。
func IdentifierFromContext(ctx context.Context) (string, bool) {
	identifier, ok := ctx.Value(model.IdentifierKey).(string)
	return identifier, ok && identifier != ""
}

// GetIdentifierFromContext は識別子を取得し、無ければ内部エラーを返します。
// Require を通ったルートでしか呼ばない前提。
func GetIdentifierFromContext(ctx context.Context) (string, error) {
	identifier, ok := IdentifierFromContext(ctx)
	if !ok {
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "コンテキストからユーザー情報を取得できませんでした。", "", model.ErrInternalServer)
	}
	return identifier, nil
}
