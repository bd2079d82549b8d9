package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go_memo_keep/internal/config"
	"go_memo_keep/internal/middleware"
	"go_memo_keep/internal/model"
	"go_memo_keep/internal/webutil"
)

// Pinger はヘルスチェックで疎通を確認する対象です。*sql.DB が満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ServiceInfo は GET / のレスポンス
type ServiceInfo struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	UserID    string            `json:"userId,omitempty"`
	Endpoints map[string]string `json:"endpoints"`
}

var endpointCatalogue = map[string]string{
	"health":        "GET /health",
	"wechatLogin":   "POST /api/auth/wechat-login",
	"testLogin":     "POST /api/auth/test-login",
	"wechatConfig":  "GET /api/auth/wechat-config",
	"testWechatAPI": "POST /api/auth/test-wechat-api",
	"register":      "POST /api/users/register",
	"profile":       "GET|PUT /api/users/profile",
	"stats":         "GET /api/users/stats",
	"memos":         "GET|POST /api/memos",
	"memo":          "GET|PUT|DELETE /api/memos/{id}",
}

type RootHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewRootHandler(db Pinger, logger *slog.Logger) *RootHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RootHandler{db: db, logger: logger}
}

// Index はサービス情報を返します。任意ゲートで識別子が束縛されていれば userId として返す。
func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Index"))

	info := ServiceInfo{
		Name:      config.AppName,
		Version:   config.AppVersion,
		Endpoints: endpointCatalogue,
	}
	if identifier, ok := middleware.IdentifierFromContext(r.Context()); ok {
		info.UserID = identifier
	}
	webutil.RespondWithData(w, http.StatusOK, "メモAPIは稼働中です。", info, logger)
}

// Health はDBへの疎通を確認します
func (h *RootHandler) Health(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Health"))

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.db == nil {
		webutil.RespondWithData(w, http.StatusServiceUnavailable, "データベースが設定されていません。", map[string]string{"database": "unconfigured"}, logger)
		return
	}
	if err := h.db.PingContext(ctx); err != nil {
		logger.Error("Health check failed", slog.Any("error", err))
		webutil.RespondWithData(w, http.StatusServiceUnavailable, "データベースに接続できません。", map[string]string{"database": "down"}, logger)
		return
	}
	webutil.RespondWithData(w, http.StatusOK, "OK", map[string]string{"database": "up"}, logger)
}

// NotFound は存在しないルートを共通形式の404で返します
func NotFound(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())
	appErr := model.NewAppError("ROUTE_NOT_FOUND", "指定されたAPIは存在しません。", "", model.ErrNotFound)
	webutil.HandleError(w, logger, appErr)
}

// MethodNotAllowed はルートはあるがメソッドが違う場合の405を返します
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())
	webutil.RespondWithJSON(w, http.StatusMethodNotAllowed, model.APIResponse{
		Code:    http.StatusMethodNotAllowed,
		Message: "このメソッドは許可されていません。",
		Data:    &model.ErrorData{Reason: "METHOD_NOT_ALLOWED"},
	}, logger)
}
