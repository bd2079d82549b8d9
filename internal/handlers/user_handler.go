// internal/handlers/user_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_memo_keep/internal/middleware"
	"go_memo_keep/internal/model"
	"go_memo_keep/internal/service"
	"go_memo_keep/internal/webutil"
)

type UserHandler struct {
	service service.TenantService
	logger  *slog.Logger
}

func NewUserHandler(s service.TenantService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		service: s,
		logger:  logger,
	}
}

// Register はプロフィール情報を添えてテナントを自動登録するハンドラ。
// 省略した項目は既存の値を残す。
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Register"))

	identifier, err := middleware.GetIdentifierFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.ProfileRequest
	if err := webutil.DecodeOptionalJSONBody(r, &req); err != nil {
		webutil.HandleError(w, logger, invalidBody(err))
		return
	}
	if err := webutil.ValidateStruct(req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	tenant, err := h.service.AutoRegister(r.Context(), identifier, req.Hints())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithData(w, http.StatusOK, "ユーザー登録に成功しました。", model.NewTenantResponse(tenant), logger)
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetProfile"))

	identifier, err := middleware.GetIdentifierFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	tenant, err := h.service.FindByIdentifier(r.Context(), identifier)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithData(w, http.StatusOK, "取得に成功しました。", model.NewTenantResponse(tenant), logger)
}

// PutProfile は表示名とアバターを上書きするハンドラ。少なくとも一項目が必要。
func (h *UserHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutProfile"))

	identifier, err := middleware.GetIdentifierFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.ProfileRequest
	if err := webutil.DecodeOptionalJSONBody(r, &req); err != nil {
		webutil.HandleError(w, logger, invalidBody(err))
		return
	}
	if req.Nickname == nil && req.AvatarURL == nil {
		logger.Warn("Profile update without fields")
		webutil.HandleError(w, logger, model.NewAppError("NO_PROFILE_FIELDS", "更新する項目を少なくとも一つ指定してください。", "", model.ErrInvalidInput))
		return
	}
	if err := webutil.ValidateStruct(req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	tenant, err := h.service.UpdateProfile(r.Context(), identifier, &model.ProfileUpdate{
		DisplayName:     req.Nickname,
		AvatarReference: req.AvatarURL,
	})
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithData(w, http.StatusOK, "更新に成功しました。", model.NewTenantResponse(tenant), logger)
}

func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetStats"))

	identifier, err := middleware.GetIdentifierFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	stats, err := h.service.ComputeStats(r.Context(), identifier)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithData(w, http.StatusOK, "取得に成功しました。", stats, logger)
}
