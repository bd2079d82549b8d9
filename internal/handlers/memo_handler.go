// internal/handlers/memo_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_memo_keep/internal/middleware"
	"go_memo_keep/internal/model"
	"go_memo_keep/internal/service"
	"go_memo_keep/internal/webutil"

	"github.com/go-chi/chi/v5"
)

type MemoHandler struct {
	service service.MemoService
	logger  *slog.Logger
}

func NewMemoHandler(s service.MemoService, logger *slog.Logger) *MemoHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoHandler{
		service: s,
		logger:  logger,
	}
}

// memoIDFromRequest は URL の {id} を正の整数として取り出します。
func memoIDFromRequest(r *http.Request) (int64, error) {
	id, err := webutil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		return 0, model.NewAppError("INVALID_MEMO_ID", "メモIDが正しくありません。", "id", err)
	}
	return id, nil
}

// GetMemos はメモの一覧を更新日時の新しい順で返すハンドラ
func (h *MemoHandler) GetMemos(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetMemos"))

	owner, err := middleware.GetIdentifierFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	memos, err := h.service.List(r.Context(), owner)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithData(w, http.StatusOK, "取得に成功しました。", memos, logger)
}

// GetMemo は指定されたメモを返すハンドラ
func (h *MemoHandler) GetMemo(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetMemo"))

	owner, err := middleware.GetIdentifierFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	id, err := memoIDFromRequest(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	memo, err := h.service.GetByID(r.Context(), id, owner)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithData(w, http.StatusOK, "取得に成功しました。", memo, logger)
}

// PostMemo はメモを作成するハンドラ
func (h *MemoHandler) PostMemo(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostMemo"))

	owner, err := middleware.GetIdentifierFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.MemoRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, invalidBody(err))
		return
	}

	memo, err := h.service.Create(r.Context(), owner, req.Title, req.Body, req.Options())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithData(w, http.StatusCreated, "作成に成功しました。", memo, logger)
}

// PutMemo はメモを更新するハンドラ。title と body は毎回必須。
func (h *MemoHandler) PutMemo(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutMemo"))

	owner, err := middleware.GetIdentifierFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	id, err := memoIDFromRequest(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.MemoRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, invalidBody(err))
		return
	}

	memo, err := h.service.Update(r.Context(), id, owner, req.Title, req.Body, req.Options())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithData(w, http.StatusOK, "更新に成功しました。", memo, logger)
}

// DeleteMemo はメモを削除するハンドラ
func (h *MemoHandler) DeleteMemo(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteMemo"))

	owner, err := middleware.GetIdentifierFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	id, err := memoIDFromRequest(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	deleted, err := h.service.Delete(r.Context(), id, owner)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if !deleted {
		webutil.HandleError(w, logger, model.NewAppError("MEMO_NOT_FOUND", "メモが見つかりません。", "id", model.ErrNotFound))
		return
	}

	webutil.RespondWithData(w, http.StatusOK, "削除に成功しました。", nil, logger)
}

func invalidBody(err error) *model.AppError {
	return model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", err)
}
