// internal/webutil/response.go
package webutil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go_memo_keep/internal/model"

	"github.com/go-playground/validator/v10"
)

const internalErrorMessage = "サーバー内部でエラーが発生しました。"

// HandleError はエラーを解釈し、{code, message, data} 形式のエラーレスポンスを返します。
// 内部エラーの詳細はログにだけ出力し、クライアントには汎用メッセージを返します。
func HandleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	statusCode := MapErrorToStatusCode(err)

	var appErr *model.AppError
	var resp model.APIResponse

	if errors.As(err, &appErr) && !errors.Is(err, model.ErrInternalServer) {
		data := &model.ErrorData{Reason: appErr.Detail.Code, Field: appErr.Detail.Field}
		var vErr *model.ValidationError
		if errors.As(err, &vErr) {
			data.Errors = vErr.Violations
		}
		resp = model.APIResponse{Code: statusCode, Message: appErr.Detail.Message, Data: data}
	} else {
		logger.Error("Unhandled error", slog.Any("error", err))
		resp = model.APIResponse{
			Code:    statusCode,
			Message: internalErrorMessage,
			Data:    &model.ErrorData{Reason: "INTERNAL_SERVER_ERROR"},
		}
	}

	RespondWithJSON(w, statusCode, resp, logger)
}

// MapErrorToStatusCode はアプリケーションエラーをHTTPステータスコードにマッピングします
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, model.ErrMissingIdentity),
		errors.Is(err, model.ErrInvalidIdentity),
		errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrProviderInvalidCode):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrProviderRiskBlocked):
		return http.StatusForbidden
	case errors.Is(err, model.ErrProviderRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, model.ErrProviderTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, model.ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		// ProviderConfig / IdentityResolution / InternalServer など
		return http.StatusInternalServerError
	}
}

// RespondWithData は成功時のレスポンスを共通形式で返します。
func RespondWithData(w http.ResponseWriter, code int, message string, data any, logger *slog.Logger) {
	RespondWithJSON(w, code, model.APIResponse{Code: code, Message: message, Data: data}, logger)
}

// RespondWithJSON はJSONレスポンスを返します
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("Error marshaling JSON response", slog.Any("error", err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":500,"message":"レスポンス生成中にエラーが発生しました。","data":null}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// NewValidationErrorResponse はバリデーションエラーを日本語メッセージに翻訳し、
// 違反一覧を持つ AppError にまとめます。
func NewValidationErrorResponse(errs validator.ValidationErrors) *model.AppError {
	messages := TranslateValidationErrors(errs)
	field := ""
	if len(errs) > 0 {
		field = errs[0].Field()
	}
	msg := "入力内容に誤りがあります。"
	if len(messages) > 0 {
		msg = messages[0]
	}
	return model.NewAppError(
		"VALIDATION_ERROR",
		msg,
		field,
		&model.ValidationError{Violations: messages},
	)
}

// TranslateValidationErrors は各違反を日本語メッセージに変換します。
func TranslateValidationErrors(errs validator.ValidationErrors) []string {
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		messages = append(messages, fe.Translate(Trans))
	}
	return messages
}

// ValidateStruct は validator でリクエストDTOを検証し、違反があれば AppError を返します。
func ValidateStruct(s interface{}) error {
	err := Validator.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return NewValidationErrorResponse(validationErrors)
	}
	return err
}
