package webutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go_memo_keep/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"MissingIdentity", model.ErrMissingIdentity, http.StatusBadRequest},
		{"InvalidIdentity", model.ErrInvalidIdentity, http.StatusBadRequest},
		{"InvalidInput (wrapped)", fmt.Errorf("decode: %w", model.ErrInvalidInput), http.StatusBadRequest},
		{"ValidationError", &model.ValidationError{Violations: []string{"x"}}, http.StatusBadRequest},
		{"NotFound (AppError)", model.NewAppError("NOT_FOUND", "m", "", model.ErrNotFound), http.StatusNotFound},
		{"ProviderInvalidCode", &model.ProviderError{Kind: model.ErrProviderInvalidCode, ProviderCode: 40029}, http.StatusBadRequest},
		{"ProviderRiskBlocked", &model.ProviderError{Kind: model.ErrProviderRiskBlocked, ProviderCode: 40226}, http.StatusForbidden},
		{"ProviderRateLimited", &model.ProviderError{Kind: model.ErrProviderRateLimited, ProviderCode: 45011}, http.StatusTooManyRequests},
		{"ProviderTimeout", model.ErrProviderTimeout, http.StatusGatewayTimeout},
		{"ProviderUnavailable", model.ErrProviderUnavailable, http.StatusBadGateway},
		{"ProviderConfig", &model.ProviderError{Kind: model.ErrProviderConfig, ProviderCode: 40013}, http.StatusInternalServerError},
		{"IdentityResolution", model.ErrIdentityResolution, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (model.APIResponse, model.ErrorData) {
	t.Helper()
	var raw struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	var data model.ErrorData
	if len(raw.Data) > 0 && string(raw.Data) != "null" {
		require.NoError(t, json.Unmarshal(raw.Data, &data))
	}
	return model.APIResponse{Code: raw.Code, Message: raw.Message}, data
}

func TestHandleError(t *testing.T) {
	t.Run("正常系: AppError はメッセージと理由を返す", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleError(rec, nil, model.NewAppError("MISSING_IDENTITY", "ユーザーIDが必要です。", "", model.ErrMissingIdentity))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env, data := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusBadRequest, env.Code)
		assert.Equal(t, "ユーザーIDが必要です。", env.Message)
		assert.Equal(t, "MISSING_IDENTITY", data.Reason)
	})

	t.Run("正常系: ValidationError は違反一覧を data.errors に入れる", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := model.NewAppError("VALIDATION_ERROR", "入力内容に誤りがあります。", "",
			&model.ValidationError{Violations: []string{"a", "b"}})
		HandleError(rec, nil, err)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		_, data := decodeEnvelope(t, rec)
		assert.Equal(t, []string{"a", "b"}, data.Errors)
	})

	t.Run("異常系: 内部エラーの詳細はクライアントに返さない", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleError(rec, nil, fmt.Errorf("gormMemoRepository.Create: %w", errors.New("dial tcp 10.0.0.1:5432: connection refused")))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "10.0.0.1")
		env, data := decodeEnvelope(t, rec)
		assert.Equal(t, internalErrorMessage, env.Message)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", data.Reason)
	})

	t.Run("異常系: ErrInternalServer を包んだ AppError も汎用メッセージ", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleError(rec, nil, model.NewAppError("INTERNAL_SERVER_ERROR", "secret detail", "", model.ErrInternalServer))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret detail")
	})
}

func TestValidateStruct(t *testing.T) {
	type req struct {
		Title    string `json:"title" validate:"required,max=50"`
		Body     string `json:"body" validate:"required,max=1000"`
		UserType string `json:"userType" validate:"omitempty,oneof=wx h5"`
	}

	t.Run("正常系: 違反なし", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(req{Title: "t", Body: "b"}))
	})

	t.Run("異常系: 複数の違反を日本語で返す", func(t *testing.T) {
		err := ValidateStruct(req{Title: strings.Repeat("あ", 51), Body: "", UserType: "web"})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)

		var vErr *model.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, []string{
			"タイトルは50文字以下で入力してください。",
			"本文は必須項目です。",
			"ユーザー種別は[wx h5]のいずれかで指定してください。",
		}, vErr.Violations)
	})

	t.Run("正常系: 文字数はコードポイントで数える", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(req{Title: strings.Repeat("あ", 50), Body: "b"}))
	})
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"0", "-1", "abc", "1.5", ""} {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, model.ErrInvalidInput, raw)
	}
}
