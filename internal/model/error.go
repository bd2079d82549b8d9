// internal/model/error.go
package model

import (
	"errors"
	"fmt"
	"strings"
)

// アプリケーション固有のエラー
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInternalServer     = errors.New("internal server error")
	ErrMissingIdentity    = errors.New("identity header missing")
	ErrInvalidIdentity    = errors.New("identity header invalid")
	ErrIdentityResolution = errors.New("identity resolution failed")
)

// 外部IDプロバイダ関連のエラー
// Rejected 系は終端エラーで自動リトライしない。Unavailable 系は通信・相手側の障害。
var (
	ErrProviderRejected    = errors.New("identity provider rejected the request")
	ErrProviderConfig      = fmt.Errorf("%w: invalid provider configuration", ErrProviderRejected)
	ErrProviderInvalidCode = fmt.Errorf("%w: invalid or expired code", ErrProviderRejected)
	ErrProviderRateLimited = fmt.Errorf("%w: rate limited", ErrProviderRejected)
	ErrProviderRiskBlocked = fmt.Errorf("%w: blocked as high risk", ErrProviderRejected)

	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrProviderTimeout     = fmt.Errorf("%w: timeout", ErrProviderUnavailable)
)

// ErrorDetail はクライアントに返すエラーの詳細
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// AppError はクライアント向けの情報と原因となったエラーをまとめたもの
type AppError struct {
	Detail ErrorDetail
	Err    error
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Detail: ErrorDetail{Code: code, Message: message, Field: field},
		Err:    err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Detail.Code, e.Detail.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Detail.Code, e.Detail.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ValidationError は違反したルールの一覧を保持します。
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ProviderError は外部IDプロバイダのエラーコードを分類済みの Kind と共に保持します。
// ProviderCode はログ用で、クライアントには返さない。
type ProviderError struct {
	Kind         error
	ProviderCode int
	Message      string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider error (code %d): %s", e.ProviderCode, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Kind
}
