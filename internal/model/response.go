package model

// APIResponse はすべてのAPIが返す共通のレスポンス形式 {code, message, data}
type APIResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorData はエラーレスポンスの data 部分
type ErrorData struct {
	Reason string   `json:"reason"`
	Field  string   `json:"field,omitempty"`
	Errors []string `json:"errors,omitempty"`
}
