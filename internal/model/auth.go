package model

// WechatLoginRequest はWeChatミニプログラムログインAPIのリクエストボディ
type WechatLoginRequest struct {
	Code      string  `json:"code" validate:"required,min=10"`
	Nickname  *string `json:"nickname" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,max=500"`
}

// TestLoginRequest は開発用テストログインのリクエストボディ
type TestLoginRequest struct {
	UserType  string  `json:"userType" validate:"omitempty,oneof=wx h5 app other"`
	Nickname  *string `json:"nickname" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,max=500"`
}

// ProviderSession は外部IDプロバイダとの code 交換結果
type ProviderSession struct {
	Subject      string `json:"openid"`
	SessionToken string `json:"session_key"`
	UnionID      string `json:"unionid,omitempty"`
}

// ProviderConfigReport はWeChat設定の検査結果。シークレットの値は含めない。
type ProviderConfigReport struct {
	Configured bool     `json:"configured"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
	HasAppID   bool     `json:"hasAppId"`
	HasSecret  bool     `json:"hasSecret"`
}

// ProviderProbeResult はWeChat API疎通テストの結果
type ProviderProbeResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ProviderCode int    `json:"-"` // ログ用。クライアントには返さない
}
