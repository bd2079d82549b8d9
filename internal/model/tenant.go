package model

import (
	"time"
)

// Tenant はクライアントが名乗る識別子ごとに自動作成される利用者レコード
type Tenant struct {
	Identifier string `gorm:"primaryKey;size:100" json:"userId"`
	// Channel は作成時に一度だけ書き込まれる運用向けの列。API では常に Identifier から導出する。
	Channel              string    `gorm:"size:16;not null;index" json:"-"`
	DisplayName          *string   `gorm:"size:100" json:"nickname"`
	AvatarReference      *string   `gorm:"size:500" json:"avatarUrl"`
	ExternalSubject      *string   `gorm:"size:100;index" json:"openid"`
	ExternalSessionToken *string   `gorm:"size:100" json:"-"`
	MemoCount            int64     `gorm:"not null" json:"memoCount"`
	LastActiveAt         time.Time `gorm:"not null" json:"lastActiveAt"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// ProfileHints は autoRegister に渡すプロフィール情報。nil と空文字のフィールドは既存値を上書きしない。
type ProfileHints struct {
	DisplayName          *string
	AvatarReference      *string
	ExternalSubject      *string
	ExternalSessionToken *string
}

// Compact は空文字を nil に置き換えたコピーを返します。
func (h *ProfileHints) Compact() *ProfileHints {
	if h == nil {
		return nil
	}
	return &ProfileHints{
		DisplayName:          nonEmpty(h.DisplayName),
		AvatarReference:      nonEmpty(h.AvatarReference),
		ExternalSubject:      nonEmpty(h.ExternalSubject),
		ExternalSessionToken: nonEmpty(h.ExternalSessionToken),
	}
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// ProfileUpdate は updateProfile 用。nil も含めて全フィールドを書き込む。
type ProfileUpdate struct {
	DisplayName     *string
	AvatarReference *string
}

// TenantStats はテナントのメモ集計結果
type TenantStats struct {
	Total     int64 `json:"totalMemos"`
	Completed int64 `json:"completedMemos"`
	Pending   int64 `json:"pendingMemos"`
	Urgent    int64 `json:"urgentMemos"`
}

// ProfileRequest は register / profile 更新APIのリクエストボディ (DTO)
type ProfileRequest struct {
	Nickname  *string `json:"nickname" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,max=500"`
}

// Hints はリクエストを autoRegister 用のヒントに変換します。
func (r *ProfileRequest) Hints() *ProfileHints {
	return &ProfileHints{DisplayName: r.Nickname, AvatarReference: r.AvatarURL}
}

// TenantResponse はクライアントに返すテナント情報
type TenantResponse struct {
	UserID       string    `json:"userId"`
	UserType     string    `json:"userType"`
	OpenID       *string   `json:"openid"`
	Nickname     *string   `json:"nickname"`
	AvatarURL    *string   `json:"avatarUrl"`
	MemoCount    int64     `json:"memoCount"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewTenantResponse は Tenant をレスポンス形式に変換します。UserType は識別子から導出します。
func NewTenantResponse(t *Tenant) *TenantResponse {
	if t == nil {
		return nil
	}
	return &TenantResponse{
		UserID:       t.Identifier,
		UserType:     DeriveChannel(t.Identifier),
		OpenID:       t.ExternalSubject,
		Nickname:     t.DisplayName,
		AvatarURL:    t.AvatarReference,
		MemoCount:    t.MemoCount,
		LastActiveAt: t.LastActiveAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

type ContextKey string

const (
	IdentifierKey ContextKey = "identifier"
)
