package model

import (
	"time"

	"gorm.io/gorm"
)

// 優先度
const (
	PriorityNormal    = 0
	PriorityImportant = 1
	PriorityUrgent    = 2
)

// 完了状態
const (
	StatusOpen = 0
	StatusDone = 1
)

// Memo はテナントが所有する短いメモ
type Memo struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerIdentifier  string    `gorm:"size:100;not null;index:idx_memos_owner_updated,priority:1" json:"-"`
	Title            string    `gorm:"size:50;not null" json:"title"`
	Body             string    `gorm:"type:text;not null" json:"body"`
	Priority         int       `gorm:"not null" json:"priority"`
	CompletionStatus int       `gorm:"not null" json:"completionStatus"`
	Tags             []string  `gorm:"serializer:json;type:text" json:"tags"`
	CreatedAt        time.Time `gorm:"autoCreateTime:false;precision:6" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime:false;precision:6;index:idx_memos_owner_updated,priority:2,sort:desc" json:"updatedAt"`
}

func (Memo) TableName() string {
	return "memos"
}

// AfterFind はタグが未設定 (NULL) の行でも空配列を返すようにします。
func (m *Memo) AfterFind(tx *gorm.DB) error {
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return nil
}

// MemoOptions は create / update の任意項目。nil は「指定なし」を意味する。
type MemoOptions struct {
	Priority         *int
	CompletionStatus *int
	Tags             *[]string
}

// MemoRequest はメモ作成・更新APIのリクエストボディ (DTO)
// status は completionStatus の別名。両方あれば completionStatus を優先する。
type MemoRequest struct {
	Title            string    `json:"title"`
	Body             string    `json:"body"`
	Priority         *int      `json:"priority"`
	Status           *int      `json:"status"`
	CompletionStatus *int      `json:"completionStatus"`
	Tags             *[]string `json:"tags"`
}

// Options はリクエストの任意項目を MemoOptions に変換します。
func (r *MemoRequest) Options() MemoOptions {
	opts := MemoOptions{
		Priority:         r.Priority,
		CompletionStatus: r.Status,
		Tags:             r.Tags,
	}
	if r.CompletionStatus != nil {
		opts.CompletionStatus = r.CompletionStatus
	}
	return opts
}
