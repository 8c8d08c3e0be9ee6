package model

import "time"

// ログインユーザーか匿名セッションのどちらか一方に紐づく。
// 1つの識別子につきカートは1つ
type Cart struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *int64    `gorm:"uniqueIndex;check:(user_id IS NULL) <> (session_id IS NULL)" json:"user_id,omitempty"`
	SessionID *string   `gorm:"type:varchar(64);uniqueIndex" json:"session_id,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
