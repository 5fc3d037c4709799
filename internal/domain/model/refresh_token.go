package model

import "time"

// 発行済みで未消費のリフレッシュトークン1件。
// 平文は保存せず、署名済みトークンのSHA-256ハッシュをキーにする。
type RefreshToken struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	TokenHash string    `json:"-" gorm:"not null;uniqueIndex"`
	Platform  string    `json:"platform" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}
