package model

import "time"

type User struct {
	ID           int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsActive     bool   `json:"is_active" gorm:"not null;default:true"`

	// パスワードリセット用（ハッシュのみ保存、1アカウント1枚）
	ResetTokenHash    *string    `json:"-" gorm:"index"`
	ResetTokenExpires *time.Time `json:"-"`

	// 勤務ロール（多対多）
	Roles []Role `json:"roles" gorm:"many2many:user_roles"`

	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ロール名だけをフラットにして返す（順序に意味はない）
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
