package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
	"time"
)

var (
	// ユーザーが見つかりませんを統一
	ErrUserNotFound = errors.New("user not found")

	// emailのunique制約に当たった
	ErrUserConflict = errors.New("user already exists")
)

// 認証コアが必要とするユーザー操作だけを約束する
type UserRepository interface {
	// 新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDから1件取得（ロール込み）
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	// メールから1件取得（ロール込み）
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// last_login_atだけを更新
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	// パスワードハッシュの差し替え
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error
	// リセットトークン（ハッシュ）と期限をセット。前のトークンは上書きで無効になる
	SetResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	// リセットトークンのハッシュから1件取得
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*model.User, error)
	// リセットトークンを消す（使用済み）
	ClearResetToken(ctx context.Context, userID int64) error
	// 期限切れリセットトークンの掃除。クリアした件数を返す
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
