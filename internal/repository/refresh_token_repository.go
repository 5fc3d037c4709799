package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
	"time"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	// token_hashの一意制約に当たった（実運用ではほぼ起こりえない）
	ErrRefreshTokenConflict = errors.New("refresh token conflict")
)

// リフレッシュトークンの保存・取得・削除
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	// 1件削除。0件更新はErrRefreshTokenNotFound（同時refreshの勝者は1人だけ）
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	// ログアウト全端末・アカウント削除用
	DeleteAllByUserID(ctx context.Context, userID int64) error
	// 期限切れの掃除。削除件数を返す
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
