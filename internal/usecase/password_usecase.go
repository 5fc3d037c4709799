package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/url"
	"time"

	"app/internal/logging"
	"app/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// メール送信は外部コラボレータ。中身（SMTP等）はここでは知らない
type Mailer interface {
	SendPasswordReset(ctx context.Context, to string, resetLink string) error
}

// パスワード変更とリセットのフロー
type PasswordUsecase struct {
	users     repository.UserRepository
	validator AuthValidator
	mailer    Mailer
	resetTTL  time.Duration
	appURL    string // リセットリンクのベース
}

func NewPasswordUsecase(
	users repository.UserRepository,
	v AuthValidator,
	mailer Mailer,
	resetTTL time.Duration,
	appURL string,
) *PasswordUsecase {
	return &PasswordUsecase{
		users:     users,
		validator: v,
		mailer:    mailer,
		resetTTL:  resetTTL,
		appURL:    appURL,
	}
}

// ChangePasswordはログイン済みユーザーのパスワード変更。
// accessトークンだけを信用せず、旧パスワードをもう一度照合する
func (u *PasswordUsecase) ChangePassword(ctx context.Context, userID int64, oldPassword string, newPassword string) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidCredentials
		}
		return ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := u.validator.ValidateNewPassword(ctx, newPassword); err != nil {
		return mapValidatorErr(err)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrInternal
	}

	if err := u.users.UpdatePasswordHash(ctx, userID, string(newHash)); err != nil {
		return ErrInternal
	}

	// 他端末のrefreshはここでは失効させない（/auth/logout_allでできる）
	return nil
}

// RequestResetはリセットトークンを発行してメールに渡す。
// アカウント列挙を防ぐため、メールが存在しなくても成功で返す
func (u *PasswordUsecase) RequestReset(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_request")

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			l.Info("reset requested for unknown email")
			return nil
		}
		return ErrInternal
	}

	// 256bitのランダムトークン。DBにはハッシュだけ残す
	plain, err := generateSecureToken(32)
	if err != nil {
		return ErrInternal
	}

	// 上書き保存なので、前に出したトークンは同時に無効になる
	expiresAt := time.Now().Add(u.resetTTL)
	if err := u.users.SetResetToken(ctx, user.ID, HashToken(plain), expiresAt); err != nil {
		return ErrInternal
	}

	link := u.appURL + "/reset-password?token=" + url.QueryEscape(plain)
	if err := u.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		l.Error("reset mail handoff failed", "error", err)
		return ErrInternal
	}

	return nil
}

// ConsumeResetはトークンを検証してハッシュを差し替える。単回使用
func (u *PasswordUsecase) ConsumeReset(ctx context.Context, token string, newPassword string) error {
	if token == "" {
		return ErrUnknownToken
	}

	user, err := u.users.FindByResetTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUnknownToken
		}
		return ErrInternal
	}

	// 期限切れは消してから弾く（文字列が一致していても受け付けない）
	if user.ResetTokenExpires == nil || user.ResetTokenExpires.Before(time.Now()) {
		_ = u.users.ClearResetToken(ctx, user.ID)
		return ErrTokenExpired
	}

	if err := u.validator.ValidateNewPassword(ctx, newPassword); err != nil {
		return mapValidatorErr(err)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrInternal
	}

	if err := u.users.UpdatePasswordHash(ctx, user.ID, string(newHash)); err != nil {
		return ErrInternal
	}

	// 使い終わったトークンはすぐ消す
	if err := u.users.ClearResetToken(ctx, user.ID); err != nil {
		return ErrInternal
	}

	return nil
}

// ランダム文字列を作る（OSの安全な乱数）
func generateSecureToken(bytesLen int) (string, error) {
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
