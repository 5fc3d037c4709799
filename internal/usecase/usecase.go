package usecase

import (
	"errors"
	"fmt"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

var (
	// 400 入力不足
	ErrValidation = errors.New("validation error")
	// 400 パスワードが弱い
	ErrWeakPassword = errors.New("weak password")
	// 401 認証失敗（メール不明とパスワード違いは外から区別できない）
	ErrInvalidCredentials = errors.New("invalid credentials")
	// 401 署名が壊れている
	ErrInvalidToken = errors.New("invalid token")
	// 401 期限切れ
	ErrTokenExpired = errors.New("token expired")
	// 403 停止ユーザー
	ErrForbidden = errors.New("forbidden")
	// 404 形式は正しいが存在しない（消費済み含む）
	ErrUnknownToken = errors.New("unknown token")
	// 409 競合
	ErrConflict = errors.New("conflict")
	// 500
	ErrInternal = errors.New("internal error")
)
