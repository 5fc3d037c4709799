package usecase

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	"app/internal/logging"
	"app/internal/repository"
	"app/internal/validator"

	"golang.org/x/crypto/bcrypt"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidateNewPassword(ctx context.Context, password string) error
}

// 認証済みユーザーのビュー。毎回DBから組み立て、保存はしない
type SessionPrincipal struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Roles     []string `json:"roles"`
}

type AuthRegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Platform string `json:"platform"`
}

// handlerがCookieに詰めるための値も含む。bodyに生トークンは出さない
type LoginResult struct {
	Principal SessionPrincipal
	Pair      TokenPair
}

type RefreshResult struct {
	Principal SessionPrincipal
	Pair      TokenPair
}

type AuthUsecase struct {
	users     repository.UserRepository
	rtRepo    repository.RefreshTokenRepository
	issuer    *TokenIssuer
	validator AuthValidator
}

func NewAuthUsecase(
	users repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer *TokenIssuer,
	v AuthValidator,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		rtRepo:    rtRepo,
		issuer:    issuer,
		validator: v,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (*SessionPrincipal, error) {
	// 入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, req.Email, req.Password); err != nil {
		return nil, mapValidatorErr(err)
	}

	// パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrInternal
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(pwHash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
	}

	// email重複だけが409。接続断などのストア障害は500のまま返す
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserConflict) {
			return nil, ErrConflict
		}
		return nil, ErrInternal
	}

	p := toPrincipal(user)
	return &p, nil
}

func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	// 入力検証
	if err := u.validator.ValidateLogin(ctx, req.Email, req.Password); err != nil {
		return nil, mapValidatorErr(err)
	}

	pf, err := ParsePlatform(req.Platform)
	if err != nil {
		return nil, ErrValidation
	}

	// ユーザー取得。いないのとパスワード違いは外から同じに見せる
	user, err := u.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			l.Warn("login failed", "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, ErrInternal
	}

	// 停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, ErrForbidden
	}

	// パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		l.Warn("login failed", "reason", "password mismatch")
		return nil, ErrInvalidCredentials
	}

	now := time.Now()

	// トークンペア発行
	pair, err := u.issuer.Issue(user.ID, pf, now)
	if err != nil {
		return nil, ErrInternal
	}

	// refreshはハッシュでDBに残す（失効できるように）
	rt := &model.RefreshToken{
		ID:        pair.RefreshID,
		UserID:    user.ID,
		TokenHash: HashToken(pair.RefreshToken),
		Platform:  string(pf),
		ExpiresAt: pair.RefreshExpiresAt,
	}
	if err := u.rtRepo.Create(ctx, rt); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenConflict) {
			return nil, ErrConflict
		}
		return nil, ErrInternal
	}

	// last_login更新は失敗してもログインは通す
	_ = u.users.UpdateLastLogin(ctx, user.ID, now)

	return &LoginResult{
		Principal: toPrincipal(user),
		Pair:      *pair,
	}, nil
}

// Refreshは古いトークンを消してから新しいペアを発行する。
// 削除→発行の順序は固定：間でクラッシュしても系譜が2本生きることはない
func (u *AuthUsecase) Refresh(ctx context.Context, refreshPlain string) (*RefreshResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshPlain == "" {
		return nil, ErrInvalidToken
	}

	// 署名検証。期限はDBレコードが正
	if err := u.issuer.VerifyRefreshSignature(refreshPlain); err != nil {
		return nil, ErrInvalidToken
	}

	tokenHash := HashToken(refreshPlain)

	rt, err := u.rtRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			// 消費済みか、そもそも発行していない
			l.Warn("refresh rejected", "reason", "unknown token")
			return nil, ErrUnknownToken
		}
		return nil, ErrInternal
	}

	// 期限切れは消してから弾く
	if rt.ExpiresAt.Before(time.Now()) {
		_ = u.rtRepo.DeleteByTokenHash(ctx, tokenHash)
		return nil, ErrTokenExpired
	}

	user, err := u.users.FindByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = u.rtRepo.DeleteByTokenHash(ctx, tokenHash)
			return nil, ErrInvalidCredentials
		}
		return nil, ErrInternal
	}
	if !user.IsActive {
		return nil, ErrForbidden
	}

	// 単回使用：先に消す。同時refreshは1件消せた方だけが勝つ
	if err := u.rtRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			l.Warn("refresh rejected", "reason", "lost consume race")
			return nil, ErrUnknownToken
		}
		return nil, ErrInternal
	}

	pf, err := ParsePlatform(rt.Platform)
	if err != nil {
		pf = PlatformWeb
	}

	pair, err := u.issuer.Issue(user.ID, pf, time.Now())
	if err != nil {
		return nil, ErrInternal
	}

	newRT := &model.RefreshToken{
		ID:        pair.RefreshID,
		UserID:    user.ID,
		TokenHash: HashToken(pair.RefreshToken),
		Platform:  string(pf),
		ExpiresAt: pair.RefreshExpiresAt,
	}
	if err := u.rtRepo.Create(ctx, newRT); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenConflict) {
			return nil, ErrConflict
		}
		return nil, ErrInternal
	}

	return &RefreshResult{
		Principal: toPrincipal(user),
		Pair:      *pair,
	}, nil
}

// Logoutは常に成功扱い。消すものがなくてもエラーにしない
func (u *AuthUsecase) Logout(ctx context.Context, refreshPlain string) error {
	if refreshPlain == "" {
		return nil
	}

	err := u.rtRepo.DeleteByTokenHash(ctx, HashToken(refreshPlain))
	if err != nil && !errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return ErrInternal
	}

	return nil
}

// LogoutAllは全端末ログアウト（自分のrefreshを全削除）
func (u *AuthUsecase) LogoutAll(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidCredentials
	}

	if err := u.rtRepo.DeleteAllByUserID(ctx, userID); err != nil {
		return ErrInternal
	}

	return nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (*SessionPrincipal, error) {
	if userID <= 0 {
		return nil, ErrInvalidCredentials
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, ErrInternal
	}
	if !user.IsActive {
		return nil, ErrForbidden
	}

	p := toPrincipal(user)
	return &p, nil
}

func toPrincipal(u *model.User) SessionPrincipal {
	return SessionPrincipal{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     u.RoleNames(),
	}
}

func mapValidatorErr(err error) error {
	if errors.Is(err, validator.ErrWeakPassword) {
		return ErrWeakPassword
	}
	return ErrValidation
}
