package usecase

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// クライアントの種類。refreshの長さがここで変わる
type Platform string

const (
	PlatformWeb        Platform = "web"
	PlatformMobile     Platform = "mobile"
	PlatformWebPersist Platform = "web-persist"
)

// 空はwebとして扱う。知らない値は受け付けない
func ParsePlatform(s string) (Platform, error) {
	switch s {
	case "", string(PlatformWeb):
		return PlatformWeb, nil
	case string(PlatformMobile):
		return PlatformMobile, nil
	case string(PlatformWebPersist):
		return PlatformWebPersist, nil
	default:
		return "", ErrValidation
	}
}

// プラットフォーム別の有効期限ポリシー
type TokenPolicy struct {
	AccessTTLWeb     time.Duration
	AccessTTLMobile  time.Duration
	RefreshTTLWeb    time.Duration
	RefreshTTLMobile time.Duration
}

func PolicyFromConfig(cfg config.Config) TokenPolicy {
	return TokenPolicy{
		AccessTTLWeb:     cfg.AccessTTLWeb,
		AccessTTLMobile:  cfg.AccessTTLMobile,
		RefreshTTLWeb:    cfg.RefreshTTLWeb,
		RefreshTTLMobile: cfg.RefreshTTLMobile,
	}
}

func (p TokenPolicy) AccessTTL(pf Platform) time.Duration {
	if pf == PlatformMobile {
		return p.AccessTTLMobile
	}
	return p.AccessTTLWeb
}

// webは短め。mobileとweb-persistは再ログインさせない代わりに長い
func (p TokenPolicy) RefreshTTL(pf Platform) time.Duration {
	if pf == PlatformMobile || pf == PlatformWebPersist {
		return p.RefreshTTLMobile
	}
	return p.RefreshTTLWeb
}

// 発行した署名付きトークンのペア
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshID        string // jti（DBレコードのID）
	RefreshExpiresAt time.Time
}

// HS256でaccess/refreshを発行する
type TokenIssuer struct {
	secret []byte
	policy TokenPolicy
}

func NewTokenIssuer(secret string, policy TokenPolicy) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		policy: policy,
	}
}

// Issueはaccess/refreshのペアを発行する。
// accessのclaimsはsubだけ（ロールやメールは入れない。最新ロールはDBから引く）
func (i *TokenIssuer) Issue(userID int64, pf Platform, now time.Time) (*TokenPair, error) {
	if len(i.secret) == 0 {
		// シークレットなしで署名なしトークンを出すことは絶対にしない
		return nil, ErrInternal
	}

	accessExp := now.Add(i.policy.AccessTTL(pf))
	accessClaims := jwt.MapClaims{
		"sub": userID,
		"typ": "access",
		"iat": now.Unix(),
		"exp": accessExp.Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(i.secret)
	if err != nil {
		return nil, ErrInternal
	}

	refreshExp := now.Add(i.policy.RefreshTTL(pf))
	jti := uuid.NewString()
	refreshClaims := jwt.MapClaims{
		"sub": userID,
		"typ": "refresh",
		"jti": jti,
		"exp": refreshExp.Unix(),
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(i.secret)
	if err != nil {
		return nil, ErrInternal
	}

	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshID:        jti,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyRefreshSignatureは署名と形式だけを確認する。
// 有効期限はDBレコード側が正で、期限切れレコードの削除はプロトコル層がやる
func (i *TokenIssuer) VerifyRefreshSignature(token string) error {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	parsed, err := parser.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		return ErrInvalidToken
	}

	// accessトークンをrefreshとして受け付けない
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return ErrInvalidToken
	}

	return nil
}

// DB保存用のキー。平文トークンは保存しない
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
