package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testConfig() config.Config {
	return config.Config{JWTSecret: testSecret}
}

func signAccessToken(t *testing.T, secret string, userID int64, exp time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": userID,
		"typ": "access",
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// guardを通った後のuser_idを返すだけのハンドラで検証する
func runGuard(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, interface{}) {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUserID interface{}
	next := func(c echo.Context) error {
		gotUserID = c.Get(middleware.CtxUserIDKey)
		return c.NoContent(http.StatusOK)
	}

	err := middleware.AuthJWT(testConfig())(next)(c)
	require.NoError(t, err)

	return rec, gotUserID
}

func TestAuthJWT_BearerToken(t *testing.T) {
	token := signAccessToken(t, testSecret, 42, time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec, userID := runGuard(t, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), userID)
}

func TestAuthJWT_CookieFallback(t *testing.T) {
	token := signAccessToken(t, testSecret, 7, time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "access", Value: token})

	rec, userID := runGuard(t, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), userID)
}

func TestAuthJWT_MissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	rec, userID := runGuard(t, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, userID)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	token := signAccessToken(t, "other-secret", 42, time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec, _ := runGuard(t, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	token := signAccessToken(t, testSecret, 42, time.Now().Add(-time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec, _ := runGuard(t, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// refreshトークンは同じシークレットで署名された正規のJWTだが、
// accessとしては絶対に通さない（失効済みrefreshが素通りしてしまうため）
func TestAuthJWT_RefreshTokenRejected(t *testing.T) {
	issuer := usecase.NewTokenIssuer(testSecret, usecase.TokenPolicy{
		AccessTTLWeb:     time.Hour,
		AccessTTLMobile:  time.Hour,
		RefreshTTLWeb:    7 * 24 * time.Hour,
		RefreshTTLMobile: 30 * 24 * time.Hour,
	})
	pair, err := issuer.Issue(42, usecase.PlatformWeb, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)

	rec, userID := runGuard(t, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, userID)
}

func TestAuthJWT_MissingTypeClaim(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": int64(42),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec, _ := runGuard(t, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
