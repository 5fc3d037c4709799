package handler

import (
	"errors"
	"net/http"
	"time"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	accessCookieName  = "access"
	refreshCookieName = "refresh"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// /auth配下のAPI
type AuthHandler struct {
	authUC       *usecase.AuthUsecase
	passUC       *usecase.PasswordUsecase
	cookieSecure bool
}

// DI
func NewAuthHandler(authUC *usecase.AuthUsecase, passUC *usecase.PasswordUsecase, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authUC:       authUC,
		passUC:       passUC,
		cookieSecure: cookieSecure,
	}
}

// 認証ルートを登録。guardはaccessトークン必須のルートにかける
func (h *AuthHandler) RegisterRoutes(e *echo.Echo, guard echo.MiddlewareFunc, loginLimiter echo.MiddlewareFunc) {
	e.POST("/auth/register", h.register)
	e.POST("/auth/login", h.login, loginLimiter)
	e.POST("/auth/refresh", h.refresh)
	e.POST("/auth/logout", h.logout)
	e.POST("/auth/logout_all", h.logoutAll, guard)
	e.GET("/auth/me", h.me, guard)
	e.POST("/auth/password/change", h.changePassword, guard)
	e.POST("/auth/password/reset", h.requestReset, loginLimiter)
	e.POST("/auth/password/reset/confirm", h.consumeReset)
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Platform string `json:"platform"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type sessionResponse struct {
	User            usecase.SessionPrincipal `json:"user"`
	AccessExpiresIn int                      `json:"access_expires_in"`
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.authUC.Register(c.Request().Context(), usecase.AuthRegisterRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	res, err := h.authUC.Login(c.Request().Context(), usecase.AuthLoginRequest{
		Email:    req.Email,
		Password: req.Password,
		Platform: req.Platform,
	})
	if err != nil {
		return writeError(c, err)
	}

	// トークンはCookieのみ。bodyには出さない
	h.setSessionCookies(c, res.Pair)

	return c.JSON(http.StatusOK, sessionResponse{
		User:            res.Principal,
		AccessExpiresIn: int(time.Until(res.Pair.AccessExpiresAt).Seconds()),
	})
}

func (h *AuthHandler) refresh(c echo.Context) error {
	res, err := h.authUC.Refresh(c.Request().Context(), readCookie(c, refreshCookieName))
	if err != nil {
		return writeError(c, err)
	}

	h.setSessionCookies(c, res.Pair)

	return c.JSON(http.StatusOK, sessionResponse{
		User:            res.Principal,
		AccessExpiresIn: int(time.Until(res.Pair.AccessExpiresAt).Seconds()),
	})
}

// logoutは何があってもCookieを消して成功で返す
func (h *AuthHandler) logout(c echo.Context) error {
	err := h.authUC.Logout(c.Request().Context(), readCookie(c, refreshCookieName))

	h.clearSessionCookies(c)

	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "logout success"})
}

func (h *AuthHandler) logoutAll(c echo.Context) error {
	userID, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.authUC.LogoutAll(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}

	h.clearSessionCookies(c)
	return c.JSON(http.StatusOK, SuccessResponse{Message: "logout success"})
}

func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	p, err := h.authUC.Me(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *AuthHandler) changePassword(c echo.Context) error {
	userID, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.passUC.ChangePassword(c.Request().Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "password changed"})
}

// メールが存在してもしなくても同じ返事を返す
func (h *AuthHandler) requestReset(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.passUC.RequestReset(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "reset mail sent if account exists"})
}

func (h *AuthHandler) consumeReset(c echo.Context) error {
	var req resetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.passUC.ConsumeReset(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "password reset"})
}

// access/refreshをCookieにセット。
func (h *AuthHandler) setSessionCookies(c echo.Context, pair usecase.TokenPair) {
	c.SetCookie(&http.Cookie{
		Name:     accessCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  pair.AccessExpiresAt,
	})
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  pair.RefreshExpiresAt,
	})
}

func (h *AuthHandler) clearSessionCookies(c echo.Context) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

func readCookie(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// usecaseのエラーをHTTPステータスに落とす
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrValidation):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	case errors.Is(err, usecase.ErrWeakPassword):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "weak password"})
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, usecase.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
	case errors.Is(err, usecase.ErrTokenExpired):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "token expired"})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, usecase.ErrUnknownToken):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown token"})
	case errors.Is(err, usecase.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
	}

	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	// 500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
