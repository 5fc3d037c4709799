package server

import (
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/handler"
	appmw "app/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, authH *handler.AuthHandler) {
	guard := appmw.AuthJWT(cfg)

	// ログイン・リセット要求はIPごとに15分10回まで
	limiter := echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(10.0 / (15 * 60)),
			Burst:     10,
			ExpiresIn: 15 * time.Minute,
		}),
	})

	authH.RegisterRoutes(e, guard, limiter)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
