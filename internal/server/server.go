package server

import (
	"log/slog"

	"app/internal/config"
	"app/internal/handler"
	appmw "app/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Newはルーティングとミドルウェアを組み立てたechoを返す
func New(cfg config.Config, logger *slog.Logger, authH *handler.AuthHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(appmw.RequestLogger(logger))

	RegisterRoutes(e, cfg, authH)

	return e
}

func Start(e *echo.Echo, port string) error {
	return e.Start(":" + port)
}
