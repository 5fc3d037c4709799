package main

import (
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/logging"
	"app/internal/mailer"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
)

func main() {
	// .envはローカル開発用。なければ環境変数だけで動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	// DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.RefreshToken{},
	); err != nil {
		panic(err)
	}

	// Repository（GORM実装）生成
	userRepo := infraRepo.NewUserRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)

	// usecaseに渡す部品
	v := validator.NewAuthValidator()
	issuer := usecase.NewTokenIssuer(cfg.JWTSecret, usecase.PolicyFromConfig(cfg))
	mail := mailer.NewLogMailer()

	// Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, rtRepo, issuer, v)
	passUC := usecase.NewPasswordUsecase(userRepo, v, mail, cfg.ResetTokenTTL, cfg.AppURL)

	// Handler生成
	authH := handler.NewAuthHandler(authUC, passUC, cfg.CookieSecure())

	// Server起動
	e := server.New(cfg, logger, authH)

	logger.Info("server starting", "port", cfg.Port, "env", cfg.GoEnv)
	if err := server.Start(e, cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
	}
}
