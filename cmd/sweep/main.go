package main

import (
	"context"
	"time"

	"app/internal/config"
	infraRepo "app/internal/infra/repository"
	"app/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// 期限切れトークンの掃除。cronから1日1回程度叩く想定。
// プロトコル層は遅延失効で正しく動くので、これは衛生目的。
// 「期限切れ」の判定はrepositoryの実装に寄せて、ここで条件を二重に持たない
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgxCfg, err := pgx.ParseConfig(cfg.PostgresDSN())
	if err != nil {
		panic(err)
	}
	sqlDB := stdlib.OpenDB(*pgxCfg)
	defer sqlDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		panic(err)
	}

	now := time.Now()

	// 期限切れrefreshレコードを削除
	deleted, err := infraRepo.NewRefreshTokenRepository(gormDB).DeleteExpired(ctx, now)
	if err != nil {
		logger.Error("refresh token sweep failed", "error", err)
		panic(err)
	}
	logger.Info("refresh tokens swept", "deleted", deleted)

	// 期限切れリセットトークンをクリア
	cleared, err := infraRepo.NewUserRepository(gormDB).ClearExpiredResetTokens(ctx, now)
	if err != nil {
		logger.Error("reset token sweep failed", "error", err)
		panic(err)
	}
	logger.Info("reset tokens cleared", "cleared", cleared)
}
