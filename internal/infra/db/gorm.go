package db

import (
	"app/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConnectはDBに接続して*gorm.DBを返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	// TranslateError: unique違反をgorm.ErrDuplicatedKeyとして受け取るため
	return gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{TranslateError: true})
}
