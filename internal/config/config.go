package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あれば個別項目より優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string // disableなど

	JWTSecret string // JWT署名シークレット（必須）

	// トークン有効期限。refreshはプラットフォームで長さが変わる
	AccessTTLWeb     time.Duration
	AccessTTLMobile  time.Duration
	RefreshTTLWeb    time.Duration
	RefreshTTLMobile time.Duration

	ResetTokenTTL time.Duration // パスワードリセットの有効期限

	GoEnv    string // development/production
	AppURL   string // リセットリンクのベースURL
	LogLevel string // info/warn/error
}

// Loadは環境変数から設定を組み立てる
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}

	accessWeb, err := durationDefault("ACCESS_TTL_WEB", time.Hour)
	if err != nil {
		return Config{}, err
	}
	accessMobile, err := durationDefault("ACCESS_TTL_MOBILE", time.Hour)
	if err != nil {
		return Config{}, err
	}
	refreshWeb, err := durationDefault("REFRESH_TTL_WEB", 7*24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	refreshMobile, err := durationDefault("REFRESH_TTL_MOBILE", 30*24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	resetTTL, err := durationDefault("RESET_TOKEN_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "roster"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AccessTTLWeb:     accessWeb,
		AccessTTLMobile:  accessMobile,
		RefreshTTLWeb:    refreshWeb,
		RefreshTTLMobile: refreshMobile,

		ResetTokenTTL: resetTTL,

		GoEnv:    getenv("GO_ENV", "development"),
		AppURL:   getenv("APP_URL", "http://localhost:3000"),
		LogLevel: getenv("LOG_LEVEL", "info"),
	}

	// 署名シークレットなしで起動させない（署名できないtokenは発行不可）
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// CookieSecureは本番のみSecure属性を付ける
func (c Config) CookieSecure() bool {
	return c.GoEnv == "production"
}

// PostgresDSNは接続文字列を返す。DATABASE_URLがあればそちら優先
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser,
		c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration (e.g. 1h, 168h): %w", key, err)
	}
	return d, nil
}
