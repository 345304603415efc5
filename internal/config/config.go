package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DBDriver    string // postgres/sqlite（postgres）
	DatabaseURL string // あればPOSTGRES_*より優先
	SQLitePath  string // DB_DRIVER=sqliteのときのファイル

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string // disable/require

	DBLockTimeout  time.Duration // 行ロック待ちの上限（5s）
	DBMaxOpenConns int           // コネクションプール上限（20）

	JWTSecret    string // HS256用シークレット
	JWTPublicKey string // ES256用の公開鍵（PEM）
	JWTAudience  string // audクレーム（authenticated）

	GoEnv    string // dev/prod
	LogLevel string // debug/info/warn/error

	OtelEnabled      bool
	OtelEndpoint     string
	OtelSamplerRatio float64

	ShutdownTimeout time.Duration // graceful shutdownの待ち時間（10s）
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	maxOpen, err := atoiOr("DB_MAX_OPEN_CONNS", 20)
	if err != nil {
		return Config{}, err
	}
	lockTimeout, err := durationOr("DB_LOCK_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	shutdownTimeout, err := durationOr("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	ratio, err := ratioOr("OTEL_SAMPLER_RATIO", 0.1)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getenv("SQLITE_PATH", "shopcart.db"),

		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getenv("POSTGRES_DB", "shopcart"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		DBLockTimeout:  lockTimeout,
		DBMaxOpenConns: maxOpen,

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTPublicKey: os.Getenv("JWT_PUBLIC_KEY"),
		JWTAudience:  getenv("JWT_AUDIENCE", "authenticated"),

		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		OtelEnabled:      truthy(os.Getenv("OTEL_ENABLED")),
		OtelEndpoint:     strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OtelSamplerRatio: ratio,

		ShutdownTimeout: shutdownTimeout,
	}

	//必須チェック
	if cfg.JWTSecret == "" && cfg.JWTPublicKey == "" {
		return Config{}, fmt.Errorf("JWT_SECRET or JWT_PUBLIC_KEY is required")
	}
	if cfg.GoEnv != "dev" && cfg.GoEnv != "prod" {
		return Config{}, fmt.Errorf("GO_ENV must be dev or prod: %q", cfg.GoEnv)
	}
	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" && cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("DATABASE_URL or POSTGRES_PASSWORD is required")
		}
	case "sqlite":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres or sqlite: %q", cfg.DBDriver)
	}
	if cfg.DBMaxOpenConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}

	return cfg, nil
}

// 本番か
func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

func getenv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func atoiOr(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func ratioOr(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return min(max(f, 0), 1), nil
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
