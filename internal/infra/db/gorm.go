package db

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"shopcart/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == "sqlite" {
		return OpenSQLite(cfg.SQLitePath)
	}

	// DATABASE_URL があれば最優先で使う
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
		)
	}

	gdb, err := gorm.Open(postgres.Open(dsn), gormConfig(cfg.IsProd()))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns / 2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return gdb, nil
}

// OpenSQLite はローカル開発とテスト用。
// SQLiteはFOR UPDATEを無視するので、接続を1本に絞ってトランザクションを直列化する。
// pathが ":memory:" ならプロセス内だけのDB。
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
	if path == ":memory:" {
		dsn = "file::memory:?_foreign_keys=on"
	}

	gdb, err := gorm.Open(sqlite.Open(dsn), gormConfig(false))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return gdb, nil
}

func gormConfig(prod bool) *gorm.Config {
	lvl := logger.Warn
	if prod {
		lvl = logger.Error
	}
	return &gorm.Config{
		Logger: newGormLogger(os.Stdout, lvl),
	}
}

// カートが無いのは初回の通常経路なので record not found は出さない
func newGormLogger(w io.Writer, lvl logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(w, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
