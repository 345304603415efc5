package main

import (
	"context"
	"fmt"
	"os"

	"shopcart/internal/config"
	"shopcart/internal/infra/db"
	"shopcart/internal/infra/logger"

	"github.com/joho/godotenv"
)

// テーブルを作って初期商品を入れる
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("db connect failed", "error", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("migrate failed", "error", err)
	}

	seeded, err := db.SeedProducts(context.Background(), gormDB, db.DefaultProducts)
	if err != nil {
		log.Fatal("seed failed", "error", err)
	}
	if seeded {
		log.Info("products seeded", "count", len(db.DefaultProducts))
	} else {
		log.Info("products already present, skipped seeding")
	}
}
