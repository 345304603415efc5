package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shopcart/internal/config"
	"shopcart/internal/handler"
	"shopcart/internal/infra/db"
	"shopcart/internal/infra/logger"
	"shopcart/internal/infra/metrics"
	infraRepo "shopcart/internal/infra/repository"
	"shopcart/internal/infra/tracing"
	"shopcart/internal/middleware"
	"shopcart/internal/server"
	"shopcart/internal/usecase"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	//.envは無くてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log, tracing.Config{
		Enabled:      cfg.OtelEnabled,
		ServiceName:  "shopcart",
		Environment:  cfg.GoEnv,
		Endpoint:     cfg.OtelEndpoint,
		SamplerRatio: cfg.OtelSamplerRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		//ctxはもうキャンセル済みなので新しく作る
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("otel shutdown failed", "error", err)
		}
	}()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB, cfg.DBLockTimeout)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)

	m := metrics.New()

	//Usecase生成
	cartUC := usecase.NewCartUsecase(txm, cartRepo, log, m)
	productUC := usecase.NewProductUsecase(txm, productRepo, inventoryRepo, log, m)

	auth, err := middleware.AuthJWT(cfg)
	if err != nil {
		return err
	}

	//Handler生成
	srv := server.New(log, server.Handlers{
		Cart:         handler.NewCartHandler(cartUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Health:       handler.NewHealthHandler(gormDB),
	}, auth, m.Handler())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		return srv.Shutdown(context.Background(), cfg.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}
