// Package main is the entry point for the API server. It wires the
// configuration, storage, cache and services together, registers the
// HTTP routes and runs until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tally/internal/config"
	"tally/internal/handlers"
	"tally/internal/logger"
	"tally/internal/middleware"
	"tally/internal/notification"
	"tally/internal/repositories"
	"tally/internal/services/aging"
	"tally/internal/services/approval"
	"tally/internal/services/auth"
	"tally/internal/services/exchange"
	"tally/internal/services/ledger"
	"tally/internal/services/reversal"
	"tally/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := repositories.OpenDB(cfg)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	store := repositories.NewGormStore(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	var cache repositories.WalletCache = repositories.NoopWalletCache{}
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, wallet cache disabled", zap.Error(err))
	} else {
		cache = repositories.NewRedisWalletCache(redisClient, cfg.CacheTTL)
	}
	cancel()

	limits := validation.Limits{
		MaxTransactionAmount: cfg.MaxTransactionAmount,
		MaxCreditLimit:       cfg.MaxCreditLimit,
	}

	notifier := notification.NewLogNotifier(log.Named("notify"))
	approvals := approval.NewService(store, notifier, limits, log.Named("approval"))

	var rates exchange.RateSource = exchange.NewStaticSource(cfg.ExchangeRates)
	if _, ok := cache.(repositories.NoopWalletCache); !ok {
		rates = exchange.NewCachedSource(rates, redisClient, cfg.CacheTTL)
	}
	converter := exchange.NewConverter(rates)

	ledgerService := ledger.NewService(store, cache, approvals, converter, ledger.Config{
		Limits:              limits,
		DefaultCurrency:     cfg.DefaultCurrency,
		SupportedCurrencies: cfg.SupportedCurrencies,
	}, log.Named("ledger"))

	reversals := reversal.NewService(store, cache, notifier, log.Named("reversal"))
	agingService := aging.NewService(store, ledgerService, approvals, reversals,
		cfg.InterestRate, cfg.BatchSize, log.Named("aging"))
	authService := auth.NewService(store.Users(), cfg.JWTSecret, cfg.TokenTTL, log.Named("auth"))

	app := fiber.New(fiber.Config{
		AppName: "tally",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	handlers.SetupRoutes(app, handlers.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Wallet:      handlers.NewWalletHandler(ledgerService),
		Transfer:    handlers.NewTransferHandler(ledgerService),
		Transaction: handlers.NewTransactionHandler(ledgerService),
		Admin:       handlers.NewAdminHandler(ledgerService, approvals, reversals, agingService),
	}, middleware.NewAuthMiddleware(cfg.JWTSecret, log.Named("auth")))

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
