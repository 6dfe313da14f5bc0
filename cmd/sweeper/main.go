// Package main is the one-shot batch binary: it assesses interest on
// every indebted wallet and rejects pending entries that outlived their
// TTL, then exits. Intended to run from cron.
package main

import (
	"context"
	"os"
	"time"

	"tally/internal/config"
	"tally/internal/logger"
	"tally/internal/notification"
	"tally/internal/repositories"
	"tally/internal/services/aging"
	"tally/internal/services/approval"
	"tally/internal/services/exchange"
	"tally/internal/services/ledger"
	"tally/internal/services/reversal"
	"tally/internal/validation"

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

	limits := validation.Limits{
		MaxTransactionAmount: cfg.MaxTransactionAmount,
		MaxCreditLimit:       cfg.MaxCreditLimit,
	}
	notifier := notification.NewLogNotifier(log.Named("notify"))
	approvals := approval.NewService(store, notifier, limits, log.Named("approval"))
	converter := exchange.NewConverter(exchange.NewStaticSource(cfg.ExchangeRates))
	ledgerService := ledger.NewService(store, nil, approvals, converter, ledger.Config{
		Limits:              limits,
		DefaultCurrency:     cfg.DefaultCurrency,
		SupportedCurrencies: cfg.SupportedCurrencies,
	}, log.Named("ledger"))
	reversals := reversal.NewService(store, nil, notifier, log.Named("reversal"))
	agingService := aging.NewService(store, ledgerService, approvals, reversals,
		cfg.InterestRate, cfg.BatchSize, log.Named("aging"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	failed := false

	interest, err := agingService.ProcessAllWallets(ctx)
	if err != nil {
		log.Error("interest sweep aborted", zap.Error(err))
		failed = true
	}
	log.Info("interest sweep",
		zap.Int("processed", interest.Processed), zap.Int("failed", interest.Failed))

	cutoff := time.Now().Add(-cfg.PendingTTL)
	stale, err := agingService.RejectPendingOlderThan(ctx, cutoff, "expired")
	if err != nil {
		log.Error("pending sweep aborted", zap.Error(err))
		failed = true
	}
	log.Info("pending sweep",
		zap.Int("processed", stale.Processed), zap.Int("failed", stale.Failed))

	if failed || interest.Failed > 0 || stale.Failed > 0 {
		os.Exit(1)
	}
}
