// Package aging runs the periodic sweeps: interest assessment against
// outstanding debt, rejection of stale pending entries and bulk
// rollback of approved entries by type. Sweeps iterate in bounded
// chunks and isolate per-item failures; one bad record never aborts a
// batch.
package aging

import (
	"context"
	"time"

	"tally/internal/models"
	"tally/internal/repositories"
	"tally/internal/services/approval"
	"tally/internal/services/credit"
	"tally/internal/services/ledger"
	"tally/internal/services/reversal"

	"go.uber.org/zap"
)

const defaultBatchSize = 100

// Report counts the outcome of one sweep.
type Report struct {
	Processed int
	Failed    int
}

// Service drives the batch sweeps.
type Service struct {
	store        repositories.Store
	entries      *ledger.Service
	approvals    *approval.Service
	reversals    *reversal.Service
	interestRate float64
	batchSize    int
	log          *zap.Logger
}

// NewService creates the aging service. interestRate is the flat
// per-sweep rate applied to outstanding debt.
func NewService(
	store repositories.Store,
	entries *ledger.Service,
	approvals *approval.Service,
	reversals *reversal.Service,
	interestRate float64,
	batchSize int,
	log *zap.Logger,
) *Service {
	if store == nil {
		panic("store is required")
	}
	if entries == nil {
		panic("ledger service is required")
	}
	if approvals == nil {
		panic("approval service is required")
	}
	if reversals == nil {
		panic("reversal service is required")
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:        store,
		entries:      entries,
		approvals:    approvals,
		reversals:    reversals,
		interestRate: interestRate,
		batchSize:    batchSize,
		log:          log,
	}
}

// ProcessWalletAging assesses interest against one wallet's debt. A
// wallet without debt, or whose computed interest rounds to zero, is a
// no-op.
func (s *Service) ProcessWalletAging(ctx context.Context, w *models.Wallet) error {
	if credit.Debt(w).IsZero() {
		return nil
	}
	interest := credit.CalculateInterest(w, s.interestRate)
	if !interest.IsPositive() {
		return nil
	}

	_, err := s.entries.ChargeInterest(ctx, w.ID, interest, ledger.Options{
		AutoApprove: true,
		InitiatedBy: "aging",
		Context:     "debt interest sweep",
	})
	return err
}

// ProcessAllWallets sweeps every active wallet carrying debt, in
// bounded chunks. Per-wallet failures are logged and counted; the sweep
// always runs to completion.
func (s *Service) ProcessAllWallets(ctx context.Context) (Report, error) {
	var report Report
	err := s.store.Wallets().FindDebtorsInBatches(ctx, s.batchSize, func(batch []*models.Wallet) error {
		for _, w := range batch {
			if err := s.ProcessWalletAging(ctx, w); err != nil {
				report.Failed++
				s.log.Warn("wallet aging failed",
					zap.Uint("wallet_id", w.ID), zap.Error(err))
				continue
			}
			report.Processed++
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	s.log.Info("aging sweep finished",
		zap.Int("processed", report.Processed), zap.Int("failed", report.Failed))
	return report, nil
}

// RejectPendingOlderThan rejects pending entries created before cutoff,
// each independently.
func (s *Service) RejectPendingOlderThan(ctx context.Context, cutoff time.Time, reason string) (Report, error) {
	var report Report
	err := s.store.Transactions().FindPendingInBatches(ctx, cutoff, s.batchSize, func(batch []*models.Transaction) error {
		for _, txn := range batch {
			if _, err := s.approvals.Reject(ctx, txn, reason); err != nil {
				report.Failed++
				s.log.Warn("stale pending rejection failed",
					zap.String("transaction_id", txn.ID), zap.Error(err))
				continue
			}
			report.Processed++
		}
		return nil
	})
	return report, err
}

// RollbackApprovedByTypeOlderThan reverses approved entries of one type
// created before cutoff, each independently.
func (s *Service) RollbackApprovedByTypeOlderThan(ctx context.Context, typ models.TransactionType, cutoff time.Time, reason string) (Report, error) {
	var report Report
	err := s.store.Transactions().FindApprovedByTypeInBatches(ctx, typ, cutoff, s.batchSize, func(batch []*models.Transaction) error {
		for _, txn := range batch {
			if _, err := s.reversals.Rollback(ctx, txn, reason); err != nil {
				report.Failed++
				s.log.Warn("bulk rollback failed",
					zap.String("transaction_id", txn.ID), zap.Error(err))
				continue
			}
			report.Processed++
		}
		return nil
	})
	return report, err
}
