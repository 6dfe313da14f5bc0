// Package reversal generates corrective opposing entries for approved
// transactions. A rollback re-applies the inverse balance delta under
// the wallet row lock, marks the original entry reversed and records a
// new sibling entry of the mirrored type, preserving both sides of the
// audit trail.
package reversal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tally/internal/models"
	"tally/internal/notification"
	"tally/internal/repositories"
	"tally/internal/services/approval"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

var (
	ErrNotApproved = errors.New("only approved transactions can be reversed")
	ErrNoMirror    = errors.New("transaction type has no mirror")
)

// mirrors maps each type to the type that undoes it.
var mirrors = map[models.TransactionType]models.TransactionType{
	models.TypeDeposit:        models.TypeWithdraw,
	models.TypeCreditRepay:    models.TypeWithdraw,
	models.TypeWithdraw:       models.TypeDeposit,
	models.TypeInterestCharge: models.TypeDeposit,
	models.TypeLock:           models.TypeUnlock,
	models.TypeUnlock:         models.TypeLock,
	models.TypeCreditGrant:    models.TypeCreditRevoke,
	models.TypeCreditRevoke:   models.TypeCreditGrant,
}

// Service reverses approved ledger entries.
type Service struct {
	store    repositories.Store
	cache    repositories.WalletCache
	notifier notification.Notifier
	log      *zap.Logger
}

func NewService(store repositories.Store, cache repositories.WalletCache, notifier notification.Notifier, log *zap.Logger) *Service {
	if store == nil {
		panic("store is required")
	}
	if notifier == nil {
		panic("notifier is required")
	}
	if cache == nil {
		cache = repositories.NoopWalletCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, cache: cache, notifier: notifier, log: log}
}

// Rollback undoes an approved entry. It applies the mirror delta to the
// locked wallet, marks the original reversed and creates the mirrored
// sibling entry directly approved: reversals are corrective and already
// hold the wallet lock, so they do not pass back through the pending
// validation gate. Returns the sibling entry.
func (s *Service) Rollback(ctx context.Context, txn *models.Transaction, reason string) (*models.Transaction, error) {
	if txn.Status != models.StatusApproved {
		return nil, fmt.Errorf("%w: transaction %s is %s", ErrNotApproved, txn.ID, txn.Status)
	}
	mirror, ok := mirrors[txn.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoMirror, txn.Type)
	}

	var sibling *models.Transaction
	var wallet *models.Wallet
	err := s.store.ExecuteInTransaction(ctx, func(st repositories.Store) error {
		w, err := st.Wallets().GetByIDForUpdate(ctx, txn.WalletID)
		if err != nil {
			return err
		}

		// Claim the original before touching the wallet: the guarded
		// flip makes the reversal exactly-once when two callers race on
		// a stale copy.
		now := time.Now().UTC()
		txn.Status = models.StatusReversed
		txn.SetMeta("reversal_reason", reason)
		txn.SetMeta("reversed_at", now.Format(time.RFC3339))
		if err := st.Transactions().UpdateIfStatus(ctx, txn, models.StatusApproved); err != nil {
			return err
		}

		approval.ApplyDelta(w, mirror, txn.Amount())
		if err := st.Wallets().Update(ctx, w); err != nil {
			return err
		}

		sibling = &models.Transaction{
			ID:          ulid.Make().String(),
			WalletID:    txn.WalletID,
			Type:        mirror,
			AmountCents: txn.AmountCents,
			Description: fmt.Sprintf("Reversal of transaction %s", txn.ID),
			Reference:   txn.Reference,
			Status:      models.StatusApproved,
			Meta: models.JSON{
				"reversed_transaction_id": txn.ID,
				"reversal_reason":         reason,
				"approved_at":             now.Format(time.RFC3339),
			},
		}
		if err := st.Transactions().Create(ctx, sibling); err != nil {
			return err
		}

		wallet = w
		return nil
	})
	if err != nil {
		// The transaction rolled back; undo the in-memory status flip.
		txn.Status = models.StatusApproved
		delete(txn.Meta, "reversal_reason")
		delete(txn.Meta, "reversed_at")
		return nil, fmt.Errorf("rollback of transaction %s failed: %w", txn.ID, err)
	}

	if err := s.cache.Invalidate(ctx, txn.WalletID); err != nil {
		s.log.Debug("wallet cache invalidation failed",
			zap.Uint("wallet_id", txn.WalletID), zap.Error(err))
	}

	s.log.Info("transaction reversed",
		zap.String("transaction_id", txn.ID),
		zap.String("reversal_id", sibling.ID),
		zap.String("reason", reason))
	s.notifier.Reversed(ctx, wallet, txn, sibling)
	return sibling, nil
}
