// Package approval implements the transaction state machine. It is the
// only code permitted to mutate wallet balances: every delta is applied
// to a wallet row read under an exclusive lock, inside the same
// database transaction that flips the entry's status.
package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tally/internal/models"
	"tally/internal/money"
	"tally/internal/notification"
	"tally/internal/repositories"
	"tally/internal/services/credit"
	"tally/internal/validation"

	"go.uber.org/zap"
)

const reasonWalletUnavailable = "Wallet is not active or not found"

// Service drives pending entries to approved or rejected.
type Service struct {
	store    repositories.Store
	notifier notification.Notifier
	limits   validation.Limits
	log      *zap.Logger
}

// NewService creates the approval service.
func NewService(store repositories.Store, notifier notification.Notifier, limits validation.Limits, log *zap.Logger) *Service {
	if store == nil {
		panic("store is required")
	}
	if notifier == nil {
		panic("notifier is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, notifier: notifier, limits: limits, log: log}
}

// Approve drives a pending entry to approved, applying its balance
// delta under a wallet row lock. It returns false without error when
// the entry is not pending (idempotent no-op) or when the approval was
// downgraded to a rejection: a missing or inactive wallet, failed
// re-validation against the locked wallet state, or an internal failure
// all reject the entry rather than leave it pending. A non-nil error
// means the rejection itself could not be persisted.
func (s *Service) Approve(ctx context.Context, txn *models.Transaction) (bool, error) {
	if !txn.IsPending() {
		return false, nil
	}

	var approved bool
	err := s.store.ExecuteInTransaction(ctx, func(st repositories.Store) error {
		ok, innerErr := s.ApproveWithin(ctx, st, txn)
		approved = ok
		return innerErr
	})
	if err != nil {
		// The transaction rolled back; undo the in-memory status flip so
		// the downgrade sees a pending entry, then reject it for real.
		txn.Status = models.StatusPending
		delete(txn.Meta, "approved_at")
		if errors.Is(err, repositories.ErrStatusConflict) {
			// Another writer decided the entry; treat like not-pending.
			s.refresh(ctx, txn)
			return false, nil
		}
		if _, rejErr := s.Reject(ctx, txn, err.Error()); rejErr != nil {
			return false, fmt.Errorf("approval failed and rejection could not be persisted: %v: %w", rejErr, err)
		}
		s.log.Warn("approval downgraded to rejection",
			zap.String("transaction_id", txn.ID),
			zap.Error(err))
		return false, nil
	}
	return approved, nil
}

// ApproveWithin runs the approval inside an already-open unit of work.
// Used by transfer and reversal composition, where the caller holds the
// wallet locks. Validation failures persist a rejection and return
// false; only infrastructure errors are returned.
func (s *Service) ApproveWithin(ctx context.Context, st repositories.Store, txn *models.Transaction) (bool, error) {
	if !txn.IsPending() {
		return false, nil
	}

	w, err := st.Wallets().GetByIDForUpdate(ctx, txn.WalletID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return false, s.rejectIn(ctx, st, txn, reasonWalletUnavailable)
		}
		return false, err
	}
	if !w.IsActive {
		return false, s.rejectIn(ctx, st, txn, reasonWalletUnavailable)
	}

	// Re-validate against the locked, current wallet state. The entry
	// may have been created against a snapshot that is long stale.
	if err := validation.ForApproval(txn, w, s.limits); err != nil {
		return false, s.rejectIn(ctx, st, txn, err.Error())
	}

	// Claim the entry before touching the wallet: the status-guarded
	// update makes the pending -> approved flip exactly-once even when
	// two callers race on the same entry.
	txn.Status = models.StatusApproved
	txn.SetMeta("approved_at", time.Now().UTC().Format(time.RFC3339))
	if err := st.Transactions().UpdateIfStatus(ctx, txn, models.StatusPending); err != nil {
		return false, err
	}

	repaid := ApplyDelta(w, txn.Type, txn.Amount())
	if err := st.Wallets().Update(ctx, w); err != nil {
		return false, err
	}

	s.notify(ctx, w, txn, repaid)
	return true, nil
}

// Reject drives a pending entry to rejected, recording the reason in
// its meta. No wallet state is touched. Returns false when the entry is
// not pending.
func (s *Service) Reject(ctx context.Context, txn *models.Transaction, reason string) (bool, error) {
	if !txn.IsPending() {
		return false, nil
	}
	if err := s.applyRejection(ctx, s.store, txn, reason); err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			// Decided elsewhere while we held a stale copy.
			s.refresh(ctx, txn)
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// refresh replaces the caller's stale copy with the stored entry, best
// effort.
func (s *Service) refresh(ctx context.Context, txn *models.Transaction) {
	if fresh, err := s.store.Transactions().GetByID(ctx, txn.ID); err == nil {
		*txn = *fresh
	}
}

func (s *Service) rejectIn(ctx context.Context, st repositories.Store, txn *models.Transaction, reason string) error {
	s.log.Info("rejecting transaction",
		zap.String("transaction_id", txn.ID),
		zap.String("reason", reason))
	return s.applyRejection(ctx, st, txn, reason)
}

func (s *Service) applyRejection(ctx context.Context, st repositories.Store, txn *models.Transaction, reason string) error {
	txn.Status = models.StatusRejected
	txn.SetMeta("rejection_reason", reason)
	txn.SetMeta("rejected_at", time.Now().UTC().Format(time.RFC3339))
	if err := st.Transactions().UpdateIfStatus(ctx, txn, models.StatusPending); err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			return err
		}
		return fmt.Errorf("failed to persist rejection: %w", err)
	}
	return nil
}

// ApplyDelta applies the type-specific balance mutation to the wallet
// snapshot and returns the debt repaid by deposit-like types. The
// wallet is not persisted here. Types are validated at the model
// boundary, so an unknown type reaching this switch is a programming
// error.
func ApplyDelta(w *models.Wallet, typ models.TransactionType, amount money.Money) (repaid money.Money) {
	switch typ {
	case models.TypeDeposit, models.TypeCreditRepay:
		return credit.ApplyDeposit(w, amount)
	case models.TypeWithdraw, models.TypeInterestCharge:
		w.Balance -= amount.Cents()
	case models.TypeLock:
		w.Locked += amount.Cents()
	case models.TypeUnlock:
		w.Locked -= amount.Cents()
	case models.TypeCreditGrant:
		w.Credit += amount.Cents()
	case models.TypeCreditRevoke:
		w.Credit -= amount.Cents()
	default:
		panic(fmt.Sprintf("approval: no delta for transaction type %q", typ))
	}
	return money.Zero
}

func (s *Service) notify(ctx context.Context, w *models.Wallet, txn *models.Transaction, repaid money.Money) {
	switch txn.Type {
	case models.TypeDeposit:
		s.notifier.Deposited(ctx, w, txn)
		if repaid.IsPositive() {
			s.notifier.CreditRepaid(ctx, w, txn, repaid)
		}
	case models.TypeCreditRepay:
		if repaid.IsPositive() {
			s.notifier.CreditRepaid(ctx, w, txn, repaid)
		}
	case models.TypeWithdraw:
		s.notifier.Withdrawn(ctx, w, txn)
	case models.TypeCreditGrant:
		s.notifier.CreditGranted(ctx, w, txn)
	}
}
