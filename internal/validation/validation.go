// Package validation holds the stateless precondition checks run before
// any ledger entry is created or approved. Each check fails with a
// distinct sentinel error and never mutates wallet state.
package validation

import (
	"fmt"

	"tally/internal/models"
	"tally/internal/money"
)

// Limits are the configured ceilings validations check against.
type Limits struct {
	MaxTransactionAmount money.Money
	MaxCreditLimit       money.Money
}

// Amount checks that amount is positive and within the configured
// per-transaction maximum (overflow guard).
func Amount(amount money.Money, limits Limits) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: must be positive, got %s", ErrInvalidAmount, amount)
	}
	if limits.MaxTransactionAmount.IsPositive() && amount.GreaterThan(limits.MaxTransactionAmount) {
		return fmt.Errorf("%w: %s exceeds maximum %s", ErrInvalidAmount, amount, limits.MaxTransactionAmount)
	}
	return nil
}

// WalletActive checks the wallet exists and is active.
func WalletActive(w *models.Wallet) error {
	if w == nil {
		return ErrWalletNotFound
	}
	if !w.IsActive {
		return ErrWalletInactive
	}
	return nil
}

// Withdrawal checks amount against available funds: unlocked principal
// plus credit headroom.
func Withdrawal(w *models.Wallet, amount money.Money) error {
	if funds := w.AvailableFunds(); amount.GreaterThan(funds) {
		return fmt.Errorf("%w: requested %s, available %s", ErrInsufficientFunds, amount, funds)
	}
	return nil
}

// Lock checks amount against the available balance only. Credit never
// extends lockable funds.
func Lock(w *models.Wallet, amount money.Money) error {
	if avail := w.AvailableBalance(); amount.GreaterThan(avail) {
		return fmt.Errorf("%w: requested lock %s, available balance %s", ErrInsufficientFunds, amount, avail)
	}
	return nil
}

// Unlock checks amount against the currently locked funds.
func Unlock(w *models.Wallet, amount money.Money) error {
	if locked := w.LockedMoney(); amount.GreaterThan(locked) {
		return fmt.Errorf("%w: requested unlock %s, locked %s", ErrInsufficientFunds, amount, locked)
	}
	return nil
}

// CreditGrant checks the grant would not push the credit line past the
// configured maximum.
func CreditGrant(w *models.Wallet, amount money.Money, limits Limits) error {
	if limits.MaxCreditLimit.IsPositive() && w.CreditMoney().Add(amount).GreaterThan(limits.MaxCreditLimit) {
		return fmt.Errorf("%w: credit would exceed maximum %s", ErrCreditLimitExceeded, limits.MaxCreditLimit)
	}
	return nil
}

// CreditRevoke checks the amount does not exceed the current credit
// line and that revoking it would not leave uncollateralized debt.
func CreditRevoke(w *models.Wallet, amount money.Money) error {
	if amount.GreaterThan(w.CreditMoney()) {
		return fmt.Errorf("%w: requested revoke %s, credit %s", ErrInsufficientFunds, amount, w.CreditMoney())
	}
	if w.Debt().GreaterThan(w.CreditMoney().Sub(amount)) {
		return fmt.Errorf("%w: debt %s would exceed remaining credit", ErrOutstandingDebt, w.Debt())
	}
	return nil
}

// ForApproval re-checks a pending entry against the current (locked)
// wallet state. Deposit-like types only need an amount check; funds are
// re-validated for everything that draws on them.
func ForApproval(txn *models.Transaction, w *models.Wallet, limits Limits) error {
	if !txn.IsPending() {
		return ErrNotPending
	}
	if err := Amount(txn.Amount(), limits); err != nil {
		return err
	}

	switch txn.Type {
	case models.TypeDeposit, models.TypeCreditRepay, models.TypeInterestCharge:
		return nil
	case models.TypeWithdraw:
		return Withdrawal(w, txn.Amount())
	case models.TypeLock:
		return Lock(w, txn.Amount())
	case models.TypeUnlock:
		return Unlock(w, txn.Amount())
	case models.TypeCreditGrant:
		return CreditGrant(w, txn.Amount(), limits)
	case models.TypeCreditRevoke:
		return CreditRevoke(w, txn.Amount())
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, txn.Type)
	}
}
