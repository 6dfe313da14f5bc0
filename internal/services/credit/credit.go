// Package credit implements the accounting rules for the wallet credit
// line: debt, headroom and funds calculations, debt-aware deposit
// application and flat interest assessment.
//
// Everything here operates on an in-memory wallet snapshot. ApplyDeposit
// mutates the snapshot but never persists it; committing the change is
// the caller's job, inside its own lock scope.
package credit

import (
	"tally/internal/models"
	"tally/internal/money"
)

// Debt is the magnitude of a negative balance.
func Debt(w *models.Wallet) money.Money { return w.Debt() }

// AvailableCredit is credit minus debt, floored at zero.
func AvailableCredit(w *models.Wallet) money.Money { return w.RemainingCredit() }

// AvailableFunds is the total a withdrawal may draw on.
func AvailableFunds(w *models.Wallet) money.Money { return w.AvailableFunds() }

// HasSufficientFunds reports whether amount is covered. With
// unlockedOnly set, only unlocked principal counts; otherwise the
// credit line extends the answer.
func HasSufficientFunds(w *models.Wallet, amount money.Money, unlockedOnly bool) bool {
	if unlockedOnly {
		return amount.LTE(w.AvailableBalance())
	}
	return amount.LTE(w.AvailableFunds())
}

// ApplyDeposit increases the wallet balance by amount and returns how
// much outstanding debt the deposit repaid (zero when none). The wallet
// is not persisted here.
func ApplyDeposit(w *models.Wallet, amount money.Money) (repaid money.Money) {
	before := w.Debt()
	w.Balance += amount.Cents()
	after := w.Debt()
	if after.LessThan(before) {
		return before.Sub(after)
	}
	return money.Zero
}

// CalculateInterest returns debt * rate: a flat charge against the
// current debt, no day count, no compounding.
func CalculateInterest(w *models.Wallet, rate float64) money.Money {
	debt := w.Debt()
	if debt.IsZero() || rate <= 0 {
		return money.Zero
	}
	return debt.Mul(rate)
}
