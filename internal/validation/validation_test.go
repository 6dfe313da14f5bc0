package validation

import (
	"testing"

	"tally/internal/models"
	"tally/internal/money"

	"github.com/stretchr/testify/assert"
)

var testLimits = Limits{
	MaxTransactionAmount: money.MustParse("10000.00"),
	MaxCreditLimit:       money.MustParse("500.00"),
}

func TestAmount(t *testing.T) {
	assert.NoError(t, Amount(money.MustParse("1.00"), testLimits))
	assert.ErrorIs(t, Amount(money.Zero, testLimits), ErrInvalidAmount)
	assert.ErrorIs(t, Amount(money.MustParse("-5.00"), testLimits), ErrInvalidAmount)
	assert.ErrorIs(t, Amount(money.MustParse("10000.01"), testLimits), ErrInvalidAmount)
}

func TestWalletActive(t *testing.T) {
	assert.ErrorIs(t, WalletActive(nil), ErrWalletNotFound)
	assert.ErrorIs(t, WalletActive(&models.Wallet{IsActive: false}), ErrWalletInactive)
	assert.NoError(t, WalletActive(&models.Wallet{IsActive: true}))
}

func TestWithdrawal(t *testing.T) {
	// Credit extends withdrawable funds.
	w := &models.Wallet{Balance: 5000, Credit: 10000, IsActive: true}
	assert.NoError(t, Withdrawal(w, money.MustParse("150.00")))
	assert.ErrorIs(t, Withdrawal(w, money.MustParse("150.01")), ErrInsufficientFunds)

	// A zero wallet with no credit has nothing to give.
	empty := &models.Wallet{IsActive: true}
	assert.ErrorIs(t, Withdrawal(empty, money.MustParse("0.01")), ErrInsufficientFunds)
}

func TestLockAndUnlock(t *testing.T) {
	w := &models.Wallet{Balance: 10000, Locked: 3000, Credit: 50000, IsActive: true}

	// Credit never extends lockable funds.
	assert.NoError(t, Lock(w, money.MustParse("70.00")))
	assert.ErrorIs(t, Lock(w, money.MustParse("70.01")), ErrInsufficientFunds)

	assert.NoError(t, Unlock(w, money.MustParse("30.00")))
	assert.ErrorIs(t, Unlock(w, money.MustParse("30.01")), ErrInsufficientFunds)
}

func TestCreditGrant(t *testing.T) {
	w := &models.Wallet{Credit: 40000, IsActive: true}
	assert.NoError(t, CreditGrant(w, money.MustParse("100.00"), testLimits))
	assert.ErrorIs(t, CreditGrant(w, money.MustParse("100.01"), testLimits), ErrCreditLimitExceeded)
}

func TestCreditRevoke(t *testing.T) {
	w := &models.Wallet{Balance: -5000, Credit: 10000, IsActive: true}

	// Can revoke down to the collateral needed for existing debt.
	assert.NoError(t, CreditRevoke(w, money.MustParse("50.00")))
	assert.ErrorIs(t, CreditRevoke(w, money.MustParse("50.01")), ErrOutstandingDebt)
	assert.ErrorIs(t, CreditRevoke(w, money.MustParse("100.01")), ErrInsufficientFunds)
}

func TestForApproval(t *testing.T) {
	w := &models.Wallet{Balance: 1000, IsActive: true}

	pendingDeposit := &models.Transaction{Type: models.TypeDeposit, AmountCents: 100000, Status: models.StatusPending}
	assert.NoError(t, ForApproval(pendingDeposit, w, testLimits))

	approved := &models.Transaction{Type: models.TypeDeposit, AmountCents: 100, Status: models.StatusApproved}
	assert.ErrorIs(t, ForApproval(approved, w, testLimits), ErrNotPending)

	// Withdrawal re-checks funds against the current wallet state.
	pendingWithdraw := &models.Transaction{Type: models.TypeWithdraw, AmountCents: 2000, Status: models.StatusPending}
	assert.ErrorIs(t, ForApproval(pendingWithdraw, w, testLimits), ErrInsufficientFunds)

	// Interest charges never check funds; that is the point of debt.
	interest := &models.Transaction{Type: models.TypeInterestCharge, AmountCents: 2000, Status: models.StatusPending}
	assert.NoError(t, ForApproval(interest, w, testLimits))

	unknown := &models.Transaction{Type: "chargeback", AmountCents: 100, Status: models.StatusPending}
	assert.ErrorIs(t, ForApproval(unknown, w, testLimits), ErrUnknownType)
}
