package credit

import (
	"testing"

	"tally/internal/models"
	"tally/internal/money"

	"github.com/stretchr/testify/assert"
)

func TestApplyDepositRepaysDebt(t *testing.T) {
	// Debt 50.00 on a 100.00 credit line; deposit 80.00 repays the debt
	// in full and leaves 30.00 principal.
	w := &models.Wallet{Balance: -5000, Credit: 10000, IsActive: true}

	repaid := ApplyDeposit(w, money.MustParse("80.00"))

	assert.Equal(t, "50.00", repaid.String())
	assert.Equal(t, int64(3000), w.Balance)
	assert.True(t, Debt(w).IsZero())
}

func TestApplyDepositPartialRepayment(t *testing.T) {
	w := &models.Wallet{Balance: -5000, Credit: 10000, IsActive: true}

	repaid := ApplyDeposit(w, money.MustParse("20.00"))

	assert.Equal(t, "20.00", repaid.String())
	assert.Equal(t, int64(-3000), w.Balance)
	assert.Equal(t, "30.00", Debt(w).String())
}

func TestApplyDepositNoDebt(t *testing.T) {
	w := &models.Wallet{Balance: 1000, IsActive: true}

	repaid := ApplyDeposit(w, money.MustParse("5.00"))

	assert.True(t, repaid.IsZero())
	assert.Equal(t, int64(1500), w.Balance)
}

func TestHasSufficientFunds(t *testing.T) {
	w := &models.Wallet{Balance: 10000, Locked: 4000, Credit: 5000, IsActive: true}

	// Unlocked principal is 60.00; with credit the ceiling is 110.00.
	assert.True(t, HasSufficientFunds(w, money.MustParse("60.00"), true))
	assert.False(t, HasSufficientFunds(w, money.MustParse("60.01"), true))
	assert.True(t, HasSufficientFunds(w, money.MustParse("110.00"), false))
	assert.False(t, HasSufficientFunds(w, money.MustParse("110.01"), false))
}

func TestCalculateInterest(t *testing.T) {
	inDebt := &models.Wallet{Balance: -10000, Credit: 20000, IsActive: true}
	assert.Equal(t, "5.00", CalculateInterest(inDebt, 0.05).String())

	solvent := &models.Wallet{Balance: 10000, IsActive: true}
	assert.True(t, CalculateInterest(solvent, 0.05).IsZero())

	assert.True(t, CalculateInterest(inDebt, 0).IsZero())
}

func TestAvailableCreditAndFunds(t *testing.T) {
	w := &models.Wallet{Balance: -2500, Credit: 10000, IsActive: true}
	assert.Equal(t, "75.00", AvailableCredit(w).String())
	assert.Equal(t, "75.00", AvailableFunds(w).String())
}
