package models

import (
	"testing"

	"tally/internal/money"

	"github.com/stretchr/testify/assert"
)

func TestWalletDerivedFields(t *testing.T) {
	tests := []struct {
		name          string
		balance       int64
		locked        int64
		credit        int64
		wantAvailable string
		wantDebt      string
		wantFunds     string
		wantRemCredit string
	}{
		{
			name:    "plain positive balance",
			balance: 10000, locked: 0, credit: 0,
			wantAvailable: "100.00", wantDebt: "0.00", wantFunds: "100.00", wantRemCredit: "0.00",
		},
		{
			name:    "locked subset",
			balance: 10000, locked: 3000, credit: 0,
			wantAvailable: "70.00", wantDebt: "0.00", wantFunds: "70.00", wantRemCredit: "0.00",
		},
		{
			name:    "credit extends funds but not available balance",
			balance: 5000, locked: 0, credit: 10000,
			wantAvailable: "50.00", wantDebt: "0.00", wantFunds: "150.00", wantRemCredit: "100.00",
		},
		{
			name:    "debt against credit line",
			balance: -5000, locked: 0, credit: 10000,
			wantAvailable: "0.00", wantDebt: "50.00", wantFunds: "50.00", wantRemCredit: "50.00",
		},
		{
			name:    "locked exceeds balance falls back to credit headroom",
			balance: 2000, locked: 5000, credit: 10000,
			wantAvailable: "0.00", wantDebt: "0.00", wantFunds: "100.00", wantRemCredit: "100.00",
		},
		{
			name:    "debt with positive locked",
			balance: -3000, locked: 1000, credit: 10000,
			wantAvailable: "0.00", wantDebt: "30.00", wantFunds: "70.00", wantRemCredit: "70.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Wallet{Balance: tt.balance, Locked: tt.locked, Credit: tt.credit}
			assert.Equal(t, tt.wantAvailable, w.AvailableBalance().String())
			assert.Equal(t, tt.wantDebt, w.Debt().String())
			assert.Equal(t, tt.wantFunds, w.AvailableFunds().String())
			assert.Equal(t, tt.wantRemCredit, w.RemainingCredit().String())
		})
	}
}

func TestWalletInvariants(t *testing.T) {
	w := &Wallet{Balance: -7500, Locked: 2500, Credit: 10000}

	// debt == max(0, -balance)
	assert.Equal(t, money.FromCents(7500), w.Debt())
	// available_balance == max(0, balance - locked)
	assert.Equal(t, money.Zero, w.AvailableBalance())
}

func TestEnumValidity(t *testing.T) {
	for _, typ := range []TransactionType{
		TypeDeposit, TypeWithdraw, TypeLock, TypeUnlock,
		TypeCreditGrant, TypeCreditRevoke, TypeCreditRepay, TypeInterestCharge,
	} {
		assert.True(t, typ.Valid(), string(typ))
	}
	assert.False(t, TransactionType("refund").Valid())
	assert.False(t, TransactionType("").Valid())

	for _, st := range []TransactionStatus{StatusPending, StatusApproved, StatusRejected, StatusReversed} {
		assert.True(t, st.Valid(), string(st))
	}
	assert.False(t, TransactionStatus("completed").Valid())
}
