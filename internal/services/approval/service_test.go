package approval

import (
	"context"
	"testing"

	"tally/internal/models"
	"tally/internal/money"
	"tally/internal/notification"
	"tally/internal/repositories"
	"tally/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, repositories.Store, *notification.Recorder) {
	t.Helper()
	store := repositories.NewMemoryStore()
	recorder := &notification.Recorder{}
	svc := NewService(store, recorder, validation.Limits{}, nil)
	return svc, store, recorder
}

func seedWallet(t *testing.T, store repositories.Store, w *models.Wallet) *models.Wallet {
	t.Helper()
	require.NoError(t, store.Wallets().Create(context.Background(), w))
	return w
}

func seedPending(t *testing.T, store repositories.Store, id string, walletID uint, typ models.TransactionType, amount string) *models.Transaction {
	t.Helper()
	txn := &models.Transaction{
		ID:          id,
		WalletID:    walletID,
		Type:        typ,
		AmountCents: money.MustParse(amount).Cents(),
		Status:      models.StatusPending,
	}
	require.NoError(t, store.Transactions().Create(context.Background(), txn))
	return txn
}

func TestApproveDeposit(t *testing.T) {
	svc, store, recorder := newTestService(t)
	w := seedWallet(t, store, &models.Wallet{UserID: 1, Currency: "USD", IsActive: true})
	txn := seedPending(t, store, "txn-1", w.ID, models.TypeDeposit, "100.00")

	ok, err := svc.Approve(context.Background(), txn)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.StatusApproved, txn.Status)
	assert.Contains(t, txn.Meta, "approved_at")

	stored, err := store.Wallets().GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), stored.Balance)

	assert.Len(t, recorder.Named("deposited"), 1)
	assert.Empty(t, recorder.Named("credit_repaid"))
}

func TestApproveIsIdempotent(t *testing.T) {
	svc, store, _ := newTestService(t)
	w := seedWallet(t, store, &models.Wallet{UserID: 1, Currency: "USD", IsActive: true})
	txn := seedPending(t, store, "txn-1", w.ID, models.TypeDeposit, "100.00")

	ok, err := svc.Approve(context.Background(), txn)
	require.NoError(t, err)
	require.True(t, ok)

	// Second call must not re-apply the delta.
	ok, err = svc.Approve(context.Background(), txn)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := store.Wallets().GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), stored.Balance)
}

func TestApproveRefusesStaleCopy(t *testing.T) {
	svc, store, _ := newTestService(t)
	w := seedWallet(t, store, &models.Wallet{UserID: 1, Currency: "USD", IsActive: true})
	txn := seedPending(t, store, "txn-1", w.ID, models.TypeDeposit, "100.00")

	// A second caller holding a copy read before the first approval.
	stale, err := store.Transactions().GetByID(context.Background(), txn.ID)
	require.NoError(t, err)

	ok, err := svc.Approve(context.Background(), txn)
	require.NoError(t, err)
	require.True(t, ok)

	// The stale copy still looks pending, but the status-guarded flip
	// refuses it and the delta is not applied twice.
	ok, err = svc.Approve(context.Background(), stale)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.StatusApproved, stale.Status)

	stored, err := store.Wallets().GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), stored.Balance)
}

func TestRejectRefusesStaleCopy(t *testing.T) {
	svc, store, _ := newTestService(t)
	w := seedWallet(t, store, &models.Wallet{UserID: 1, Currency: "USD", IsActive: true})
	txn := seedPending(t, store, "txn-1", w.ID, models.TypeDeposit, "100.00")

	stale, err := store.Transactions().GetByID(context.Background(), txn.ID)
	require.NoError(t, err)

	ok, err := svc.Approve(context.Background(), txn)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.Reject(context.Background(), stale, "late rejection")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.StatusApproved, stale.Status)

	stored, err := store.Transactions().GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
	assert.NotContains(t, stored.Meta, "rejection_reason")
}

func TestApproveDepositRepaysDebt(t *testing.T) {
	svc, store, recorder := newTestService(t)
	w := seedWallet(t, store, &models.Wallet{UserID: 1, Currency: "USD", IsActive: true, Balance: -5000, Credit: 10000})
	txn := seedPending(t, store, "txn-1", w.ID, models.TypeDeposit, "80.00")

	ok, err := svc.Approve(context.Background(), txn)
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := store.Wallets().GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), stored.Balance)

	repaid := recorder.Named("credit_repaid")
	require.Len(t, repaid, 1)
	assert.Equal(t, money.MustParse("50.00"), repaid[0].Repaid)
}

func TestApproveDowngradesOnInsufficientFunds(t *testing.T) {
	svc, store, recorder := newTestService(t)
	w := seedWallet(t, store, &models.Wallet{UserID: 1, Currency: "USD", IsActive: true, Balance: 2000})
	txn := seedPending(t, store, "txn-1", w.ID, models.TypeWithdraw, "50.00")

	ok, err := svc.Approve(context.Background(), txn)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.StatusRejected, txn.Status)
	reason, _ := txn.Meta["rejection_reason"].(string)
	assert.Contains(t, reason, validation.ErrInsufficientFunds.Error())
	assert.Contains(t, txn.Meta, "rejected_at")

	stored, err := store.Wallets().GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), stored.Balance)
	assert.Empty(t, recorder.Events)
}

func TestApproveRejectsMissingWallet(t *testing.T) {
	svc, store, _ := newTestService(t)
	txn := seedPending(t, store, "txn-1", 42, models.TypeDeposit, "10.00")

	ok, err := svc.Approve(context.Background(), txn)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.StatusRejected, txn.Status)
	assert.Equal(t, reasonWalletUnavailable, txn.Meta["rejection_reason"])
}

func TestApproveRejectsInactiveWallet(t *testing.T) {
	svc, store, _ := newTestService(t)
	w := seedWallet(t, store, &models.Wallet{UserID: 1, Currency: "USD", IsActive: false, Balance: 10000})
	txn := seedPending(t, store, "txn-1", w.ID, models.TypeWithdraw, "10.00")

	ok, err := svc.Approve(context.Background(), txn)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.StatusRejected, txn.Status)
	assert.Equal(t, reasonWalletUnavailable, txn.Meta["rejection_reason"])
}

func TestApproveEnforcesTransactionLimit(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewService(store, &notification.Recorder{}, validation.Limits{
		MaxTransactionAmount: money.MustParse("500.00"),
	}, nil)
	w := seedWallet(t, store, &models.Wallet{UserID: 1, Currency: "USD", IsActive: true})
	txn := seedPending(t, store, "txn-1", w.ID, models.TypeDeposit, "600.00")

	ok, err := svc.Approve(context.Background(), txn)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.StatusRejected, txn.Status)
}

func TestReject(t *testing.T) {
	svc, store, _ := newTestService(t)
	w := seedWallet(t, store, &models.Wallet{UserID: 1, Currency: "USD", IsActive: true})
	txn := seedPending(t, store, "txn-1", w.ID, models.TypeDeposit, "100.00")

	ok, err := svc.Reject(context.Background(), txn, "manual review")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.StatusRejected, txn.Status)
	assert.Equal(t, "manual review", txn.Meta["rejection_reason"])

	// Rejecting again is a no-op, as is rejecting an approved entry.
	ok, err = svc.Reject(context.Background(), txn, "again")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "manual review", txn.Meta["rejection_reason"])

	stored, err := store.Wallets().GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Balance)
}

func TestApplyDelta(t *testing.T) {
	tests := []struct {
		name        string
		typ         models.TransactionType
		start       models.Wallet
		amount      string
		wantBalance int64
		wantLocked  int64
		wantCredit  int64
	}{
		{"withdraw", models.TypeWithdraw, models.Wallet{Balance: 10000}, "30.00", 7000, 0, 0},
		{"interest charge", models.TypeInterestCharge, models.Wallet{Balance: -5000, Credit: 10000}, "5.00", -5500, 0, 10000},
		{"lock", models.TypeLock, models.Wallet{Balance: 10000}, "30.00", 10000, 3000, 0},
		{"unlock", models.TypeUnlock, models.Wallet{Balance: 10000, Locked: 3000}, "20.00", 10000, 1000, 0},
		{"credit grant", models.TypeCreditGrant, models.Wallet{}, "100.00", 0, 0, 10000},
		{"credit revoke", models.TypeCreditRevoke, models.Wallet{Credit: 10000}, "40.00", 0, 0, 6000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.start
			repaid := ApplyDelta(&w, tt.typ, money.MustParse(tt.amount))
			assert.Equal(t, tt.wantBalance, w.Balance)
			assert.Equal(t, tt.wantLocked, w.Locked)
			assert.Equal(t, tt.wantCredit, w.Credit)
			assert.True(t, repaid.IsZero())
		})
	}
}

func TestApplyDeltaPanicsOnUnknownType(t *testing.T) {
	w := &models.Wallet{}
	assert.Panics(t, func() {
		ApplyDelta(w, models.TransactionType("teleport"), money.MustParse("1.00"))
	})
}
