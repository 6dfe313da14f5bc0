package reversal

import (
	"context"
	"testing"

	"tally/internal/models"
	"tally/internal/money"
	"tally/internal/notification"
	"tally/internal/repositories"
	"tally/internal/services/approval"
	"tally/internal/services/exchange"
	"tally/internal/services/ledger"
	"tally/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     repositories.Store
	approvals *approval.Service
	reversals *Service
	recorder  *notification.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	recorder := &notification.Recorder{}
	return &fixture{
		store:     store,
		approvals: approval.NewService(store, recorder, validation.Limits{}, nil),
		reversals: NewService(store, nil, recorder, nil),
		recorder:  recorder,
	}
}

func (f *fixture) wallet(t *testing.T, w models.Wallet) *models.Wallet {
	t.Helper()
	require.NoError(t, f.store.Wallets().Create(context.Background(), &w))
	return &w
}

// approved seeds a pending entry and drives it through approval, so the
// wallet state reflects the applied delta.
func (f *fixture) approved(t *testing.T, id string, walletID uint, typ models.TransactionType, amount string) *models.Transaction {
	t.Helper()
	txn := &models.Transaction{
		ID:          id,
		WalletID:    walletID,
		Type:        typ,
		AmountCents: money.MustParse(amount).Cents(),
		Status:      models.StatusPending,
	}
	require.NoError(t, f.store.Transactions().Create(context.Background(), txn))
	ok, err := f.approvals.Approve(context.Background(), txn)
	require.NoError(t, err)
	require.True(t, ok)
	return txn
}

func TestRollbackRestoresWalletState(t *testing.T) {
	tests := []struct {
		name   string
		start  models.Wallet
		typ    models.TransactionType
		amount string
		mirror models.TransactionType
	}{
		{"deposit", models.Wallet{Balance: 0}, models.TypeDeposit, "100.00", models.TypeWithdraw},
		{"withdraw", models.Wallet{Balance: 10000}, models.TypeWithdraw, "40.00", models.TypeDeposit},
		{"lock", models.Wallet{Balance: 10000}, models.TypeLock, "30.00", models.TypeUnlock},
		{"unlock", models.Wallet{Balance: 10000, Locked: 5000}, models.TypeUnlock, "20.00", models.TypeLock},
		{"credit grant", models.Wallet{}, models.TypeCreditGrant, "100.00", models.TypeCreditRevoke},
		{"credit revoke", models.Wallet{Credit: 10000}, models.TypeCreditRevoke, "40.00", models.TypeCreditGrant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			start := tt.start
			start.UserID = 1
			start.Currency = "USD"
			start.IsActive = true
			w := f.wallet(t, start)

			txn := f.approved(t, "txn-1", w.ID, tt.typ, tt.amount)

			sibling, err := f.reversals.Rollback(context.Background(), txn, "operator request")
			require.NoError(t, err)
			assert.Equal(t, tt.mirror, sibling.Type)
			assert.Equal(t, txn.AmountCents, sibling.AmountCents)
			assert.Equal(t, models.StatusApproved, sibling.Status)
			assert.Equal(t, txn.ID, sibling.Meta["reversed_transaction_id"])
			assert.Equal(t, "operator request", sibling.Meta["reversal_reason"])

			assert.Equal(t, models.StatusReversed, txn.Status)
			assert.Equal(t, "operator request", txn.Meta["reversal_reason"])

			after, err := f.store.Wallets().GetByID(context.Background(), w.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.start.Balance, after.Balance)
			assert.Equal(t, tt.start.Locked, after.Locked)
			assert.Equal(t, tt.start.Credit, after.Credit)
		})
	}
}

func TestRollbackRejectsNonApproved(t *testing.T) {
	f := newFixture(t)
	w := f.wallet(t, models.Wallet{UserID: 1, Currency: "USD", IsActive: true})

	pending := &models.Transaction{
		ID:          "txn-1",
		WalletID:    w.ID,
		Type:        models.TypeDeposit,
		AmountCents: 1000,
		Status:      models.StatusPending,
	}
	require.NoError(t, f.store.Transactions().Create(context.Background(), pending))

	_, err := f.reversals.Rollback(context.Background(), pending, "nope")
	assert.ErrorIs(t, err, ErrNotApproved)
}

func TestRollbackIsNotRepeatable(t *testing.T) {
	f := newFixture(t)
	w := f.wallet(t, models.Wallet{UserID: 1, Currency: "USD", IsActive: true})
	txn := f.approved(t, "txn-1", w.ID, models.TypeDeposit, "100.00")

	_, err := f.reversals.Rollback(context.Background(), txn, "first")
	require.NoError(t, err)

	// The original is now reversed, so a second rollback is refused and
	// the balance is not double-debited.
	_, err = f.reversals.Rollback(context.Background(), txn, "second")
	assert.ErrorIs(t, err, ErrNotApproved)

	after, err := f.store.Wallets().GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), after.Balance)
}

func TestRollbackCanDriveBalanceNegative(t *testing.T) {
	f := newFixture(t)
	w := f.wallet(t, models.Wallet{UserID: 1, Currency: "USD", IsActive: true})
	txn := f.approved(t, "txn-1", w.ID, models.TypeDeposit, "100.00")

	// Spend most of the deposit, then reverse it. Corrective entries do
	// not re-validate funds, so the wallet goes into debt.
	spend := f.approved(t, "txn-2", w.ID, models.TypeWithdraw, "80.00")
	_ = spend

	_, err := f.reversals.Rollback(context.Background(), txn, "chargeback")
	require.NoError(t, err)

	after, err := f.store.Wallets().GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-8000), after.Balance)
}

// mapCache is a WalletCache over a plain map, so tests can observe
// what a read-through cache would serve.
type mapCache struct {
	wallets map[uint]*models.Wallet
}

func newMapCache() *mapCache {
	return &mapCache{wallets: make(map[uint]*models.Wallet)}
}

func (c *mapCache) Get(_ context.Context, id uint) (*models.Wallet, error) {
	w, ok := c.wallets[id]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (c *mapCache) Set(_ context.Context, w *models.Wallet) error {
	cp := *w
	c.wallets[w.ID] = &cp
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, id uint) error {
	delete(c.wallets, id)
	return nil
}

func TestRollbackInvalidatesWalletCache(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	cache := newMapCache()
	recorder := &notification.Recorder{}
	approvals := approval.NewService(store, recorder, validation.Limits{}, nil)
	converter := exchange.NewConverter(exchange.NewStaticSource(nil))
	entries := ledger.NewService(store, cache, approvals, converter, ledger.Config{}, nil)
	reversals := NewService(store, cache, recorder, nil)

	w, err := entries.CreateWallet(ctx, 1, "USD")
	require.NoError(t, err)

	txn, err := entries.Deposit(ctx, w.ID, money.MustParse("100.00"), ledger.Options{AutoApprove: true})
	require.NoError(t, err)

	// Warm the cache with the post-deposit balance.
	cached, err := entries.GetWallet(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10000), cached.Balance)

	_, err = reversals.Rollback(ctx, txn, "chargeback")
	require.NoError(t, err)

	// The read path must not serve the pre-reversal balance.
	after, err := entries.GetWallet(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), after.Balance)
}

func TestRollbackRefusesStaleCopy(t *testing.T) {
	f := newFixture(t)
	w := f.wallet(t, models.Wallet{UserID: 1, Currency: "USD", IsActive: true})
	txn := f.approved(t, "txn-1", w.ID, models.TypeDeposit, "100.00")

	// A second caller holding a copy read before the first rollback.
	stale, err := f.store.Transactions().GetByID(context.Background(), txn.ID)
	require.NoError(t, err)

	_, err = f.reversals.Rollback(context.Background(), txn, "first")
	require.NoError(t, err)

	_, err = f.reversals.Rollback(context.Background(), stale, "second")
	assert.ErrorIs(t, err, repositories.ErrStatusConflict)

	after, err := f.store.Wallets().GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), after.Balance)
}

func TestRollbackNotifies(t *testing.T) {
	f := newFixture(t)
	w := f.wallet(t, models.Wallet{UserID: 1, Currency: "USD", IsActive: true})
	txn := f.approved(t, "txn-1", w.ID, models.TypeDeposit, "100.00")

	sibling, err := f.reversals.Rollback(context.Background(), txn, "chargeback")
	require.NoError(t, err)

	events := f.recorder.Named("reversed")
	require.Len(t, events, 1)
	assert.Equal(t, txn.ID, events[0].TxnID)
	assert.Equal(t, sibling.ID, events[0].ReversalID)
}
