package ledger

import (
	"context"
	"errors"
	"fmt"

	"tally/internal/models"
	"tally/internal/money"
	"tally/internal/repositories"
	"tally/internal/services/approval"
	"tally/internal/services/exchange"
	"tally/internal/validation"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Service creates ledger entries and serves wallet reads.
type Service struct {
	store     repositories.Store
	cache     repositories.WalletCache
	approvals *approval.Service
	converter *exchange.Converter
	cfg       Config
	log       *zap.Logger
}

// NewService creates the ledger service.
func NewService(
	store repositories.Store,
	cache repositories.WalletCache,
	approvals *approval.Service,
	converter *exchange.Converter,
	cfg Config,
	log *zap.Logger,
) *Service {
	if store == nil {
		panic("store is required")
	}
	if approvals == nil {
		panic("approval service is required")
	}
	if converter == nil {
		panic("converter is required")
	}
	if cache == nil {
		cache = repositories.NoopWalletCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "USD"
	}
	if len(cfg.SupportedCurrencies) == 0 {
		cfg.SupportedCurrencies = []string{cfg.DefaultCurrency}
	}

	return &Service{
		store:     store,
		cache:     cache,
		approvals: approvals,
		converter: converter,
		cfg:       cfg,
		log:       log,
	}
}

// CreateWallet opens a wallet for a user in the given currency.
func (s *Service) CreateWallet(ctx context.Context, userID uint, currency string) (*models.Wallet, error) {
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	if !s.currencySupported(currency) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, currency)
	}
	if _, err := s.store.Wallets().GetByUserID(ctx, userID); err == nil {
		return nil, ErrWalletExists
	}

	w := &models.Wallet{
		UserID:   userID,
		Currency: currency,
		IsActive: true,
	}
	if err := s.store.Wallets().Create(ctx, w); err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, w)
	return w, nil
}

// GetWallet reads a wallet, serving from cache when possible.
func (s *Service) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	if w, err := s.cache.Get(ctx, walletID); err == nil {
		return w, nil
	}
	w, err := s.walletFor(ctx, s.store, walletID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, w)
	return w, nil
}

// GetWalletByUserID reads the wallet owned by a user.
func (s *Service) GetWalletByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	w, err := s.store.Wallets().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, validation.ErrWalletNotFound
		}
		return nil, err
	}
	return w, nil
}

// GetTransaction reads one ledger entry.
func (s *Service) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.store.Transactions().GetByID(ctx, id)
}

// ListTransactions pages through a wallet's ledger, newest first.
func (s *Service) ListTransactions(ctx context.Context, walletID uint, limit, offset int) ([]*models.Transaction, error) {
	return s.store.Transactions().ListByWallet(ctx, walletID, limit, offset)
}

// Deposit credits funds into the wallet. Deposits into a wallet in debt
// repay the debt first.
func (s *Service) Deposit(ctx context.Context, walletID uint, amount money.Money, opts Options) (*models.Transaction, error) {
	return s.simpleOperation(ctx, walletID, models.TypeDeposit, amount, opts, nil)
}

// RepayCredit records an explicit debt repayment. Balance-wise it is a
// deposit; the distinct type keeps the audit trail honest.
func (s *Service) RepayCredit(ctx context.Context, walletID uint, amount money.Money, opts Options) (*models.Transaction, error) {
	return s.simpleOperation(ctx, walletID, models.TypeCreditRepay, amount, opts, nil)
}

// ChargeInterest records an interest charge against outstanding debt.
func (s *Service) ChargeInterest(ctx context.Context, walletID uint, amount money.Money, opts Options) (*models.Transaction, error) {
	return s.simpleOperation(ctx, walletID, models.TypeInterestCharge, amount, opts, nil)
}

// UnlockFunds releases previously locked funds.
func (s *Service) UnlockFunds(ctx context.Context, walletID uint, amount money.Money, opts Options) (*models.Transaction, error) {
	return s.simpleOperation(ctx, walletID, models.TypeUnlock, amount, opts, validation.Unlock)
}

// GrantCredit extends the wallet's credit line.
func (s *Service) GrantCredit(ctx context.Context, walletID uint, amount money.Money, opts Options) (*models.Transaction, error) {
	return s.simpleOperation(ctx, walletID, models.TypeCreditGrant, amount, opts,
		func(w *models.Wallet, m money.Money) error {
			return validation.CreditGrant(w, m, s.cfg.Limits)
		})
}

// RevokeCredit shrinks the wallet's credit line. Fails when the
// remaining line would not cover outstanding debt.
func (s *Service) RevokeCredit(ctx context.Context, walletID uint, amount money.Money, opts Options) (*models.Transaction, error) {
	return s.simpleOperation(ctx, walletID, models.TypeCreditRevoke, amount, opts, validation.CreditRevoke)
}

// Withdraw debits funds. The wallet row is re-acquired under an
// exclusive lock and funds are re-validated before the entry is
// created, closing the race between the first check and the locked
// mutation.
func (s *Service) Withdraw(ctx context.Context, walletID uint, amount money.Money, opts Options) (*models.Transaction, error) {
	return s.lockedOperation(ctx, walletID, models.TypeWithdraw, amount, opts, validation.Withdrawal)
}

// LockFunds reserves part of the balance. Like Withdraw, the check runs
// against the locked wallet row. Credit never extends lockable funds.
func (s *Service) LockFunds(ctx context.Context, walletID uint, amount money.Money, opts Options) (*models.Transaction, error) {
	return s.lockedOperation(ctx, walletID, models.TypeLock, amount, opts, validation.Lock)
}

type checkFunc func(*models.Wallet, money.Money) error

// simpleOperation validates against a plain wallet read and creates the
// entry; approval re-validates under the row lock.
func (s *Service) simpleOperation(ctx context.Context, walletID uint, typ models.TransactionType, amount money.Money, opts Options, check checkFunc) (*models.Transaction, error) {
	if err := validation.Amount(amount, s.cfg.Limits); err != nil {
		return nil, err
	}
	w, err := s.walletFor(ctx, s.store, walletID)
	if err != nil {
		return nil, err
	}
	if check != nil {
		if err := check(w, amount); err != nil {
			return nil, err
		}
	}
	txn, err := s.newEntry(ctx, s.store, w, typ, amount, opts)
	if err != nil {
		return nil, err
	}
	return s.finalize(ctx, txn, opts)
}

// lockedOperation creates the entry with the wallet row held under an
// exclusive lock for the duration of the check.
func (s *Service) lockedOperation(ctx context.Context, walletID uint, typ models.TransactionType, amount money.Money, opts Options, check checkFunc) (*models.Transaction, error) {
	if err := validation.Amount(amount, s.cfg.Limits); err != nil {
		return nil, err
	}

	var txn *models.Transaction
	err := s.store.ExecuteInTransaction(ctx, func(st repositories.Store) error {
		w, err := st.Wallets().GetByIDForUpdate(ctx, walletID)
		if err != nil {
			if errors.Is(err, repositories.ErrWalletNotFound) {
				return validation.ErrWalletNotFound
			}
			return err
		}
		if err := check(w, amount); err != nil {
			return err
		}
		txn, err = s.newEntry(ctx, st, w, typ, amount, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.finalize(ctx, txn, opts)
}

// newEntry persists a pending ledger entry: inactive-wallet gate,
// description autogeneration, meta normalization.
func (s *Service) newEntry(ctx context.Context, st repositories.Store, w *models.Wallet, typ models.TransactionType, amount money.Money, opts Options) (*models.Transaction, error) {
	if opts.AutoApprove && !w.IsActive {
		// Inactive wallets may still accumulate pending entries, but
		// nothing may be approved into them.
		return nil, validation.ErrWalletInactive
	}

	description := opts.Description
	if description == "" {
		description = describe(typ, amount, opts.Reference)
	}

	txn := &models.Transaction{
		ID:          ulid.Make().String(),
		WalletID:    w.ID,
		Type:        typ,
		AmountCents: amount.Cents(),
		Description: description,
		Reference:   opts.Reference,
		Meta:        normalizeMeta(opts),
		Status:      models.StatusPending,
	}
	if err := st.Transactions().Create(ctx, txn); err != nil {
		return nil, err
	}

	s.log.Debug("ledger entry created",
		zap.String("transaction_id", txn.ID),
		zap.Uint("wallet_id", w.ID),
		zap.String("type", string(typ)),
		zap.String("amount", amount.String()))
	return txn, nil
}

// finalize hands the entry to approval when requested. The returned
// entry may be rejected; callers inspect Status.
func (s *Service) finalize(ctx context.Context, txn *models.Transaction, opts Options) (*models.Transaction, error) {
	if !opts.AutoApprove {
		return txn, nil
	}
	if _, err := s.approvals.Approve(ctx, txn); err != nil {
		return nil, err
	}
	s.invalidate(ctx, txn.WalletID)
	return txn, nil
}

func (s *Service) walletFor(ctx context.Context, st repositories.Store, walletID uint) (*models.Wallet, error) {
	w, err := st.Wallets().GetByID(ctx, walletID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, validation.ErrWalletNotFound
		}
		return nil, err
	}
	return w, nil
}

func (s *Service) invalidate(ctx context.Context, walletID uint) {
	if err := s.cache.Invalidate(ctx, walletID); err != nil {
		s.log.Debug("wallet cache invalidation failed",
			zap.Uint("wallet_id", walletID), zap.Error(err))
	}
}

func (s *Service) currencySupported(currency string) bool {
	for _, c := range s.cfg.SupportedCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}
