// Package repositories provides the data access layer: GORM-backed
// wallet/transaction/user repositories, a transactional Store bundle
// with row-level locking, a redis wallet cache and an in-memory Store
// for tests.
package repositories

import (
	"context"
	"errors"
	"time"

	"tally/internal/models"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrStatusConflict      = errors.New("transaction status changed")
)

// WalletRepository persists wallets. GetByIDForUpdate must only be
// called inside ExecuteInTransaction; it acquires an exclusive row lock
// held until the transaction commits.
type WalletRepository interface {
	Create(ctx context.Context, w *models.Wallet) error
	GetByID(ctx context.Context, id uint) (*models.Wallet, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Wallet, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	Update(ctx context.Context, w *models.Wallet) error
	// FindDebtorsInBatches streams active wallets with a negative
	// balance in chunks of batchSize.
	FindDebtorsInBatches(ctx context.Context, batchSize int, fn func([]*models.Wallet) error) error
}

// TransactionRepository persists ledger entries. Status transitions go
// through UpdateIfStatus so an entry is decided exactly once.
type TransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	// UpdateIfStatus persists t only while the stored row still has the
	// from status, returning ErrStatusConflict when another writer
	// decided the entry first.
	UpdateIfStatus(ctx context.Context, t *models.Transaction, from models.TransactionStatus) error
	ListByWallet(ctx context.Context, walletID uint, limit, offset int) ([]*models.Transaction, error)
	// FindPendingInBatches streams pending entries created before
	// cutoff in chunks of batchSize.
	FindPendingInBatches(ctx context.Context, cutoff time.Time, batchSize int, fn func([]*models.Transaction) error) error
	// FindApprovedByTypeInBatches streams approved entries of one type
	// created before cutoff in chunks of batchSize.
	FindApprovedByTypeInBatches(ctx context.Context, typ models.TransactionType, cutoff time.Time, batchSize int, fn func([]*models.Transaction) error) error
}

// UserRepository persists wallet owners.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Store bundles the repositories into one unit of work.
// ExecuteInTransaction runs fn against a Store scoped to a single
// database transaction: row locks taken inside are held until fn
// returns, and a non-nil error rolls everything back.
type Store interface {
	Wallets() WalletRepository
	Transactions() TransactionRepository
	Users() UserRepository
	ExecuteInTransaction(ctx context.Context, fn func(Store) error) error
}

// WalletCache caches wallet snapshots on the read path. Implementations
// must treat misses and backend failures alike: callers fall through to
// the Store.
type WalletCache interface {
	Get(ctx context.Context, id uint) (*models.Wallet, error)
	Set(ctx context.Context, w *models.Wallet) error
	Invalidate(ctx context.Context, id uint) error
}
