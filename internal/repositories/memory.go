package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"tally/internal/models"
)

// MemoryStore is an in-memory Store used by unit tests and local
// development. ExecuteInTransaction serializes callers on one mutex,
// which gives the same effective per-wallet ordering the row lock gives
// in postgres; it does not roll back on error.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memoryData
	inTx bool
}

type memoryData struct {
	wallets      map[uint]*models.Wallet
	transactions map[string]*models.Transaction
	users        map[uint]*models.User
	nextWalletID uint
	nextUserID   uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memoryData{
			wallets:      make(map[uint]*models.Wallet),
			transactions: make(map[string]*models.Transaction),
			users:        make(map[uint]*models.User),
		},
	}
}

func (s *MemoryStore) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *MemoryStore) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

func (s *MemoryStore) Wallets() WalletRepository           { return &memWalletRepo{s} }
func (s *MemoryStore) Transactions() TransactionRepository { return &memTransactionRepo{s} }
func (s *MemoryStore) Users() UserRepository               { return &memUserRepo{s} }

func (s *MemoryStore) ExecuteInTransaction(_ context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&MemoryStore{mu: s.mu, data: s.data, inTx: true})
}

func copyWallet(w *models.Wallet) *models.Wallet {
	c := *w
	return &c
}

func copyTransaction(t *models.Transaction) *models.Transaction {
	c := *t
	if t.Meta != nil {
		c.Meta = models.JSON{}
		for k, v := range t.Meta {
			c.Meta[k] = v
		}
	}
	return &c
}

type memWalletRepo struct {
	s *MemoryStore
}

func (r *memWalletRepo) Create(_ context.Context, w *models.Wallet) error {
	r.s.lock()
	defer r.s.unlock()
	if w.ID == 0 {
		r.s.data.nextWalletID++
		w.ID = r.s.data.nextWalletID
	} else if w.ID > r.s.data.nextWalletID {
		r.s.data.nextWalletID = w.ID
	}
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	r.s.data.wallets[w.ID] = copyWallet(w)
	return nil
}

func (r *memWalletRepo) GetByID(_ context.Context, id uint) (*models.Wallet, error) {
	r.s.lock()
	defer r.s.unlock()
	w, ok := r.s.data.wallets[id]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return copyWallet(w), nil
}

func (r *memWalletRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.Wallet, error) {
	return r.GetByID(ctx, id)
}

func (r *memWalletRepo) GetByUserID(_ context.Context, userID uint) (*models.Wallet, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, w := range r.s.data.wallets {
		if w.UserID == userID {
			return copyWallet(w), nil
		}
	}
	return nil, ErrWalletNotFound
}

func (r *memWalletRepo) Update(_ context.Context, w *models.Wallet) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.wallets[w.ID]; !ok {
		return ErrWalletNotFound
	}
	w.UpdatedAt = time.Now()
	r.s.data.wallets[w.ID] = copyWallet(w)
	return nil
}

func (r *memWalletRepo) FindDebtorsInBatches(_ context.Context, batchSize int, fn func([]*models.Wallet) error) error {
	r.s.lock()
	var debtors []*models.Wallet
	for _, w := range r.s.data.wallets {
		if w.IsActive && w.Balance < 0 {
			debtors = append(debtors, copyWallet(w))
		}
	}
	r.s.unlock()

	sort.Slice(debtors, func(i, j int) bool { return debtors[i].ID < debtors[j].ID })
	return inBatches(debtors, batchSize, fn)
}

type memTransactionRepo struct {
	s *MemoryStore
}

func (r *memTransactionRepo) Create(_ context.Context, t *models.Transaction) error {
	r.s.lock()
	defer r.s.unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.UpdatedAt = t.CreatedAt
	r.s.data.transactions[t.ID] = copyTransaction(t)
	return nil
}

func (r *memTransactionRepo) GetByID(_ context.Context, id string) (*models.Transaction, error) {
	r.s.lock()
	defer r.s.unlock()
	t, ok := r.s.data.transactions[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	return copyTransaction(t), nil
}

func (r *memTransactionRepo) UpdateIfStatus(_ context.Context, t *models.Transaction, from models.TransactionStatus) error {
	r.s.lock()
	defer r.s.unlock()
	stored, ok := r.s.data.transactions[t.ID]
	if !ok {
		return ErrTransactionNotFound
	}
	if stored.Status != from {
		return ErrStatusConflict
	}
	t.UpdatedAt = time.Now()
	r.s.data.transactions[t.ID] = copyTransaction(t)
	return nil
}

func (r *memTransactionRepo) ListByWallet(_ context.Context, walletID uint, limit, offset int) ([]*models.Transaction, error) {
	all := r.snapshot(func(t *models.Transaction) bool { return t.WalletID == walletID })
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memTransactionRepo) FindPendingInBatches(_ context.Context, cutoff time.Time, batchSize int, fn func([]*models.Transaction) error) error {
	matched := r.snapshot(func(t *models.Transaction) bool {
		return t.Status == models.StatusPending && t.CreatedAt.Before(cutoff)
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return inBatches(matched, batchSize, fn)
}

func (r *memTransactionRepo) FindApprovedByTypeInBatches(_ context.Context, typ models.TransactionType, cutoff time.Time, batchSize int, fn func([]*models.Transaction) error) error {
	matched := r.snapshot(func(t *models.Transaction) bool {
		return t.Status == models.StatusApproved && t.Type == typ && t.CreatedAt.Before(cutoff)
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return inBatches(matched, batchSize, fn)
}

func (r *memTransactionRepo) snapshot(keep func(*models.Transaction) bool) []*models.Transaction {
	r.s.lock()
	defer r.s.unlock()
	var out []*models.Transaction
	for _, t := range r.s.data.transactions {
		if keep(t) {
			out = append(out, copyTransaction(t))
		}
	}
	return out
}

type memUserRepo struct {
	s *MemoryStore
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.s.lock()
	defer r.s.unlock()
	if u.ID == 0 {
		r.s.data.nextUserID++
		u.ID = r.s.data.nextUserID
	}
	u.CreatedAt = time.Now()
	c := *u
	r.s.data.users[u.ID] = &c
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.s.lock()
	defer r.s.unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, u := range r.s.data.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, ErrUserNotFound
}

func inBatches[T any](items []T, batchSize int, fn func([]T) error) error {
	if batchSize <= 0 {
		batchSize = len(items)
	}
	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		if err := fn(items[start:end]); err != nil {
			return err
		}
	}
	return nil
}
