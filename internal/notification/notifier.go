// Package notification defines the fire-and-forget signals the ledger
// emits on balance-affecting events. Delivery is best-effort by
// contract: a failed notification never rolls back the financial
// mutation, so the interface returns nothing.
package notification

import (
	"context"
	"sync"

	"tally/internal/models"
	"tally/internal/money"

	"go.uber.org/zap"
)

// Notifier receives wallet events, each carrying the wallet and
// transaction references involved.
type Notifier interface {
	Deposited(ctx context.Context, w *models.Wallet, txn *models.Transaction)
	Withdrawn(ctx context.Context, w *models.Wallet, txn *models.Transaction)
	CreditGranted(ctx context.Context, w *models.Wallet, txn *models.Transaction)
	CreditRepaid(ctx context.Context, w *models.Wallet, txn *models.Transaction, repaid money.Money)
	Reversed(ctx context.Context, w *models.Wallet, original, reversal *models.Transaction)
}

// LogNotifier writes events to the structured log.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		panic("logger is required")
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) event(name string, w *models.Wallet, txn *models.Transaction, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.Uint("wallet_id", w.ID),
		zap.String("transaction_id", txn.ID),
		zap.String("amount", txn.Amount().String()),
	}, extra...)
	n.log.Info(name, fields...)
}

func (n *LogNotifier) Deposited(_ context.Context, w *models.Wallet, txn *models.Transaction) {
	n.event("wallet.deposited", w, txn)
}

func (n *LogNotifier) Withdrawn(_ context.Context, w *models.Wallet, txn *models.Transaction) {
	n.event("wallet.withdrawn", w, txn)
}

func (n *LogNotifier) CreditGranted(_ context.Context, w *models.Wallet, txn *models.Transaction) {
	n.event("wallet.credit_granted", w, txn)
}

func (n *LogNotifier) CreditRepaid(_ context.Context, w *models.Wallet, txn *models.Transaction, repaid money.Money) {
	n.event("wallet.credit_repaid", w, txn, zap.String("repaid", repaid.String()))
}

func (n *LogNotifier) Reversed(_ context.Context, w *models.Wallet, original, reversal *models.Transaction) {
	n.event("wallet.transaction_reversed", w, original, zap.String("reversal_id", reversal.ID))
}

// Event is a captured notification, used by the Recorder.
type Event struct {
	Name       string
	WalletID   uint
	TxnID      string
	Repaid     money.Money
	ReversalID string
}

// Recorder captures events in memory for assertions in tests.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
}

// Named returns the captured events with the given name.
func (r *Recorder) Named(name string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.Events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Deposited(_ context.Context, w *models.Wallet, txn *models.Transaction) {
	r.record(Event{Name: "deposited", WalletID: w.ID, TxnID: txn.ID})
}

func (r *Recorder) Withdrawn(_ context.Context, w *models.Wallet, txn *models.Transaction) {
	r.record(Event{Name: "withdrawn", WalletID: w.ID, TxnID: txn.ID})
}

func (r *Recorder) CreditGranted(_ context.Context, w *models.Wallet, txn *models.Transaction) {
	r.record(Event{Name: "credit_granted", WalletID: w.ID, TxnID: txn.ID})
}

func (r *Recorder) CreditRepaid(_ context.Context, w *models.Wallet, txn *models.Transaction, repaid money.Money) {
	r.record(Event{Name: "credit_repaid", WalletID: w.ID, TxnID: txn.ID, Repaid: repaid})
}

func (r *Recorder) Reversed(_ context.Context, w *models.Wallet, original, reversal *models.Transaction) {
	r.record(Event{Name: "reversed", WalletID: w.ID, TxnID: original.ID, ReversalID: reversal.ID})
}
