package models

import (
	"time"

	"tally/internal/money"
)

// TransactionType is the closed set of ledger entry types. Direction is
// encoded by the type; Amount is always a positive magnitude.
type TransactionType string

const (
	TypeDeposit        TransactionType = "deposit"
	TypeWithdraw       TransactionType = "withdraw"
	TypeLock           TransactionType = "lock"
	TypeUnlock         TransactionType = "unlock"
	TypeCreditGrant    TransactionType = "credit_grant"
	TypeCreditRevoke   TransactionType = "credit_revoke"
	TypeCreditRepay    TransactionType = "credit_repay"
	TypeInterestCharge TransactionType = "interest_charge"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdraw, TypeLock, TypeUnlock,
		TypeCreditGrant, TypeCreditRevoke, TypeCreditRepay, TypeInterestCharge:
		return true
	}
	return false
}

// TransactionStatus tracks the entry lifecycle. Transitions are
// monotonic: pending -> approved|rejected, approved -> reversed.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "pending"
	StatusApproved TransactionStatus = "approved"
	StatusRejected TransactionStatus = "rejected"
	StatusReversed TransactionStatus = "reversed"
)

// Valid reports whether s is a known transaction status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusReversed:
		return true
	}
	return false
}

// Transaction is one immutable ledger entry. IDs are ULIDs, so they sort
// by creation time. Once approved or reversed only Status and Meta may
// change.
type Transaction struct {
	ID          string            `gorm:"primarykey;size:26" json:"id"`
	WalletID    uint              `gorm:"index;not null" json:"wallet_id"`
	Type        TransactionType   `gorm:"size:32;not null;index" json:"type"`
	AmountCents int64             `gorm:"column:amount;not null" json:"amount"`
	Description string            `json:"description"`
	Reference   string            `gorm:"index" json:"reference,omitempty"`
	Meta        JSON              `gorm:"type:jsonb" json:"meta,omitempty"`
	Status      TransactionStatus `gorm:"size:16;not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Amount returns the entry magnitude as Money.
func (t *Transaction) Amount() money.Money { return money.FromCents(t.AmountCents) }

// IsPending reports whether the entry still awaits approval.
func (t *Transaction) IsPending() bool { return t.Status == StatusPending }

// SetMeta writes a key into Meta, allocating the map if needed.
func (t *Transaction) SetMeta(key string, value interface{}) {
	if t.Meta == nil {
		t.Meta = JSON{}
	}
	t.Meta[key] = value
}
