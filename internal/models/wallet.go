package models

import (
	"time"

	"tally/internal/money"
)

// Wallet holds a member's funds. Balance is signed: a negative balance
// represents debt drawn against the credit line. Locked is the portion
// of principal reserved (escrow) and Credit is a limit, not a balance.
// All three are stored in minor units. Balance mutation is reserved to
// the approval and reversal services.
type Wallet struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Currency  string    `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	Locked    int64     `gorm:"not null;default:0" json:"locked"`
	Credit    int64     `gorm:"not null;default:0" json:"credit"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BalanceMoney returns the signed principal balance.
func (w *Wallet) BalanceMoney() money.Money { return money.FromCents(w.Balance) }

// LockedMoney returns the reserved portion of the balance.
func (w *Wallet) LockedMoney() money.Money { return money.FromCents(w.Locked) }

// CreditMoney returns the credit limit.
func (w *Wallet) CreditMoney() money.Money { return money.FromCents(w.Credit) }

// AvailableBalance is the spendable principal: max(0, balance - locked).
func (w *Wallet) AvailableBalance() money.Money {
	return money.Max(money.Zero, money.FromCents(w.Balance-w.Locked))
}

// Debt is the magnitude of a negative balance.
func (w *Wallet) Debt() money.Money {
	return money.Max(money.Zero, money.FromCents(-w.Balance))
}

// RemainingCredit is the credit headroom left after outstanding debt.
func (w *Wallet) RemainingCredit() money.Money {
	return money.Max(money.Zero, w.CreditMoney().Sub(w.Debt()))
}

// AvailableFunds is what a withdrawal may draw on: unlocked principal
// plus the full credit line, or, when locked funds already exceed the
// balance, whatever credit headroom is left.
func (w *Wallet) AvailableFunds() money.Money {
	unlocked := money.FromCents(w.Balance - w.Locked)
	if unlocked.GTE(money.Zero) {
		return unlocked.Add(w.CreditMoney())
	}
	return w.RemainingCredit()
}
