package validation

import "errors"

// Validation errors. Checks fail loudly; amounts are never clamped.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletInactive      = errors.New("wallet is not active")
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")
	ErrOutstandingDebt     = errors.New("outstanding debt exceeds remaining credit")
	ErrNotPending          = errors.New("transaction is not pending")
	ErrUnknownType         = errors.New("unknown transaction type")
)
