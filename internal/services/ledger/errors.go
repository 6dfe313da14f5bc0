package ledger

import "errors"

// Service errors
var (
	ErrWalletExists        = errors.New("user already has a wallet")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrSelfTransfer        = errors.New("cannot transfer to the same wallet")
	ErrTransferFailed      = errors.New("transfer failed")
)
