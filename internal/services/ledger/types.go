package ledger

import (
	"tally/internal/models"
	"tally/internal/validation"
)

// Config holds the ledger operating limits and currency settings.
type Config struct {
	Limits              validation.Limits
	DefaultCurrency     string
	SupportedCurrencies []string
}

// Options carries per-entry settings supplied by the caller.
type Options struct {
	// AutoApprove hands the entry to the approval service synchronously
	// after creation.
	AutoApprove bool
	// Reference is an optional external correlation string.
	Reference string
	// Description overrides the auto-generated entry description.
	Description string
	// Meta holds caller-supplied custom keys, preserved at the root of
	// the normalized metadata.
	Meta map[string]interface{}

	// Standard metadata fields.
	InitiatedBy string
	ActorID     uint
	IP          string
	UserAgent   string
	Tags        []string
	Context     string
	Notes       string
}

// TransferResult reports both legs of a cross-wallet transfer.
type TransferResult struct {
	From *models.Transaction
	To   *models.Transaction
	// Rate is the effective conversion rate applied to the destination
	// leg (1.0 for same-currency transfers).
	Rate float64
}
