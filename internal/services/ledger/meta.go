package ledger

import (
	"fmt"
	"time"

	"tally/internal/models"
	"tally/internal/money"

	"github.com/google/uuid"
)

var typeLabels = map[models.TransactionType]string{
	models.TypeDeposit:        "Deposit",
	models.TypeWithdraw:       "Withdrawal",
	models.TypeLock:           "Funds lock",
	models.TypeUnlock:         "Funds unlock",
	models.TypeCreditGrant:    "Credit grant",
	models.TypeCreditRevoke:   "Credit revoke",
	models.TypeCreditRepay:    "Credit repayment",
	models.TypeInterestCharge: "Interest charge",
}

// describe builds the default entry description from the type label,
// the formatted amount and the optional reference.
func describe(typ models.TransactionType, amount money.Money, reference string) string {
	d := fmt.Sprintf("%s of %s", typeLabels[typ], amount)
	if reference != "" {
		d += fmt.Sprintf(" (ref: %s)", reference)
	}
	return d
}

// normalizeMeta folds the caller's options into the standard metadata
// schema. Custom keys stay at the root; standard keys win on collision.
func normalizeMeta(opts Options) models.JSON {
	meta := models.JSON{}
	for k, v := range opts.Meta {
		meta[k] = v
	}

	if _, ok := meta["correlation_id"]; !ok {
		meta["correlation_id"] = uuid.NewString()
	}

	initiatedBy := opts.InitiatedBy
	if initiatedBy == "" {
		initiatedBy = "system"
	}
	meta["initiated_by"] = initiatedBy
	if opts.ActorID != 0 {
		meta["actor_id"] = opts.ActorID
	}
	if opts.IP != "" {
		meta["ip"] = opts.IP
	}
	if opts.UserAgent != "" {
		meta["user_agent"] = opts.UserAgent
	}
	if len(opts.Tags) > 0 {
		meta["tags"] = opts.Tags
	}
	if opts.Context != "" {
		meta["context"] = opts.Context
	}
	if opts.Notes != "" {
		meta["notes"] = opts.Notes
	}

	meta["audit"] = models.JSON{
		"created_at":   time.Now().UTC().Format(time.RFC3339),
		"initiated_by": initiatedBy,
	}
	return meta
}
