package handlers

import (
	"tally/internal/services/ledger"
	"tally/internal/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type TransactionHandler struct {
	ledgerService *ledger.Service
}

func NewTransactionHandler(ledgerService *ledger.Service) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// ListTransactions pages through the caller's ledger, newest first.
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit := c.QueryInt("limit", defaultPageLimit)
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	wallet, err := h.ledgerService.GetWalletByUserID(c.Context(), claims.UserID)
	if err != nil {
		return fail(c, err)
	}

	transactions, err := h.ledgerService.ListTransactions(c.Context(), wallet.ID, limit, offset)
	if err != nil {
		return fail(c, err)
	}

	return utils.Success(c, fiber.Map{
		"transactions": transactions,
		"limit":        limit,
		"offset":       offset,
	})
}

// GetTransaction reads one ledger entry. Non-admin callers may only
// read entries on their own wallet.
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	txn, err := h.ledgerService.GetTransaction(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	if !claims.IsAdmin() {
		wallet, err := h.ledgerService.GetWalletByUserID(c.Context(), claims.UserID)
		if err != nil {
			return fail(c, err)
		}
		if txn.WalletID != wallet.ID {
			return utils.Forbidden(c, "not your transaction")
		}
	}

	return utils.Success(c, fiber.Map{"transaction": txn})
}
