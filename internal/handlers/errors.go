package handlers

import (
	"errors"

	"tally/internal/models"
	"tally/internal/money"
	"tally/internal/repositories"
	"tally/internal/services/exchange"
	"tally/internal/services/ledger"
	"tally/internal/services/reversal"
	"tally/internal/utils"
	"tally/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// fail maps service errors onto HTTP responses. Unknown errors become
// an opaque 500 so internals never leak to clients.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, validation.ErrInvalidAmount),
		errors.Is(err, money.ErrInvalidDecimal),
		errors.Is(err, ledger.ErrUnsupportedCurrency),
		errors.Is(err, ledger.ErrSelfTransfer),
		errors.Is(err, exchange.ErrRateNotFound):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, validation.ErrWalletNotFound),
		errors.Is(err, repositories.ErrTransactionNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, ledger.ErrWalletExists):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, validation.ErrInsufficientFunds),
		errors.Is(err, validation.ErrWalletInactive),
		errors.Is(err, validation.ErrCreditLimitExceeded),
		errors.Is(err, validation.ErrOutstandingDebt),
		errors.Is(err, validation.ErrNotPending),
		errors.Is(err, ledger.ErrTransferFailed),
		errors.Is(err, reversal.ErrNotApproved),
		errors.Is(err, reversal.ErrNoMirror):
		return utils.UnprocessableEntity(c, err.Error())
	default:
		return utils.InternalError(c, "internal error")
	}
}

// extractUserClaims is a helper function to reduce duplication.
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}
