package handlers

import (
	"tally/internal/money"
	"tally/internal/services/ledger"
	"tally/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type TransferHandler struct {
	ledgerService *ledger.Service
}

func NewTransferHandler(ledgerService *ledger.Service) *TransferHandler {
	return &TransferHandler{ledgerService: ledgerService}
}

// Transfer moves funds from the caller's wallet to another wallet,
// converting currency when the wallets differ.
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		ToWalletID uint   `json:"to_wallet_id"`
		Amount     string `json:"amount"`
		Reference  string `json:"reference"`
		Notes      string `json:"notes"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if input.ToWalletID == 0 {
		return utils.BadRequest(c, "Destination wallet is required")
	}

	amount, err := money.FromDecimal(input.Amount)
	if err != nil {
		return utils.BadRequest(c, "Invalid amount")
	}

	wallet, err := h.ledgerService.GetWalletByUserID(c.Context(), claims.UserID)
	if err != nil {
		return fail(c, err)
	}

	result, err := h.ledgerService.Transfer(c.Context(), wallet.ID, input.ToWalletID, amount, ledger.Options{
		Reference:   input.Reference,
		Notes:       input.Notes,
		InitiatedBy: claims.Email,
		ActorID:     claims.UserID,
		IP:          c.IP(),
		UserAgent:   string(c.Request().Header.UserAgent()),
	})
	if err != nil {
		return fail(c, err)
	}

	return utils.Success(c, fiber.Map{
		"from_transaction": result.From,
		"to_transaction":   result.To,
		"rate":             result.Rate,
	})
}
