package handlers

import (
	"context"

	"tally/internal/models"
	"tally/internal/money"
	"tally/internal/services/ledger"
	"tally/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	ledgerService *ledger.Service
}

func NewWalletHandler(ledgerService *ledger.Service) *WalletHandler {
	return &WalletHandler{ledgerService: ledgerService}
}

// operationInput is the shared request body for balance operations.
// Amounts travel as decimal strings to keep cents exact.
type operationInput struct {
	Amount      string `json:"amount"`
	Reference   string `json:"reference"`
	Description string `json:"description"`
}

type operationFunc func(ctx context.Context, walletID uint, amount money.Money, opts ledger.Options) (*models.Transaction, error)

func (h *WalletHandler) CreateWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Currency string `json:"currency"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return utils.BadRequest(c, "Invalid request format")
		}
	}

	wallet, err := h.ledgerService.CreateWallet(c.Context(), claims.UserID, input.Currency)
	if err != nil {
		return fail(c, err)
	}
	return utils.Created(c, fiber.Map{"wallet": wallet})
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	wallet, err := h.ledgerService.GetWalletByUserID(c.Context(), claims.UserID)
	if err != nil {
		return fail(c, err)
	}

	return utils.Success(c, fiber.Map{
		"wallet":            wallet,
		"available_balance": wallet.AvailableBalance().String(),
		"available_funds":   wallet.AvailableFunds().String(),
		"debt":              wallet.Debt().String(),
		"remaining_credit":  wallet.RemainingCredit().String(),
	})
}

func (h *WalletHandler) Deposit(c *fiber.Ctx) error {
	return h.operation(c, h.ledgerService.Deposit)
}

func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	return h.operation(c, h.ledgerService.Withdraw)
}

func (h *WalletHandler) LockFunds(c *fiber.Ctx) error {
	return h.operation(c, h.ledgerService.LockFunds)
}

func (h *WalletHandler) UnlockFunds(c *fiber.Ctx) error {
	return h.operation(c, h.ledgerService.UnlockFunds)
}

func (h *WalletHandler) RepayCredit(c *fiber.Ctx) error {
	return h.operation(c, h.ledgerService.RepayCredit)
}

// operation runs one balance operation against the caller's wallet and
// reports the resulting ledger entry. Entries rejected during approval
// come back as 422 with the recorded reason.
func (h *WalletHandler) operation(c *fiber.Ctx, op operationFunc) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input operationInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	amount, err := money.FromDecimal(input.Amount)
	if err != nil {
		return utils.BadRequest(c, "Invalid amount")
	}

	wallet, err := h.ledgerService.GetWalletByUserID(c.Context(), claims.UserID)
	if err != nil {
		return fail(c, err)
	}

	txn, err := op(c.Context(), wallet.ID, amount, ledger.Options{
		AutoApprove: true,
		Reference:   input.Reference,
		Description: input.Description,
		InitiatedBy: claims.Email,
		ActorID:     claims.UserID,
		IP:          c.IP(),
		UserAgent:   string(c.Request().Header.UserAgent()),
	})
	if err != nil {
		return fail(c, err)
	}
	if txn.Status == models.StatusRejected {
		reason, _ := txn.Meta["rejection_reason"].(string)
		return utils.UnprocessableEntity(c, reason)
	}

	updated, err := h.ledgerService.GetWallet(c.Context(), wallet.ID)
	if err != nil {
		return fail(c, err)
	}

	return utils.Success(c, fiber.Map{
		"transaction": txn,
		"balance":     updated.BalanceMoney().String(),
	})
}
