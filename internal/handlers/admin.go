package handlers

import (
	"time"

	"tally/internal/models"
	"tally/internal/money"
	"tally/internal/services/aging"
	"tally/internal/services/approval"
	"tally/internal/services/ledger"
	"tally/internal/services/reversal"
	"tally/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes the operator surface: credit line management,
// manual rejection and rollback, and on-demand sweeps.
type AdminHandler struct {
	ledgerService *ledger.Service
	approvals     *approval.Service
	reversals     *reversal.Service
	agingService  *aging.Service
}

func NewAdminHandler(ledgerService *ledger.Service, approvals *approval.Service, reversals *reversal.Service, agingService *aging.Service) *AdminHandler {
	return &AdminHandler{
		ledgerService: ledgerService,
		approvals:     approvals,
		reversals:     reversals,
		agingService:  agingService,
	}
}

func (h *AdminHandler) creditOperation(c *fiber.Ctx, op operationFunc) error {
	walletID, err := c.ParamsInt("id")
	if err != nil || walletID <= 0 {
		return utils.BadRequest(c, "Invalid wallet id")
	}

	var input operationInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	amount, err := money.FromDecimal(input.Amount)
	if err != nil {
		return utils.BadRequest(c, "Invalid amount")
	}

	claims, _ := extractUserClaims(c)
	opts := ledger.Options{
		AutoApprove: true,
		Reference:   input.Reference,
		Description: input.Description,
	}
	if claims != nil {
		opts.InitiatedBy = claims.Email
		opts.ActorID = claims.UserID
	}

	txn, err := op(c.Context(), uint(walletID), amount, opts)
	if err != nil {
		return fail(c, err)
	}
	if txn.Status == models.StatusRejected {
		reason, _ := txn.Meta["rejection_reason"].(string)
		return utils.UnprocessableEntity(c, reason)
	}
	return utils.Success(c, fiber.Map{"transaction": txn})
}

func (h *AdminHandler) GrantCredit(c *fiber.Ctx) error {
	return h.creditOperation(c, h.ledgerService.GrantCredit)
}

func (h *AdminHandler) RevokeCredit(c *fiber.Ctx) error {
	return h.creditOperation(c, h.ledgerService.RevokeCredit)
}

// RejectTransaction rejects a pending entry with a recorded reason.
func (h *AdminHandler) RejectTransaction(c *fiber.Ctx) error {
	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if input.Reason == "" {
		input.Reason = "rejected by operator"
	}

	txn, err := h.ledgerService.GetTransaction(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	ok, err := h.approvals.Reject(c.Context(), txn, input.Reason)
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		return utils.UnprocessableEntity(c, "transaction is not pending")
	}
	return utils.Success(c, fiber.Map{"transaction": txn})
}

// RollbackTransaction reverses an approved entry, creating the
// corrective sibling.
func (h *AdminHandler) RollbackTransaction(c *fiber.Ctx) error {
	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if input.Reason == "" {
		input.Reason = "rolled back by operator"
	}

	txn, err := h.ledgerService.GetTransaction(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	sibling, err := h.reversals.Rollback(c.Context(), txn, input.Reason)
	if err != nil {
		return fail(c, err)
	}
	return utils.Success(c, fiber.Map{
		"original": txn,
		"reversal": sibling,
	})
}

// SweepInterest runs the interest assessment over every indebted
// wallet.
func (h *AdminHandler) SweepInterest(c *fiber.Ctx) error {
	report, err := h.agingService.ProcessAllWallets(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return utils.Success(c, fiber.Map{
		"processed": report.Processed,
		"failed":    report.Failed,
	})
}

// SweepPending rejects pending entries older than the supplied age.
func (h *AdminHandler) SweepPending(c *fiber.Ctx) error {
	var input struct {
		OlderThan string `json:"older_than"`
		Reason    string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	age, err := time.ParseDuration(input.OlderThan)
	if err != nil || age <= 0 {
		return utils.BadRequest(c, "older_than must be a positive duration")
	}
	if input.Reason == "" {
		input.Reason = "expired"
	}

	report, err := h.agingService.RejectPendingOlderThan(c.Context(), time.Now().Add(-age), input.Reason)
	if err != nil {
		return fail(c, err)
	}
	return utils.Success(c, fiber.Map{
		"processed": report.Processed,
		"failed":    report.Failed,
	})
}
