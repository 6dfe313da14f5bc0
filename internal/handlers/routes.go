package handlers

import (
	"tally/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups the HTTP handlers for route registration.
type Handlers struct {
	Auth        *AuthHandler
	Wallet      *WalletHandler
	Transfer    *TransferHandler
	Transaction *TransactionHandler
	Admin       *AdminHandler
}

// SetupRoutes registers every route on the app.
func SetupRoutes(app *fiber.App, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	app.Get("/health", HealthCheck)

	api := app.Group("/api")
	api.Post("/register", h.Auth.Register)
	api.Post("/login", h.Auth.Login)

	authenticated := api.Group("/", authMiddleware.Handler)

	wallet := authenticated.Group("/wallet")
	wallet.Post("/", h.Wallet.CreateWallet)
	wallet.Get("/", h.Wallet.GetWallet)
	wallet.Post("/deposit", h.Wallet.Deposit)
	wallet.Post("/withdraw", h.Wallet.Withdraw)
	wallet.Post("/lock", h.Wallet.LockFunds)
	wallet.Post("/unlock", h.Wallet.UnlockFunds)
	wallet.Post("/repay", h.Wallet.RepayCredit)

	authenticated.Post("/transfer", h.Transfer.Transfer)
	authenticated.Get("/transactions", h.Transaction.ListTransactions)
	authenticated.Get("/transactions/:id", h.Transaction.GetTransaction)

	admin := authenticated.Group("/admin", middleware.AdminOnly)
	admin.Post("/wallets/:id/credit/grant", h.Admin.GrantCredit)
	admin.Post("/wallets/:id/credit/revoke", h.Admin.RevokeCredit)
	admin.Post("/transactions/:id/reject", h.Admin.RejectTransaction)
	admin.Post("/transactions/:id/rollback", h.Admin.RollbackTransaction)
	admin.Post("/sweep/interest", h.Admin.SweepInterest)
	admin.Post("/sweep/pending", h.Admin.SweepPending)
}
