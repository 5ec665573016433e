// Package routes defines the API routing configuration.
// It wires repositories into services, services into handlers, and
// registers every route with its middleware.
package routes

import (
	"time"

	"atlasbank/internal/handlers"
	"atlasbank/internal/middleware"
	"atlasbank/internal/repositories"
	"atlasbank/internal/services/account"
	"atlasbank/internal/services/activity"
	"atlasbank/internal/services/auth"
	"atlasbank/internal/services/card"
	"atlasbank/internal/services/export"
	"atlasbank/internal/services/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App) {
	// Repositories
	userRepo := repositories.NewUserRepository(repositories.DB)
	accountRepo := repositories.NewAccountRepository(repositories.DB)
	bankRepo := repositories.NewBankRepository(repositories.DB)
	activityRepo := repositories.NewActivityRepository(repositories.DB)

	// Services
	activityService := activity.NewService(activityRepo, accountRepo)
	authService := auth.NewService(userRepo, activityService)
	ledgerService := ledger.NewService(
		accountRepo,
		authService,
		activityService,
		repositories.CacheService,
		&ledger.NoopMetricsCollector{},
	)
	accountService := account.NewService(accountRepo, bankRepo, userRepo, ledgerService)
	cardService := card.NewService(accountRepo, activityService)
	exportService := export.NewService(accountRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, accountService)
	accountHandler := handlers.NewAccountHandler(ledgerService, accountService, activityService, exportService)
	bankHandler := handlers.NewBankHandler(accountService)
	cardHandler := handlers.NewCardHandler(cardService)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public endpoints. Login gets its own rate limit on top of the
	// app-wide one.
	loginLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
	})
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", loginLimiter, authHandler.Login)
	api.Post("/auth/refresh", authHandler.Refresh)

	// Everything below requires a valid token.
	protected := api.Group("/", authMiddleware.Handler)

	protected.Post("/auth/logout", authHandler.Logout)
	protected.Put("/auth/password", authHandler.ChangePassword)
	protected.Put("/auth/pin", authHandler.SetPin)
	protected.Put("/profile", authHandler.UpdateProfile)
	protected.Post("/profile/deactivate", authHandler.Deactivate)

	protected.Get("/banks", bankHandler.ListBanks)
	protected.Post("/accounts", bankHandler.OpenAccount)
	protected.Get("/accounts", accountHandler.ListAccounts)
	protected.Put("/accounts/:id/nickname", accountHandler.SetNickname)
	protected.Get("/accounts/:id/balance", accountHandler.GetBalance)
	protected.Get("/accounts/:id/transactions", accountHandler.GetRecentTransactions)
	protected.Get("/accounts/:id/transactions/export", accountHandler.ExportTransactions)
	protected.Get("/accounts/:id/activity", accountHandler.GetActivity)

	protected.Get("/accounts/:id/card", cardHandler.GetCard)
	protected.Get("/accounts/:id/card/cvv", cardHandler.GetCardCVV)
	protected.Put("/accounts/:id/card", cardHandler.ToggleOption)

	protected.Post("/transactions/deposit", accountHandler.Deposit)
	protected.Post("/transactions/transfer", accountHandler.Transfer)
	protected.Post("/transactions/self-transfer", accountHandler.SelfTransfer)
	protected.Post("/transactions/paybill", accountHandler.PayBill)
	protected.Get("/recipients/verify", accountHandler.VerifyRecipient)
}
