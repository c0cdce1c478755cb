package routes

import (
	"asser-platform/internal/adapters/http/handlers"
	"asser-platform/internal/adapters/http/middleware"
	"asser-platform/internal/adapters/persistence/store"
	"asser-platform/internal/config"
	"asser-platform/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// Setup builds the persistence and service graph and registers all routes
func Setup(app *fiber.App, cfg *config.Config) error {
	// Persistence layer
	st, err := newStore(cfg)
	if err != nil {
		return err
	}

	// Services layer
	notifier := services.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.Token)
	ledger := services.NewLedgerService(st)
	access := services.NewAccessService(ledger, cfg.AdminIDs)
	auth := services.NewAuthService(ledger)
	accrual := services.NewAccrualService(ledger, notifier)
	queue := services.NewQueueService(ledger, notifier, cfg.AdminIDs)
	engine := services.NewEngine(ledger, queue, accrual, access, auth, notifier)

	// Handlers layer
	eventHandler := handlers.NewEventHandler(engine)
	healthHandler := handlers.NewHealthHandler()

	// Routes
	api := app.Group("/api/v1")
	api.Get("/health", healthHandler.Health)
	api.Post("/events", middleware.GatewayAuth(cfg), eventHandler.HandleEvent)

	return nil
}

// newStore selects the persistence backend from configuration.
func newStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == "mysql" {
		return store.NewDBStore(cfg.Database.DSN())
	}
	return store.NewFileStore(cfg.DataDir)
}
