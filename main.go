package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/fadhlanhapp/taskaloop-ledger/config"
	"github.com/fadhlanhapp/taskaloop-ledger/handlers"
	"github.com/fadhlanhapp/taskaloop-ledger/jobs"
	"github.com/fadhlanhapp/taskaloop-ledger/repository"
	"github.com/fadhlanhapp/taskaloop-ledger/routes"
	"github.com/fadhlanhapp/taskaloop-ledger/services"
	"github.com/fadhlanhapp/taskaloop-ledger/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		utils.Logger.Fatalf("Failed to load configuration: %v", err)
	}
	utils.InitLogger(cfg.LogLevel, cfg.AppEnv)

	// Initialize New Relic
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.NewRelicAppName),
		newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigEnabled(cfg.NewRelicLicenseKey != ""),
	)
	if err != nil {
		utils.Logger.Warnf("Failed to initialize New Relic: %v", err)
	}

	// Initialize storage
	store, db, err := openStore(cfg)
	if err != nil {
		utils.Logger.Fatalf("Failed to initialize storage: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	// Initialize services
	repo := repository.NewTransactionRepository(store)
	ledgerService := services.NewLedgerService(repo)
	exportService := services.NewExportService(ledgerService)

	// Schedule pending payment reminders
	reminders := jobs.NewReminderJob(repo, cfg.ReminderMinAge)
	if err := reminders.Start(cfg.ReminderSchedule); err != nil {
		utils.Logger.Fatalf("Failed to start reminder job: %v", err)
	}
	defer reminders.Stop()

	// Set up Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Add New Relic middleware
	if app != nil {
		router.Use(nrgin.Middleware(app))
	}

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: !allowsAnyOrigin(cfg.CORSOrigins),
		MaxAge:           12 * time.Hour,
	}))

	// Set up routes
	routes.SetupRoutes(router,
		handlers.NewLedgerHandler(ledgerService),
		handlers.NewExportHandler(exportService),
	)

	// Start server
	utils.Logger.Infof("Server starting on port %s (storage: %s)...", cfg.Port, cfg.StorageDriver)
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.Logger.Fatalf("Failed to start server: %v", err)
	}
}

// openStore builds the key-value backend selected by STORAGE_DRIVER.
// The returned *sql.DB is nil for the in-memory store.
func openStore(cfg *config.Config) (repository.KVStore, *sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.StorageDriver {
	case config.StorageMemory:
		utils.Logger.Warn("Using in-memory storage; data is lost on restart")
		return repository.NewMemoryStore(), nil, nil
	case config.StorageSQLite:
		db, err := repository.OpenDB(ctx, repository.DriverSQLite, repository.SQLiteDSN(cfg.SQLitePath))
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLStore(db, repository.DriverSQLite), db, nil
	default:
		db, err := repository.OpenDB(ctx, repository.DriverPostgres, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLStore(db, repository.DriverPostgres), db, nil
	}
}

func allowsAnyOrigin(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
