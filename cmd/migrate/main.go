package main

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/docuflow/docuflow/internal/app/config"
	"github.com/docuflow/docuflow/internal/infrastructure/database"
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/docuflow/docuflow/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	command := os.Args[1]

	// Initialize logger
	logger := logger.New().Component("migrate")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.New(cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		runMigrations(db, logger)
	case "reset":
		resetDatabase(db, logger)
	case "seed":
		seedDatabase(db, logger)
	case "status":
		migrationStatus(db, logger)
	default:
		logger.Error("Unknown command", "command", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage: go run cmd/migrate/main.go <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  up     - Run all pending migrations")
	fmt.Println("  reset  - Drop all tables and recreate them")
	fmt.Println("  seed   - Seed the database with initial data")
	fmt.Println("  status - Show migration status")
}

func runMigrations(db *database.DB, logger *logger.Logger) {
	logger.Info("Running database migrations...")

	// Auto-migrate all models
	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		return
	}

	logger.Info("Database migrations completed successfully")
}

func resetDatabase(db *database.DB, logger *logger.Logger) {
	logger.Info("Resetting database...")

	// Drop all tables in reverse order to handle foreign key constraints
	tables := []interface{}{
		&models.SharedLink{},
		&models.Dispute{},
		&models.CustomInvoice{},
		&models.ClientInvoice{},
		&models.Invoice{},
		&models.DocumentEditHistory{},
		&models.Document{},
		&models.DocumentTag{},
		&models.Client{},
		&models.User{},
		&models.ClientPlan{},
		&models.Company{},
		&models.Plan{},
	}

	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			logger.Error("Failed to drop table", "error", err)
		}
	}

	// Recreate all tables
	runMigrations(db, logger)

	logger.Info("Database reset completed")
}

func seedDatabase(db *database.DB, logger *logger.Logger) {
	logger.Info("Seeding database with initial data...")

	starter := &models.Plan{
		ID:    uuid.New(),
		Title: "Starter",
		PlanRates: models.PlanRates{
			MonthlyPrice:             decimal.NewFromInt(50),
			UploadPricePerTen:        decimal.NewFromInt(1),
			DownloadPricePerThousand: decimal.NewFromInt(2),
			SharePricePerThousand:    decimal.NewFromInt(3),
			UploadCount:              10,
			DownloadCount:            1000,
			ShareCount:               1000,
			BillingDuration:          1,
		},
		AllowSharing:  true,
		AllowDisputes: true,
	}
	if err := db.FirstOrCreate(starter, models.Plan{Title: "Starter"}).Error; err != nil {
		logger.Error("Failed to create starter plan", "error", err)
		return
	}

	business := &models.Plan{
		ID:    uuid.New(),
		Title: "Business",
		PlanRates: models.PlanRates{
			MonthlyPrice:             decimal.NewFromInt(100),
			UploadPricePerTen:        decimal.NewFromInt(2),
			DownloadPricePerThousand: decimal.NewFromInt(3),
			SharePricePerThousand:    decimal.NewFromInt(5),
			UploadCount:              10,
			DownloadCount:            1000,
			ShareCount:               1000,
			BillingDuration:          1,
		},
		AllowSharing:  true,
		AllowDisputes: true,
	}
	if err := db.FirstOrCreate(business, models.Plan{Title: "Business"}).Error; err != nil {
		logger.Error("Failed to create business plan", "error", err)
		return
	}

	logger.Info("Database seeding completed successfully")
}

func migrationStatus(db *database.DB, logger *logger.Logger) {
	logger.Info("Checking migration status...")

	tables := map[string]interface{}{
		"plans":                 &models.Plan{},
		"companies":             &models.Company{},
		"client_plans":          &models.ClientPlan{},
		"users":                 &models.User{},
		"clients":               &models.Client{},
		"document_tags":         &models.DocumentTag{},
		"documents":             &models.Document{},
		"document_edit_history": &models.DocumentEditHistory{},
		"invoices":              &models.Invoice{},
		"client_invoices":       &models.ClientInvoice{},
		"custom_invoices":       &models.CustomInvoice{},
		"disputes":              &models.Dispute{},
		"shared_links":          &models.SharedLink{},
	}

	for tableName, model := range tables {
		exists := db.Migrator().HasTable(model)
		status := "✓ exists"
		if !exists {
			status = "✗ missing"
		}
		logger.Info("Table status", "table", tableName, "status", status)
	}
}
