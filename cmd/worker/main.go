package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/docuflow/docuflow/internal/app/config"
	appservices "github.com/docuflow/docuflow/internal/app/services"
	"github.com/docuflow/docuflow/internal/infrastructure/database"
	"github.com/docuflow/docuflow/pkg/logger"
)

// BillingWorker runs the periodic invoice generation and reminder
// cycles that the HTTP surface only triggers on demand.
type BillingWorker struct {
	config         *config.Config
	serviceManager *appservices.ServiceManager
	logger         *logger.Logger
	wg             sync.WaitGroup
}

func main() {
	// Initialize logger
	log := logger.New().Component("worker")

	log.Info("Starting DocuFlow billing worker")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize database
	db, err := database.New(cfg.GetDatabaseURL())
	if err != nil {
		log.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	// Initialize service manager
	serviceManager, err := appservices.NewServiceManager(cfg, db, log)
	if err != nil {
		log.Error("Failed to initialize service manager", "error", err)
		os.Exit(1)
	}
	defer serviceManager.Close()

	// Health check
	if err := serviceManager.HealthCheck(); err != nil {
		log.Error("Service health check failed", "error", err)
		os.Exit(1)
	}

	worker := &BillingWorker{
		config:         cfg,
		serviceManager: serviceManager,
		logger:         log,
	}

	log.Info("Billing worker started",
		"invoice_interval", cfg.Worker.InvoiceInterval,
		"reminder_interval", cfg.Worker.ReminderInterval)

	worker.Start()
}

// Start runs the billing loops until an interrupt arrives.
func (w *BillingWorker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w.wg.Add(2)
	go w.invoiceLoop(ctx)
	go w.reminderLoop(ctx)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	w.logger.Info("Shutdown signal received, stopping worker...")
	cancel()
	w.wg.Wait()
	w.logger.Info("Billing worker stopped")
}

// invoiceLoop generates subscription and client invoices each cycle.
// Generation is idempotent per billing period, so overlapping runs
// against another worker instance only produce skips.
func (w *BillingWorker) invoiceLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Worker.InvoiceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runInvoiceCycle(ctx)
		}
	}
}

func (w *BillingWorker) runInvoiceCycle(ctx context.Context) {
	now := time.Now().UTC()

	result, err := w.serviceManager.InvoiceService.GenerateCompanyInvoices(ctx, now)
	if err != nil {
		w.logger.Error("Company invoice cycle failed", "error", err)
	} else {
		w.logger.Info("Company invoice cycle finished",
			"period", result.Period,
			"generated", result.Generated,
			"skipped", result.Skipped)
	}

	companies, err := w.serviceManager.Repositories.CompanyRepo.ListActive(ctx)
	if err != nil {
		w.logger.Error("Failed to list active companies", "error", err)
		return
	}

	for _, company := range companies {
		result, err := w.serviceManager.InvoiceService.GenerateClientInvoices(ctx, company.ID, now)
		if err != nil {
			w.logger.Error("Client invoice cycle failed",
				"company_id", company.ID, "error", err)
			continue
		}
		if result.Generated > 0 {
			w.logger.Info("Client invoice cycle finished",
				"company_id", company.ID,
				"period", result.Period,
				"generated", result.Generated,
				"skipped", result.Skipped)
		}
	}
}

// reminderLoop emails payers whose current invoices remain unsubmitted.
func (w *BillingWorker) reminderLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Worker.ReminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sent, failures, err := w.serviceManager.InvoiceService.RemindUnpaid(ctx, time.Now().UTC())
			if err != nil {
				w.logger.Error("Reminder cycle failed", "error", err)
				continue
			}
			w.logger.Info("Reminder cycle finished", "sent", sent, "failed", len(failures))
			for _, failure := range failures {
				w.logger.Warn("Reminder delivery failed",
					"recipient", failure.Recipient,
					"invoice_id", failure.InvoiceID,
					"reason", failure.Reason)
			}
		}
	}
}
