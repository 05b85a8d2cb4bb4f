package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/internal/domain"
)

// GenerateInvoicesJobName is the name of the monthly invoice generation job
const GenerateInvoicesJobName = "generate_company_invoices"

// OverdueSweepJobName is the name of the daily overdue invoice sweep
const OverdueSweepJobName = "overdue_invoice_sweep"

const defaultJobTimeout = 10 * time.Minute

// InvoiceService defines the billing operations the jobs need.
// This interface allows the jobs to call the service without importing the
// service package directly.
type InvoiceService interface {
	// GenerateMonthlyInvoices creates draft company invoices for all active
	// partners for the given billing month. Generation is idempotent per
	// partner and period.
	GenerateMonthlyInvoices(ctx context.Context, year, month int) (*domain.GenerateInvoicesResponse, error)

	// MarkOverdueInvoices moves unpaid company invoices whose due date has
	// passed to OVERDUE. Returns the number of invoices updated.
	MarkOverdueInvoices(ctx context.Context, asOf time.Time) (int, error)
}

// GenerateInvoicesJob generates company invoices for the previous month.
type GenerateInvoicesJob struct {
	billing InvoiceService
	logger  *zap.Logger
}

func NewGenerateInvoicesJob(billing InvoiceService, logger *zap.Logger) *GenerateInvoicesJob {
	return &GenerateInvoicesJob{
		billing: billing,
		logger:  logger,
	}
}

// Run executes the invoice generation job for the previous calendar month.
// This is called by the scheduler according to the cron expression.
func (j *GenerateInvoicesJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultJobTimeout)
	defer cancel()

	start := time.Now()
	prev := start.UTC().AddDate(0, -1, 0)
	year, month := prev.Year(), int(prev.Month())

	j.logger.Info("starting company invoice generation job",
		zap.Int("year", year),
		zap.Int("month", month))

	result, err := j.billing.GenerateMonthlyInvoices(ctx, year, month)
	if err != nil {
		j.logger.Error("company invoice generation failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("company invoice generation completed",
		zap.Int("generated", result.Generated),
		zap.Int("skipped", result.Skipped),
		zap.Duration("duration", time.Since(start)))
}

// OverdueSweepJob marks unpaid invoices past their due date as overdue.
type OverdueSweepJob struct {
	billing InvoiceService
	logger  *zap.Logger
}

func NewOverdueSweepJob(billing InvoiceService, logger *zap.Logger) *OverdueSweepJob {
	return &OverdueSweepJob{
		billing: billing,
		logger:  logger,
	}
}

// Run executes the overdue sweep.
func (j *OverdueSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultJobTimeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting overdue invoice sweep")

	updated, err := j.billing.MarkOverdueInvoices(ctx, start.UTC())
	if err != nil {
		j.logger.Error("overdue invoice sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("overdue invoice sweep completed",
		zap.Int("marked_overdue", updated),
		zap.Duration("duration", time.Since(start)))
}

// RegisterBillingJobs registers the invoice generation and overdue sweep
// jobs with the scheduler using the configured cron expressions.
func RegisterBillingJobs(scheduler *Scheduler, billing InvoiceService, logger *zap.Logger, generateCron, overdueCron string) error {
	generateJob := NewGenerateInvoicesJob(billing, logger)
	if err := scheduler.AddJob(GenerateInvoicesJobName, generateCron, generateJob.Run); err != nil {
		return err
	}

	overdueJob := NewOverdueSweepJob(billing, logger)
	return scheduler.AddJob(OverdueSweepJobName, overdueCron, overdueJob.Run)
}
