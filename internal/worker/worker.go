// Package worker dispatches background jobs to their processing paths.
// It is shared between cmd/api (embedded worker) and cmd/worker
// (standalone).
package worker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lifelens/lifelens/internal/banking"
	"github.com/lifelens/lifelens/internal/domain"
	"github.com/lifelens/lifelens/internal/finance"
	"github.com/lifelens/lifelens/internal/insight"
	"github.com/lifelens/lifelens/internal/jobs"
	"github.com/lifelens/lifelens/internal/receipts"
)

// HealthLogSource provides the health logs an insight job reads.
type HealthLogSource interface {
	HealthLogs(ctx context.Context, userID string) ([]domain.HealthLog, error)
}

// InsightSaver persists generated insights.
type InsightSaver interface {
	SaveInsight(ctx context.Context, ins *domain.UserInsight) error
}

// Processor routes jobs by type. Scan jobs run the receipt pipeline;
// insight jobs join health logs with categorized spending and persist the
// generated insight.
type Processor struct {
	scanPipeline *receipts.Pipeline
	healthLogs   HealthLogSource
	insights     InsightSaver
	bank         banking.API
	categorizer  *finance.Categorizer
	log          zerolog.Logger
}

// NewProcessor creates a job processor. scanPipeline may be nil when
// receipt scanning is not configured; bank may be nil when insight jobs
// should run on health data alone.
func NewProcessor(scanPipeline *receipts.Pipeline, healthLogs HealthLogSource, insights InsightSaver, bank banking.API, categorizer *finance.Categorizer, log zerolog.Logger) *Processor {
	return &Processor{
		scanPipeline: scanPipeline,
		healthLogs:   healthLogs,
		insights:     insights,
		bank:         bank,
		categorizer:  categorizer,
		log:          log,
	}
}

// Handle is the jobs.Handler entry point.
func (p *Processor) Handle(ctx context.Context, job *jobs.Job) error {
	p.log.Info().
		Str("job_id", job.ID).
		Str("type", string(job.Type)).
		Str("user_id", job.UserID).
		Msg("Processing job")

	switch job.Type {
	case jobs.TypeScanReceipt:
		return p.scanReceipt(ctx, job)
	case jobs.TypeGenerateInsight:
		return p.generateInsight(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (p *Processor) scanReceipt(ctx context.Context, job *jobs.Job) error {
	if p.scanPipeline == nil {
		return fmt.Errorf("receipt scanning is not configured")
	}
	if job.ReceiptURI == "" || job.AccountID == "" {
		return fmt.Errorf("scan job %s is missing receipt_uri or account_id", job.ID)
	}

	state := &receipts.State{
		UserID:    job.UserID,
		AccountID: job.AccountID,
		GCSURI:    job.ReceiptURI,
	}
	if err := p.scanPipeline.Execute(ctx, state); err != nil {
		return fmt.Errorf("scan job %s: %w", job.ID, err)
	}

	p.log.Info().
		Str("job_id", job.ID).
		Str("merchant", state.Receipt.MerchantName).
		Float64("amount", state.Receipt.Amount).
		Str("category", string(state.Category)).
		Msg("Receipt scanned")

	return nil
}

func (p *Processor) generateInsight(ctx context.Context, job *jobs.Job) error {
	if job.UserID == "" {
		return fmt.Errorf("insight job %s is missing user_id", job.ID)
	}

	logs, err := p.healthLogs.HealthLogs(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("insight job %s: loading health logs: %w", job.ID, err)
	}

	transactions, err := p.categorizedPurchases(ctx, job.AccountID)
	if err != nil {
		// Spending enriches the insight but is not required for it.
		p.log.Warn().Err(err).Str("job_id", job.ID).Msg("Proceeding without spending data")
		transactions = nil
	}

	ins := insight.Generate(logs, transactions)
	if ins.UserID == "" {
		ins.UserID = job.UserID
	}

	if err := p.insights.SaveInsight(ctx, &ins); err != nil {
		return fmt.Errorf("insight job %s: saving insight: %w", job.ID, err)
	}

	p.log.Info().
		Str("job_id", job.ID).
		Str("user_id", job.UserID).
		Int("recommendations", len(ins.Recommendations)).
		Msg("Insight generated")

	return nil
}

func (p *Processor) categorizedPurchases(ctx context.Context, accountID string) ([]domain.CategorizedPurchase, error) {
	if p.bank == nil || accountID == "" {
		return nil, nil
	}

	purchases, err := p.bank.AccountPurchases(ctx, accountID)
	if err != nil {
		return nil, err
	}
	merchants, err := banking.MerchantDirectory(ctx, p.bank)
	if err != nil {
		return nil, err
	}
	return p.categorizer.CategorizeAll(purchases, merchants), nil
}
