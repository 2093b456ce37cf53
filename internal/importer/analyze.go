package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bytefusion/loganalyzer/internal/pipeline"
	"github.com/bytefusion/loganalyzer/internal/store"
	"github.com/bytefusion/loganalyzer/pkg/models"
)

// Analyzer defines the pipeline surface the analyze job depends on.
type Analyzer interface {
	AnalyzeAndSave(ctx context.Context, records []models.LogRecord, customPrompt string) (*pipeline.BatchOutcome, error)
}

// AnalyzeJob runs imported logs through the analysis pipeline. Rows are
// marked analyzed only after the pipeline pass succeeds, so a failed pass
// retries the same rows on the next tick.
type AnalyzeJob struct {
	store    store.Store
	analyzer Analyzer
	limit    int
}

// NewAnalyzeJob creates an analyze job.
func NewAnalyzeJob(st store.Store, analyzer Analyzer, limit int) *AnalyzeJob {
	return &AnalyzeJob{
		store:    st,
		analyzer: analyzer,
		limit:    limit,
	}
}

// Run performs a single analyze pass over the oldest unanalyzed logs.
func (j *AnalyzeJob) Run(ctx context.Context) error {
	logs, err := j.store.ListUnanalyzedLogs(ctx, j.limit)
	if err != nil {
		return fmt.Errorf("listing unanalyzed logs: %w", err)
	}
	if len(logs) == 0 {
		slog.Info("no unanalyzed logs")
		return nil
	}

	records := make([]models.LogRecord, 0, len(logs))
	rowIDs := make([]uuid.UUID, 0, len(logs))
	for _, l := range logs {
		records = append(records, l.Record)
		rowIDs = append(rowIDs, l.RowID)
	}

	outcome, err := j.analyzer.AnalyzeAndSave(ctx, records, "")
	if err != nil {
		return fmt.Errorf("analyzing imported logs: %w", err)
	}

	// Non-error records are classified and done; mark the whole scan.
	if err := j.store.MarkLogsAnalyzed(ctx, rowIDs); err != nil {
		return fmt.Errorf("marking logs analyzed: %w", err)
	}

	if outcome == nil {
		slog.Info("analyze pass complete, no error records", "scanned", len(logs))
		return nil
	}
	slog.Info("analyze pass complete",
		"scanned", len(logs),
		"batch_id", outcome.BatchID,
		"total_errors", outcome.TotalErrors)
	return nil
}
