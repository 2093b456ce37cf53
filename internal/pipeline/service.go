// Package pipeline orchestrates the batch analysis flow: classify records,
// obtain completions, parse results, persist the batch, and notify.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bytefusion/loganalyzer/internal/analysis"
	"github.com/bytefusion/loganalyzer/internal/notify"
	"github.com/bytefusion/loganalyzer/internal/store"
	"github.com/bytefusion/loganalyzer/pkg/models"
)

// BatchOutcome summarizes one completed analysis run.
type BatchOutcome struct {
	BatchID     uuid.UUID `json:"batch_id"`
	TotalErrors int       `json:"total_errors"`
	RecordIDs   []string  `json:"record_ids"`
}

// Service runs the analysis pipeline. A nil notifier disables delivery.
type Service struct {
	provider models.Provider
	store    store.Store
	notifier notify.Notifier
	timeout  time.Duration
}

// NewService creates a pipeline Service.
func NewService(provider models.Provider, st store.Store, notifier notify.Notifier, timeout time.Duration) *Service {
	return &Service{
		provider: provider,
		store:    st,
		notifier: notifier,
		timeout:  timeout,
	}
}

// AnalyzeAndSave classifies records, analyzes each error record, and persists
// the batch. When customPrompt is non-empty it replaces the standard analysis
// prompt for every record.
//
// A record whose completion fails is logged and excluded entirely: it joins
// neither Records nor Analyses and does not count toward TotalErrors, so the
// saved batch always pairs each record with its analysis. Persistence failure
// aborts the run. Webhook delivery failure is logged and swallowed: the batch
// is already durable by then. A run that finds no error records, or loses
// every error record to completion failures, returns (nil, nil) and writes
// nothing.
func (s *Service) AnalyzeAndSave(ctx context.Context, records []models.LogRecord, customPrompt string) (*BatchOutcome, error) {
	var (
		errorRecords []models.LogRecord
		analyses     []models.AnalysisResult
	)

	for _, rec := range records {
		if !analysis.IsError(rec) {
			continue
		}

		prompt := analysis.BuildPrompt(rec)
		if customPrompt != "" {
			recJSON, err := json.Marshal(rec)
			if err != nil {
				slog.Error("encoding record for custom prompt", "record_id", rec.ID, "error", err)
				continue
			}
			prompt = analysis.BuildCustomPrompt(customPrompt, string(recJSON))
		}

		raw, err := s.complete(ctx, prompt)
		if err != nil {
			slog.Error("ai completion failed, skipping record", "record_id", rec.ID, "error", err)
			continue
		}

		result := analysis.ParseResponse(raw, rec.Message)
		result.RecordID = rec.ID
		errorRecords = append(errorRecords, rec)
		analyses = append(analyses, result)
	}

	if len(errorRecords) == 0 {
		slog.Info("no analyzable error records in batch, nothing to save", "records", len(records))
		return nil, nil
	}

	batch := &models.Batch{
		TotalErrors: len(errorRecords),
		Records:     errorRecords,
		Analyses:    analyses,
	}

	batchID, err := s.store.SaveBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("saving batch: %w", err)
	}

	slog.Info("analysis batch saved",
		"batch_id", batchID,
		"total_errors", batch.TotalErrors,
		"analyzed", len(analyses))

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, models.NewWebhookPayload(batch)); err != nil {
			slog.Error("webhook delivery failed", "batch_id", batchID, "error", err)
		}
	}

	outcome := &BatchOutcome{
		BatchID:     batchID,
		TotalErrors: batch.TotalErrors,
		RecordIDs:   make([]string, 0, len(errorRecords)),
	}
	for _, rec := range errorRecords {
		if rec.ID != "" {
			outcome.RecordIDs = append(outcome.RecordIDs, rec.ID)
		}
	}
	return outcome, nil
}

// AnalyzeCustomPrompt runs a single free-form prompt against the backend and
// parses the structured response.
func (s *Service) AnalyzeCustomPrompt(ctx context.Context, prompt, contextJSON string) (*models.CustomAnalysis, error) {
	raw, err := s.complete(ctx, analysis.BuildCustomPrompt(prompt, contextJSON))
	if err != nil {
		return nil, err
	}
	result := analysis.ParseCustomResponse(raw)
	return &result, nil
}

func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	completeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.provider.Complete(completeCtx, prompt)
}
