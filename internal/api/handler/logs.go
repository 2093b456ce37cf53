// Package handler contains the HTTP handlers for the analyzer API. Handlers
// depend on narrow interfaces so tests can swap in fakes.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bytefusion/loganalyzer/internal/api/response"
	"github.com/bytefusion/loganalyzer/internal/pipeline"
	"github.com/bytefusion/loganalyzer/pkg/models"
)

const maxBatchRecords = 1000

// Analyzer defines the pipeline interface the handlers depend on.
type Analyzer interface {
	AnalyzeAndSave(ctx context.Context, records []models.LogRecord, customPrompt string) (*pipeline.BatchOutcome, error)
	AnalyzeCustomPrompt(ctx context.Context, prompt, contextJSON string) (*models.CustomAnalysis, error)
}

// NewIngestHandler returns an http.HandlerFunc for POST /api/v1/logs.
// It analyzes the submitted records and persists the resulting batch.
func NewIngestHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Records []models.LogRecord `json:"records"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if len(req.Records) == 0 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "records is required", nil)
			return
		}
		if len(req.Records) > maxBatchRecords {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "too many records in one batch", nil)
			return
		}

		for i := range req.Records {
			req.Records[i].DecodeOriginal()
		}

		outcome, err := svc.AnalyzeAndSave(r.Context(), req.Records, "")
		if err != nil {
			writeAnalyzeError(w, err)
			return
		}

		if outcome == nil {
			response.JSON(w, map[string]any{"message": "No errors to analyze"})
			return
		}

		response.Created(w, outcome)
	}
}

// writeAnalyzeError maps pipeline errors to HTTP responses.
func writeAnalyzeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrProviderUnavailable):
		response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
			"The AI provider is not available", nil)
	case errors.Is(err, models.ErrCompletionTimeout):
		response.Error(w, http.StatusGatewayTimeout, "AI_COMPLETION_TIMEOUT",
			"AI completion took too long and was cancelled", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
