package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bytefusion/loganalyzer/internal/api/response"
	"github.com/bytefusion/loganalyzer/pkg/models"
)

// NewPromptHandler returns an http.HandlerFunc for POST /api/v1/prompts.
// It runs a free-form prompt with optional caller-supplied context.
func NewPromptHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt  string          `json:"prompt"`
			Context json.RawMessage `json:"context,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Prompt == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "prompt is required", nil)
			return
		}

		result, err := svc.AnalyzeCustomPrompt(r.Context(), req.Prompt, string(req.Context))
		if err != nil {
			writeAnalyzeError(w, err)
			return
		}

		response.JSON(w, result)
	}
}

// NewPromptLogsHandler returns an http.HandlerFunc for POST /api/v1/prompts/logs.
// It analyzes the submitted records with the caller's prompt instead of the
// standard analysis prompt.
func NewPromptLogsHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt  string             `json:"prompt"`
			Records []models.LogRecord `json:"records"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Prompt == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "prompt is required", nil)
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

		outcome, err := svc.AnalyzeAndSave(r.Context(), req.Records, req.Prompt)
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
