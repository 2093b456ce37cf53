package analysis_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bytefusion/loganalyzer/internal/analysis"
	"github.com/bytefusion/loganalyzer/pkg/models"
)

func TestBuildPrompt_Deterministic(t *testing.T) {
	rec := models.LogRecord{
		Message:   "connection refused",
		Level:     "ERROR",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Original: &models.OriginalEvent{
			Context: map[string]any{"b": "2", "a": "1"},
		},
	}

	first := analysis.BuildPrompt(rec)
	second := analysis.BuildPrompt(rec)
	assert.Equal(t, first, second)
}

func TestBuildPrompt_Sections(t *testing.T) {
	rec := models.LogRecord{
		Message:   "db timeout",
		Level:     "ERROR",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	prompt := analysis.BuildPrompt(rec)

	assert.Contains(t, prompt, "ERROR DETECTION")
	assert.Contains(t, prompt, "CODE ANALYSIS")
	assert.Contains(t, prompt, "ANALYSIS")
	assert.Contains(t, prompt, "RESOLUTION")
	assert.Contains(t, prompt, "- Message: db timeout")
	assert.Contains(t, prompt, "- Level: ERROR")
	assert.Contains(t, prompt, "- Error Context: {}")
	assert.Contains(t, prompt, "- Timestamp: 2026-03-01T12:00:00Z")
}

func TestBuildPrompt_OriginalEventOverrides(t *testing.T) {
	rec := models.LogRecord{
		Message:   "oops",
		Level:     "ERROR",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Original: &models.OriginalEvent{
			Context:  map[string]any{"user_id": "42"},
			Datetime: "2026-03-01 11:59:58",
		},
	}

	prompt := analysis.BuildPrompt(rec)
	assert.Contains(t, prompt, `{"user_id":"42"}`)
	assert.Contains(t, prompt, "- Timestamp: 2026-03-01 11:59:58")
}

func TestBuildCustomPrompt(t *testing.T) {
	prompt := analysis.BuildCustomPrompt("why is checkout failing?", `{"service":"checkout"}`)

	assert.Contains(t, prompt, "Context:\n{\"service\":\"checkout\"}")
	assert.Contains(t, prompt, "Prompt:\nwhy is checkout failing?")
	assert.Contains(t, prompt, "1. Analysis")
	assert.Contains(t, prompt, "4. Next Steps")
}

func TestBuildCustomPrompt_EmptyContext(t *testing.T) {
	prompt := analysis.BuildCustomPrompt("anything odd?", "")
	assert.Contains(t, prompt, "Context:\n{}")
}
