package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Severity is the ordinal impact label attached to an analysis result.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// NormalizeSeverity upper-cases s and falls back to MEDIUM for anything
// outside the known set.
func NormalizeSeverity(s string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityHigh:
		return SeverityHigh
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// AnalysisResult is the structured analysis produced for one error record.
// Every field has a deterministic fallback; the parser that builds these
// never fails outright.
type AnalysisResult struct {
	Timestamp               time.Time `json:"timestamp"`
	ErrorType               string    `json:"error_type"`
	ErrorMessage            string    `json:"error_message"`
	FileLocation            string    `json:"file_location"`
	ProblematicCode         *string   `json:"problematic_code,omitempty"`
	SuggestedFix            *string   `json:"suggested_fix,omitempty"`
	StatusCode              int       `json:"status_code"`
	Severity                Severity  `json:"severity"`
	Impact                  string    `json:"impact"`
	RootCause               string    `json:"root_cause"`
	ImmediateActions        []string  `json:"immediate_actions"`
	ResolutionSteps         []string  `json:"resolution_steps"`
	NeedsImmediateAttention bool      `json:"needs_immediate_attention"`
	RecordID                string    `json:"record_id"`
}

// Batch is an immutable, identifier-addressed collection of analyzed error
// records produced by one orchestration run. The ID is assigned by the store
// at insertion time; corrections require a new batch.
type Batch struct {
	ID          uuid.UUID        `json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	TotalErrors int              `json:"total_errors"`
	Records     []LogRecord      `json:"records"`
	Analyses    []AnalysisResult `json:"analyses"`
}

// CustomAnalysis is the structured form of a free-form prompt response.
type CustomAnalysis struct {
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
	CodeSuggestions []string `json:"code_suggestions"`
	NextSteps       []string `json:"next_steps"`
}
