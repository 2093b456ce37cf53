package models

import "time"

// WebhookPayload is the read-only projection of a Batch sent to the webhook
// endpoint. It is computed fresh on each delivery attempt and never persisted.
type WebhookPayload struct {
	Data WebhookData `json:"data"`
}

type WebhookData struct {
	Timestamp   string           `json:"timestamp"`
	BatchID     string           `json:"batch_id"`
	RecordIDs   []string         `json:"record_ids"`
	TotalErrors int              `json:"total_errors"`
	Analyses    []AnalysisResult `json:"analyses"`
	Summary     WebhookSummary   `json:"summary"`
}

type WebhookSummary struct {
	HighSeverity    int             `json:"high_severity"`
	MediumSeverity  int             `json:"medium_severity"`
	LowSeverity     int             `json:"low_severity"`
	CriticalEntries []CriticalEntry `json:"critical_entries"`
}

// CriticalEntry identifies an analysis flagged as needing immediate attention.
type CriticalEntry struct {
	File         string `json:"file"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	RecordID     string `json:"record_id"`
}

// NewWebhookPayload derives the delivery payload from a persisted batch.
func NewWebhookPayload(b *Batch) WebhookPayload {
	recordIDs := make([]string, 0, len(b.Records))
	for _, rec := range b.Records {
		if rec.ID != "" {
			recordIDs = append(recordIDs, rec.ID)
		}
	}

	summary := WebhookSummary{CriticalEntries: []CriticalEntry{}}
	for _, a := range b.Analyses {
		switch a.Severity {
		case SeverityHigh:
			summary.HighSeverity++
		case SeverityLow:
			summary.LowSeverity++
		default:
			summary.MediumSeverity++
		}
		if a.NeedsImmediateAttention {
			summary.CriticalEntries = append(summary.CriticalEntries, CriticalEntry{
				File:         a.FileLocation,
				ErrorType:    a.ErrorType,
				ErrorMessage: a.ErrorMessage,
				RecordID:     a.RecordID,
			})
		}
	}

	return WebhookPayload{Data: WebhookData{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		BatchID:     b.ID.String(),
		RecordIDs:   recordIDs,
		TotalErrors: b.TotalErrors,
		Analyses:    b.Analyses,
		Summary:     summary,
	}}
}
