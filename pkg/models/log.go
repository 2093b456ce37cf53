// Package models contains shared data models used across the log analyzer codebase.
package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// LogRecord is a single ingested log entry. Records are immutable once
// ingested; the pipeline owns them for the duration of one analysis pass.
type LogRecord struct {
	ID        string          `json:"id"`
	Message   string          `json:"message"`
	Level     string          `json:"level"`
	Host      string          `json:"host"`
	Timestamp time.Time       `json:"timestamp"`
	RawEvent  json.RawMessage `json:"original_event,omitempty"`

	// Original is the decoded form of RawEvent. It is populated exactly once
	// at the ingestion boundary via DecodeOriginal and is nil when the raw
	// payload is absent or does not parse. Downstream code never re-parses
	// RawEvent.
	Original *OriginalEvent `json:"-"`
}

// OriginalEvent is the structured payload some shippers nest inside a log
// record. Level carries the numeric level (>= 400 indicates an error).
type OriginalEvent struct {
	LevelName string         `json:"level_name"`
	Level     int            `json:"level"`
	Context   map[string]any `json:"context,omitempty"`
	Datetime  string         `json:"datetime,omitempty"`
}

// DecodeOriginal populates Original from RawEvent. A missing or malformed
// payload leaves Original nil; decoding never fails the record.
func (r *LogRecord) DecodeOriginal() {
	r.Original = decodeOriginalEvent(r.RawEvent)
}

func decodeOriginalEvent(raw json.RawMessage) *OriginalEvent {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 {
		return nil
	}

	// Shippers often deliver event.original as a JSON-encoded string; unwrap
	// it before decoding the event itself.
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil
		}
		data = []byte(inner)
	}

	var ev OriginalEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil
	}
	return &ev
}
