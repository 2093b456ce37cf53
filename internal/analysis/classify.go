// Package analysis holds the core log-analysis pipeline pieces: error
// classification, prompt construction, and structured parsing of model output.
package analysis

import "github.com/bytefusion/loganalyzer/pkg/models"

// IsError reports whether a record warrants analysis. Rules apply in order
// and short-circuit on the first match:
//
//  1. record level is ERROR or EMERGENCY
//  2. the decoded original event has level_name ERROR or a numeric level >= 400
//
// A record whose original event failed to decode at ingestion is judged on
// its level alone; classification itself never fails.
func IsError(rec models.LogRecord) bool {
	switch rec.Level {
	case "ERROR", "EMERGENCY":
		return true
	}

	if ev := rec.Original; ev != nil {
		if ev.LevelName == "ERROR" || ev.Level >= 400 {
			return true
		}
	}

	return false
}
