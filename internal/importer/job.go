// Package importer pulls recent log records from the search index into the
// database on a fixed cadence.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bytefusion/loganalyzer/internal/elastic"
	"github.com/bytefusion/loganalyzer/internal/store"
)

// Job imports the trailing window of logs from the search index. Records
// already ingested (same timestamp and message) are skipped.
type Job struct {
	search elastic.Client
	store  store.Store
	window time.Duration
	limit  int
}

// NewJob creates an import job.
func NewJob(search elastic.Client, st store.Store, window time.Duration, limit int) *Job {
	return &Job{
		search: search,
		store:  st,
		window: window,
		limit:  limit,
	}
}

// Run performs a single import pass. A record that fails to upsert is logged
// and skipped; the pass continues with the rest.
func (j *Job) Run(ctx context.Context) error {
	records, err := j.search.RecentLogs(ctx, j.window, j.limit)
	if err != nil {
		return fmt.Errorf("fetching recent logs: %w", err)
	}

	var inserted, skipped int
	for _, rec := range records {
		ok, err := j.store.UpsertLogRecord(ctx, rec)
		if err != nil {
			slog.Error("upserting log record", "record_id", rec.ID, "error", err)
			continue
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}

	slog.Info("import pass complete",
		"fetched", len(records),
		"inserted", inserted,
		"duplicates", skipped)
	return nil
}
