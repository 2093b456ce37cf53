package importer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytefusion/loganalyzer/internal/importer"
	"github.com/bytefusion/loganalyzer/internal/store"
	"github.com/bytefusion/loganalyzer/pkg/models"
)

type fakeSearch struct {
	records   []models.LogRecord
	err       error
	gotWindow time.Duration
	gotLimit  int
}

func (f *fakeSearch) RecentLogs(ctx context.Context, window time.Duration, limit int) ([]models.LogRecord, error) {
	f.gotWindow = window
	f.gotLimit = limit
	return f.records, f.err
}

func (f *fakeSearch) Ping(ctx context.Context) error { return nil }

type fakeLogStore struct {
	upserts  []models.LogRecord
	dupes    map[string]bool
	failIDs  map[string]bool
	inserted int

	unanalyzed []store.IngestedLog
	listErr    error
	markedIDs  []uuid.UUID
	markErr    error
}

func (s *fakeLogStore) Ping(ctx context.Context) error { return nil }
func (s *fakeLogStore) SaveBatch(ctx context.Context, b *models.Batch) (uuid.UUID, error) {
	return uuid.Nil, nil
}
func (s *fakeLogStore) GetBatch(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	return nil, nil
}
func (s *fakeLogStore) UpsertLogRecord(ctx context.Context, rec models.LogRecord) (bool, error) {
	if s.failIDs[rec.ID] {
		return false, errors.New("write failed")
	}
	s.upserts = append(s.upserts, rec)
	if s.dupes[rec.ID] {
		return false, nil
	}
	s.inserted++
	return true, nil
}
func (s *fakeLogStore) ListUnanalyzedLogs(ctx context.Context, limit int) ([]store.IngestedLog, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if len(s.unanalyzed) > limit {
		return s.unanalyzed[:limit], nil
	}
	return s.unanalyzed, nil
}
func (s *fakeLogStore) MarkLogsAnalyzed(ctx context.Context, rowIDs []uuid.UUID) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.markedIDs = append(s.markedIDs, rowIDs...)
	return nil
}
func (s *fakeLogStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *fakeLogStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error { return nil }
func (s *fakeLogStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error   { return nil }
func (s *fakeLogStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)    { return nil, nil }
func (s *fakeLogStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error         { return nil }

func TestRun_ImportsAllRecords(t *testing.T) {
	search := &fakeSearch{records: []models.LogRecord{
		{ID: "a", Message: "one"},
		{ID: "b", Message: "two"},
	}}
	st := &fakeLogStore{}

	job := importer.NewJob(search, st, 5*time.Minute, 100)
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, 5*time.Minute, search.gotWindow)
	assert.Equal(t, 100, search.gotLimit)
	assert.Len(t, st.upserts, 2)
	assert.Equal(t, 2, st.inserted)
}

func TestRun_DuplicatesSkipped(t *testing.T) {
	search := &fakeSearch{records: []models.LogRecord{
		{ID: "a", Message: "one"},
		{ID: "b", Message: "two"},
	}}
	st := &fakeLogStore{dupes: map[string]bool{"b": true}}

	job := importer.NewJob(search, st, time.Minute, 10)
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, st.inserted)
}

func TestRun_UpsertFailureDoesNotAbort(t *testing.T) {
	search := &fakeSearch{records: []models.LogRecord{
		{ID: "a", Message: "one"},
		{ID: "bad", Message: "two"},
		{ID: "c", Message: "three"},
	}}
	st := &fakeLogStore{failIDs: map[string]bool{"bad": true}}

	job := importer.NewJob(search, st, time.Minute, 10)
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 2, st.inserted)
}

func TestRun_SearchFailure(t *testing.T) {
	search := &fakeSearch{err: errors.New("index unavailable")}
	job := importer.NewJob(search, &fakeLogStore{}, time.Minute, 10)

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching recent logs")
}
