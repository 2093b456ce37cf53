package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/bytefusion/loganalyzer/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// IngestedLog pairs a stored log record with its database row identifier,
// which is what MarkLogsAnalyzed keys on.
type IngestedLog struct {
	RowID  uuid.UUID
	Record models.LogRecord
}

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	SaveBatch(ctx context.Context, batch *models.Batch) (uuid.UUID, error)
	GetBatch(ctx context.Context, id uuid.UUID) (*models.Batch, error)

	UpsertLogRecord(ctx context.Context, rec models.LogRecord) (bool, error)
	ListUnanalyzedLogs(ctx context.Context, limit int) ([]IngestedLog, error)
	MarkLogsAnalyzed(ctx context.Context, rowIDs []uuid.UUID) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}
