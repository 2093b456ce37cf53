package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bytefusion/loganalyzer/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Analysis Batches ---

// SaveBatch persists a batch in one insert. The batch ID and creation time
// are assigned here; callers read them back from the batch after the call.
func (s *PostgresStore) SaveBatch(ctx context.Context, batch *models.Batch) (uuid.UUID, error) {
	batch.ID = uuid.New()
	batch.CreatedAt = time.Now().UTC()

	records, err := json.Marshal(batch.Records)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode batch records: %w", err)
	}
	analyses, err := json.Marshal(batch.Analyses)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode batch analyses: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analysis_batches (id, created_at, total_errors, records, analyses)
		 VALUES ($1, $2, $3, $4, $5)`,
		batch.ID, batch.CreatedAt, batch.TotalErrors, records, analyses)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save batch: %w", err)
	}
	return batch.ID, nil
}

func (s *PostgresStore) GetBatch(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	var (
		b        models.Batch
		records  []byte
		analyses []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, created_at, total_errors, records, analyses
		 FROM analysis_batches WHERE id = $1`, id,
	).Scan(&b.ID, &b.CreatedAt, &b.TotalErrors, &records, &analyses)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}

	if err := json.Unmarshal(records, &b.Records); err != nil {
		return nil, fmt.Errorf("decode batch records: %w", err)
	}
	if err := json.Unmarshal(analyses, &b.Analyses); err != nil {
		return nil, fmt.Errorf("decode batch analyses: %w", err)
	}
	return &b, nil
}

// --- Ingested Logs ---

// UpsertLogRecord inserts a record unless one with the same timestamp and
// message already exists. Returns true when a new row was written.
func (s *PostgresStore) UpsertLogRecord(ctx context.Context, rec models.LogRecord) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO ingested_logs (id, source_id, message, level, host, log_timestamp, original_event, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 ON CONFLICT (log_timestamp, message) DO NOTHING`,
		uuid.New(), rec.ID, rec.Message, rec.Level, rec.Host, rec.Timestamp, []byte(rec.RawEvent))
	if err != nil {
		return false, fmt.Errorf("upsert log record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListUnanalyzedLogs returns stored records that have not been through the
// analysis pipeline yet, oldest first.
func (s *PostgresStore) ListUnanalyzedLogs(ctx context.Context, limit int) ([]IngestedLog, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, source_id, message, level, host, log_timestamp, original_event
		 FROM ingested_logs WHERE NOT analyzed
		 ORDER BY log_timestamp ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unanalyzed logs: %w", err)
	}
	defer rows.Close()

	logs := make([]IngestedLog, 0)
	for rows.Next() {
		var (
			l        IngestedLog
			original []byte
		)
		if err := rows.Scan(&l.RowID, &l.Record.ID, &l.Record.Message, &l.Record.Level,
			&l.Record.Host, &l.Record.Timestamp, &original); err != nil {
			return nil, fmt.Errorf("scan ingested log: %w", err)
		}
		l.Record.RawEvent = original
		l.Record.DecodeOriginal()
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// MarkLogsAnalyzed flags the given rows so the next analyze pass skips them.
func (s *PostgresStore) MarkLogsAnalyzed(ctx context.Context, rowIDs []uuid.UUID) error {
	if len(rowIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE ingested_logs SET analyzed = TRUE WHERE id = ANY($1)`, rowIDs)
	if err != nil {
		return fmt.Errorf("mark logs analyzed: %w", err)
	}
	return nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
