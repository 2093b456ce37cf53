// Package elastic queries an Elasticsearch-compatible search index for
// recent log records.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bytefusion/loganalyzer/pkg/models"
)

// Sentinel errors for search client failures.
var (
	ErrSearchUnreachable = errors.New("search index unreachable")
	ErrSearchQueryError  = errors.New("search query error")
	ErrSearchTimeout     = errors.New("search query timeout")
)

// Client is the interface for reading log records from the search index.
type Client interface {
	RecentLogs(ctx context.Context, window time.Duration, limit int) ([]models.LogRecord, error)
	Ping(ctx context.Context) error
}

// HTTPClient implements Client using the Elasticsearch HTTP API.
type HTTPClient struct {
	baseURL      string
	indexPattern string
	username     string
	password     string
	client       *http.Client
}

// NewHTTPClient creates a new search index HTTP client.
func NewHTTPClient(baseURL, indexPattern, username, password string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:      baseURL,
		indexPattern: indexPattern,
		username:     username,
		password:     password,
		client:       &http.Client{Timeout: timeout},
	}
}

// RecentLogs fetches records whose @timestamp falls within the trailing
// window, newest first.
func (c *HTTPClient) RecentLogs(ctx context.Context, window time.Duration, limit int) ([]models.LogRecord, error) {
	minutes := int(window.Minutes())
	if minutes < 1 {
		minutes = 1
	}

	query := searchRequest{
		Size: limit,
		Query: searchQuery{
			Bool: boolQuery{
				Filter: []rangeFilter{
					{
						Range: map[string]rangeBounds{
							"@timestamp": {
								GTE: fmt.Sprintf("now-%dm", minutes),
								LTE: "now",
							},
						},
					},
				},
			},
		},
		Sort: []map[string]sortOrder{
			{"@timestamp": {Order: "desc"}},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encoding search query: %w", err)
	}

	u := fmt.Sprintf("%s/%s/_search", c.baseURL, c.indexPattern)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSearchQueryError, resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	return parseHits(searchResp.Hits.Hits), nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSearchUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: search index not ready (status %d)", ErrSearchUnreachable, resp.StatusCode)
	}

	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.username != "" && c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrSearchTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrSearchTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrSearchUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrSearchUnreachable, err)
}

// parseHits converts search hits into log records. The packaged original
// event is decoded eagerly so downstream classification and prompting never
// touch the wire format.
func parseHits(hits []searchHit) []models.LogRecord {
	records := make([]models.LogRecord, 0, len(hits))
	for _, hit := range hits {
		rec := models.LogRecord{
			ID:        hit.ID,
			Message:   hit.Source.Message,
			Level:     hit.Source.Msg.LevelName,
			Host:      hit.Source.Host.Hostname,
			Timestamp: hit.Source.Timestamp,
			RawEvent:  hit.Source.Event.Original,
		}
		rec.DecodeOriginal()
		records = append(records, rec)
	}
	return records
}

// --- Elasticsearch wire types ---

type searchRequest struct {
	Size  int                    `json:"size"`
	Query searchQuery            `json:"query"`
	Sort  []map[string]sortOrder `json:"sort"`
}

type searchQuery struct {
	Bool boolQuery `json:"bool"`
}

type boolQuery struct {
	Filter []rangeFilter `json:"filter"`
}

type rangeFilter struct {
	Range map[string]rangeBounds `json:"range"`
}

type rangeBounds struct {
	GTE string `json:"gte"`
	LTE string `json:"lte"`
}

type sortOrder struct {
	Order string `json:"order"`
}

type searchResponse struct {
	Hits searchHitsEnvelope `json:"hits"`
}

type searchHitsEnvelope struct {
	Hits []searchHit `json:"hits"`
}

type searchHit struct {
	ID     string    `json:"_id"`
	Source hitSource `json:"_source"`
}

type hitSource struct {
	Timestamp time.Time `json:"@timestamp"`
	Message   string    `json:"message"`
	Msg       hitMsg    `json:"msg"`
	Host      hitHost   `json:"host"`
	Event     hitEvent  `json:"event"`
}

type hitMsg struct {
	LevelName string `json:"level_name"`
}

type hitHost struct {
	Hostname string `json:"hostname"`
}

type hitEvent struct {
	Original json.RawMessage `json:"original"`
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
