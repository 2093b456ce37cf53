package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// --- helpers ---

func searchServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(handler)
}

func newTestClient(t *testing.T, baseURL string) *HTTPClient {
	t.Helper()
	return NewHTTPClient(baseURL, "logs-*", "", "", 5*time.Second)
}

// --- RecentLogs tests ---

func TestRecentLogs_ValidResponse(t *testing.T) {
	ts := searchServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logs-*/_search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}

		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding query: %v", err)
		}
		if req.Size != 100 {
			t.Errorf("unexpected size: %d", req.Size)
		}
		bounds := req.Query.Bool.Filter[0].Range["@timestamp"]
		if bounds.GTE != "now-5m" || bounds.LTE != "now" {
			t.Errorf("unexpected range: %+v", bounds)
		}

		resp := searchResponse{Hits: searchHitsEnvelope{Hits: []searchHit{
			{
				ID: "abc123",
				Source: hitSource{
					Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
					Message:   "payment failed for order 42",
					Msg:       hitMsg{LevelName: "ERROR"},
					Host:      hitHost{Hostname: "web-1"},
					Event:     hitEvent{Original: json.RawMessage(`{"level_name":"ERROR","level":400,"context":{"order":"42"}}`)},
				},
			},
			{
				ID: "def456",
				Source: hitSource{
					Timestamp: time.Date(2026, 3, 1, 11, 59, 0, 0, time.UTC),
					Message:   "request served",
					Msg:       hitMsg{LevelName: "INFO"},
					Host:      hitHost{Hostname: "web-2"},
				},
			},
		}}}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	records, err := c.RecentLogs(context.Background(), 5*time.Minute, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if records[0].ID != "abc123" {
		t.Errorf("unexpected id: %s", records[0].ID)
	}
	if records[0].Message != "payment failed for order 42" {
		t.Errorf("unexpected message: %s", records[0].Message)
	}
	if records[0].Level != "ERROR" {
		t.Errorf("unexpected level: %s", records[0].Level)
	}
	if records[0].Host != "web-1" {
		t.Errorf("unexpected host: %s", records[0].Host)
	}

	// The nested original event is decoded eagerly.
	if records[0].Original == nil {
		t.Fatal("expected decoded original event")
	}
	if records[0].Original.Level != 400 {
		t.Errorf("unexpected original level: %d", records[0].Original.Level)
	}
	if records[1].Original != nil {
		t.Error("expected nil original for record without event payload")
	}
}

func TestRecentLogs_QuotedOriginalEvent(t *testing.T) {
	// Some shippers double-encode event.original as a JSON string.
	ts := searchServer(t, func(w http.ResponseWriter, r *http.Request) {
		resp := searchResponse{Hits: searchHitsEnvelope{Hits: []searchHit{
			{
				ID: "ghi789",
				Source: hitSource{
					Message: "boom",
					Event:   hitEvent{Original: json.RawMessage(`"{\"level_name\":\"ERROR\",\"level\":500}"`)},
				},
			},
		}}}
		json.NewEncoder(w).Encode(resp)
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	records, err := c.RecentLogs(context.Background(), time.Minute, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if records[0].Original == nil {
		t.Fatal("expected decoded original event")
	}
	if records[0].Original.LevelName != "ERROR" || records[0].Original.Level != 500 {
		t.Errorf("unexpected original event: %+v", records[0].Original)
	}
}

func TestRecentLogs_SubMinuteWindowClamped(t *testing.T) {
	ts := searchServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		json.NewDecoder(r.Body).Decode(&req)
		bounds := req.Query.Bool.Filter[0].Range["@timestamp"]
		if bounds.GTE != "now-1m" {
			t.Errorf("expected now-1m, got %s", bounds.GTE)
		}
		json.NewEncoder(w).Encode(searchResponse{})
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	if _, err := c.RecentLogs(context.Background(), 10*time.Second, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecentLogs_EmptyHits(t *testing.T) {
	ts := searchServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{})
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	records, err := c.RecentLogs(context.Background(), 5*time.Minute, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestRecentLogs_QueryError(t *testing.T) {
	ts := searchServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	_, err := c.RecentLogs(context.Background(), 5*time.Minute, 100)
	if !errors.Is(err, ErrSearchQueryError) {
		t.Errorf("expected ErrSearchQueryError, got %v", err)
	}
}

func TestRecentLogs_Unreachable(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	_, err := c.RecentLogs(context.Background(), 5*time.Minute, 100)
	if !errors.Is(err, ErrSearchUnreachable) {
		t.Errorf("expected ErrSearchUnreachable, got %v", err)
	}
}

func TestRecentLogs_ContextCancelled(t *testing.T) {
	ts := searchServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := newTestClient(t, ts.URL)
	_, err := c.RecentLogs(ctx, 5*time.Minute, 100)
	if !errors.Is(err, ErrSearchTimeout) {
		t.Errorf("expected ErrSearchTimeout, got %v", err)
	}
}

func TestRecentLogs_BasicAuth(t *testing.T) {
	ts := searchServer(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "elastic" || pass != "secret" {
			t.Errorf("unexpected basic auth: %s %s %v", user, pass, ok)
		}
		json.NewEncoder(w).Encode(searchResponse{})
	})
	defer ts.Close()

	c := NewHTTPClient(ts.URL, "logs-*", "elastic", "secret", 5*time.Second)
	if _, err := c.RecentLogs(context.Background(), time.Minute, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Ping tests ---

func TestPing_OK(t *testing.T) {
	ts := searchServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Unreachable(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	if err := c.Ping(context.Background()); !errors.Is(err, ErrSearchUnreachable) {
		t.Errorf("expected ErrSearchUnreachable, got %v", err)
	}
}
