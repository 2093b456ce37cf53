package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bytefusion/loganalyzer/pkg/models"
)

func testPayload() models.WebhookPayload {
	return models.NewWebhookPayload(&models.Batch{
		ID:          uuid.New(),
		CreatedAt:   time.Now().UTC(),
		TotalErrors: 1,
		Records:     []models.LogRecord{{ID: "rec-1", Message: "db down", Level: "ERROR"}},
		Analyses: []models.AnalysisResult{{
			Severity:                models.SeverityHigh,
			NeedsImmediateAttention: true,
			RecordID:                "rec-1",
		}},
	})
}

func TestNotify_Success(t *testing.T) {
	var gotBody models.WebhookPayload
	var gotHeaders http.Header

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	n := NewWebhookNotifier(ts.URL, 5*time.Second)
	payload := testPayload()

	if err := n.Notify(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotHeaders.Get("Content-Type") != "application/json" {
		t.Errorf("unexpected content type: %s", gotHeaders.Get("Content-Type"))
	}
	if gotHeaders.Get("User-Agent") != "LogAnalyzer/1.0" {
		t.Errorf("unexpected user agent: %s", gotHeaders.Get("User-Agent"))
	}
	if gotBody.Data.BatchID != payload.Data.BatchID {
		t.Errorf("expected batch id %s, got %s", payload.Data.BatchID, gotBody.Data.BatchID)
	}
	if gotBody.Data.Summary.HighSeverity != 1 {
		t.Errorf("expected 1 high severity, got %d", gotBody.Data.Summary.HighSeverity)
	}
}

func TestNotify_Non2xxStatus(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusFound} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		n := NewWebhookNotifier(ts.URL, 5*time.Second)
		err := n.Notify(context.Background(), testPayload())
		if !errors.Is(err, ErrDeliveryFailed) {
			t.Errorf("status %d: expected ErrDeliveryFailed, got %v", status, err)
		}
		ts.Close()
	}
}

func TestNotify_2xxStatusesAccepted(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusNoContent} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		n := NewWebhookNotifier(ts.URL, 5*time.Second)
		if err := n.Notify(context.Background(), testPayload()); err != nil {
			t.Errorf("status %d: unexpected error: %v", status, err)
		}
		ts.Close()
	}
}

func TestNotify_UnreachableEndpoint(t *testing.T) {
	n := NewWebhookNotifier("http://127.0.0.1:1", time.Second)
	err := n.Notify(context.Background(), testPayload())
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Errorf("expected ErrDeliveryFailed, got %v", err)
	}
}

func TestNotify_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	n := NewWebhookNotifier(ts.URL, 20*time.Millisecond)
	err := n.Notify(context.Background(), testPayload())
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Errorf("expected ErrDeliveryFailed, got %v", err)
	}
}
