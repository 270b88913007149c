package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPostFailure_SendsBlocks(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer xoxb-test" {
			t.Errorf("expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload["channel"] != "C12345" {
			t.Errorf("expected channel C12345, got %v", payload["channel"])
		}
		if _, ok := payload["blocks"]; !ok {
			t.Error("expected blocks in payload")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	a := NewAlerter("xoxb-test", "C12345")
	a.apiURL = server.URL

	err := a.PostFailure(context.Background(), "sess-1", "transcription", "upstream returned 502")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestPostFailure_RateLimited(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	a := NewAlerter("xoxb-test", "C12345")
	a.apiURL = server.URL

	for i := 0; i < 5; i++ {
		if err := a.PostFailure(context.Background(), "sess-1", "analysis", "boom"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected rate limit to allow 1 call, got %d", calls.Load())
	}
}

func TestPostFailure_AllowsAfterWindow(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	a := NewAlerter("xoxb-test", "C12345")
	a.apiURL = server.URL

	if err := a.PostFailure(context.Background(), "sess-1", "analysis", "boom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Rewind the window instead of sleeping.
	a.mu.Lock()
	a.lastSent = time.Now().Add(-time.Minute)
	a.mu.Unlock()

	if err := a.PostFailure(context.Background(), "sess-2", "fetch", "boom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls after window reset, got %d", calls.Load())
	}
}
