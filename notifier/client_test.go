package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPClient_Send(t *testing.T) {
	var received atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %v, want application/json", ct)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	if err := client.Send(context.Background(), []byte(`{"msg_type":"text"}`)); err != nil {
		t.Fatalf("Send() error = %v, want nil", err)
	}
	if received.Load() != 1 {
		t.Errorf("Send() made %d requests, want 1", received.Load())
	}
}

func TestHTTPClient_Send_RetriesOnFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	if err := client.Send(context.Background(), []byte(`{}`)); err != nil {
		t.Fatalf("Send() error = %v, want nil after retries", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("Send() made %d attempts, want 3", attempts.Load())
	}
}

func TestHTTPClient_Send_MaxRetriesExceeded(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	if err := client.Send(context.Background(), []byte(`{}`)); err == nil {
		t.Error("Send() error = nil, want max retries error")
	}
	if attempts.Load() != maxRetries {
		t.Errorf("Send() made %d attempts, want %d", attempts.Load(), maxRetries)
	}
}

func TestHTTPClient_Send_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewHTTPClient(server.URL, 5*time.Second)
	if err := client.Send(ctx, []byte(`{}`)); err == nil {
		t.Error("Send() error = nil, want context error")
	}
}
