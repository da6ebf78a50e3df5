package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPEmbedder_Embed(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("expected model test-model, got %q", req.Model)
		}

		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, "test-model", time.Second)

	vec, err := e.Embed(context.Background(), "resize an image")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("expected 3-dim vector, got %v", vec)
	}

	// Second call for the same text is served from the memo cache.
	if _, err := e.Embed(context.Background(), "resize an image"); err != nil {
		t.Fatal(err)
	}
	if requests != 1 {
		t.Errorf("expected 1 backend request, got %d", requests)
	}

	e.ClearCache()
	if _, err := e.Embed(context.Background(), "resize an image"); err != nil {
		t.Fatal(err)
	}
	if requests != 2 {
		t.Errorf("expected a backend request after clearing the cache, got %d", requests)
	}
}

func TestHTTPEmbedder_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, "test-model", time.Second)

	if _, err := e.Embed(context.Background(), "anything"); err == nil {
		t.Fatal("expected an error for a failing backend")
	}
}

func TestHTTPEmbedder_EmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{})
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, "test-model", time.Second)

	if _, err := e.Embed(context.Background(), "anything"); err == nil {
		t.Fatal("expected an error for an empty embedding")
	}
}

func TestHTTPEmbedder_ContextCancelled(t *testing.T) {
	// The handler must not block on the request context alone: Close
	// waits for in-flight handlers, so it is released via done as well.
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}))
	defer srv.Close()
	defer close(done)

	e := NewHTTPEmbedder(srv.URL, "test-model", time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := e.Embed(ctx, "anything"); err == nil {
		t.Fatal("expected an error when the context deadline expires")
	}
}
