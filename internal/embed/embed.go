/*
Package embed wraps the external embedding backend.

The backend is a black box to the engine: embed(text) -> vector | error,
always called with a bounded timeout. Failures are non-fatal; the search
pipeline degrades to lexical-only scoring.
*/
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Embedder produces dense vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// HTTPEmbedder calls an Ollama-compatible embeddings endpoint
// (POST {model, prompt} -> {embedding}).
type HTTPEmbedder struct {
	url    string
	model  string
	client *http.Client

	mu    sync.RWMutex
	cache map[string][]float32
}

// NewHTTPEmbedder creates a client for the endpoint at url. The timeout
// bounds every request; a zero timeout defaults to five seconds.
func NewHTTPEmbedder(url, model string, timeout time.Duration) *HTTPEmbedder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPEmbedder{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: timeout},
		cache:  make(map[string][]float32),
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed returns the embedding for text, memoizing results in memory.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	if vec, ok := e.cache[text]; ok {
		e.mu.RUnlock()
		return vec, nil
	}
	e.mu.RUnlock()

	body, err := json.Marshal(embedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed backend returned status %d", resp.StatusCode)
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode embed response: %w", err)
	}
	if len(decoded.Embedding) == 0 {
		return nil, fmt.Errorf("embed backend returned empty vector")
	}

	vec := make([]float32, len(decoded.Embedding))
	for i, v := range decoded.Embedding {
		vec[i] = float32(v)
	}

	e.mu.Lock()
	e.cache[text] = vec
	e.mu.Unlock()

	return vec, nil
}

// ClearCache drops the in-memory embedding cache.
func (e *HTTPEmbedder) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string][]float32)
}
