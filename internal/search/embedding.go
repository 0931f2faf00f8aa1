package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// Gemini rejects oversized inputs; hotel texts are truncated client side.
	maxEmbeddingInputChars = 8000
)

// Embedder turns free text into a vector in the hotel embedding space.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Disabled is an Embedder for deployments without an embedding backend
// configured. Every call fails, which surfaces as a 503 to clients.
type Disabled struct{}

func (Disabled) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("no embedding backend configured")
}

// GeminiEmbedder calls the Gemini embedContent REST endpoint.
type GeminiEmbedder struct {
	apiKey string
	model  string
	client *http.Client
}

func NewGeminiEmbedder(apiKey, model string) *GeminiEmbedder {
	return &GeminiEmbedder{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type embedContentRequest struct {
	Model   string       `json:"model"`
	Content embedContent `json:"content"`
}

type embedContent struct {
	Parts []embedPart `json:"parts"`
}

type embedPart struct {
	Text string `json:"text"`
}

type embedContentResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

func (e *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if len(text) > maxEmbeddingInputChars {
		text = text[:maxEmbeddingInputChars]
	}

	payload, err := json.Marshal(embedContentRequest{
		Model:   "models/" + e.model,
		Content: embedContent{Parts: []embedPart{{Text: text}}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request failed: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", geminiBaseURL, e.model, e.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build embed request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embed request returned status %d: %s", resp.StatusCode, body)
	}

	var parsed embedContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode embed response failed: %w", err)
	}
	if len(parsed.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embed response contained no vector")
	}

	return parsed.Embedding.Values, nil
}
