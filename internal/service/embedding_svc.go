package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pgvector/pgvector-go"
)

// MaxEmbedChars caps the text sent to the embedding model. Characters are a
// conservative proxy for tokens; the stored chunk keeps the full text.
const MaxEmbedChars = 512

const embedRetries = 2

// Embedder maps text to a fixed-dimensional vector. Deterministic for
// identical input and model version; vectors are expected pre-normalized so
// dot product approximates cosine similarity.
type Embedder interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
	EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error)
}

// EmbeddingService is an OpenAI-compatible embeddings client. Mixing models
// within one repository invalidates similarity comparisons, so the model
// is fixed at construction.
type EmbeddingService struct {
	apiKey     string
	baseURL    string
	model      string
	dimensions int
	httpClient *http.Client
	logger     *slog.Logger
}

func NewEmbeddingService(apiKey, baseURL, model string, dimensions int, timeout time.Duration) *EmbeddingService {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if dimensions == 0 {
		dimensions = 1536
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &EmbeddingService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		dimensions: dimensions,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default().With("component", "embedding"),
	}
}

type embeddingRequest struct {
	Input      interface{} `json:"input"`
	Model      string      `json:"model"`
	Dimensions int         `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed generates the embedding for a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return pgvector.Vector{}, err
	}
	if len(vectors) == 0 {
		return pgvector.Vector{}, fmt.Errorf("no embedding returned")
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts, truncating each to
// MaxEmbedChars. Transport failures are retried with linear backoff before
// being surfaced.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	truncated := make([]string, len(texts))
	for i, t := range texts {
		truncated[i] = Truncate(t, MaxEmbedChars)
	}

	var lastErr error
	for attempt := 0; attempt <= embedRetries; attempt++ {
		if attempt > 0 {
			s.logger.Warn("retrying embedding call", "attempt", attempt, "error", lastErr)
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		vectors, err := s.call(ctx, truncated)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *EmbeddingService) call(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	reqBody := embeddingRequest{
		Input: texts,
		Model: s.model,
	}
	if s.dimensions > 0 {
		reqBody.Dimensions = s.dimensions
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API error (status %d): %s", resp.StatusCode, string(body))
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	// A short response would leave zero vectors in the missing slots, which
	// would be stored and never rank.
	if len(embResp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding API returned %d embeddings for %d inputs", len(embResp.Data), len(texts))
	}

	vectors := make([]pgvector.Vector, len(embResp.Data))
	for _, data := range embResp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		vectors[data.Index] = pgvector.NewVector(data.Embedding)
	}
	return vectors, nil
}

// Dimensions returns the embedding dimensionality.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// Truncate cuts text to at most n runes.
func Truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		return string(runes[:n])
	}
	return text
}
