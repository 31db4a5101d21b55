package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "abc", Truncate("abcde", 3))
	assert.Equal(t, "", Truncate("", 10))

	// Rune-based, never splits a multi-byte character.
	got := Truncate(strings.Repeat("é", 600), MaxEmbedChars)
	assert.Equal(t, MaxEmbedChars, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}

func embeddingServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedBatch(t *testing.T) {
	var gotAuth string
	srv := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		inputs, ok := req.Input.([]interface{})
		require.True(t, ok)
		// Respond out of order to exercise index-based reassembly.
		resp := embeddingResponse{}
		for i := len(inputs) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, struct {
				Index     int       `json:"index"`
				Embedding []float32 `json:"embedding"`
			}{Index: i, Embedding: []float32{float32(i), 1}})
		}
		json.NewEncoder(w).Encode(resp)
	})

	svc := NewEmbeddingService("sk-test", srv.URL, "text-embedding-3-small", 2, time.Second)

	vectors, err := svc.EmbedBatch(context.Background(), []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	for i, v := range vectors {
		assert.Equal(t, []float32{float32(i), 1}, v.Slice())
	}
}

func TestEmbedBatchTruncatesInput(t *testing.T) {
	var received []string
	srv := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		for _, in := range req.Input.([]interface{}) {
			received = append(received, in.(string))
		}
		json.NewEncoder(w).Encode(embeddingResponse{Data: []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}{{Index: 0, Embedding: []float32{1}}}})
	})

	svc := NewEmbeddingService("sk-test", srv.URL, "m", 1, time.Second)

	_, err := svc.EmbedBatch(context.Background(), []string{strings.Repeat("x", 2000)})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Len(t, received[0], MaxEmbedChars)
}

func TestEmbedBatchRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(embeddingResponse{Data: []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}{{Index: 0, Embedding: []float32{1}}}})
	})

	svc := NewEmbeddingService("sk-test", srv.URL, "m", 1, time.Second)

	vectors, err := svc.EmbedBatch(context.Background(), []string{"text"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbedBatchSurfacesAPIError(t *testing.T) {
	srv := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	})

	svc := NewEmbeddingService("bad", srv.URL, "m", 1, time.Second)

	_, err := svc.EmbedBatch(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestEmbedBatchRejectsShortResponse(t *testing.T) {
	srv := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		// One embedding for two inputs; must not yield zero vectors.
		json.NewEncoder(w).Encode(embeddingResponse{Data: []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}{{Index: 0, Embedding: []float32{1}}}})
	})

	svc := NewEmbeddingService("sk-test", srv.URL, "m", 1, time.Second)

	_, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 embeddings for 2 inputs")
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	svc := NewEmbeddingService("sk-test", "http://unreachable.invalid", "m", 1, time.Second)

	vectors, err := svc.EmbedBatch(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, vectors)
}
