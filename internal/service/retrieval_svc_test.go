package service

import (
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heretounderstand/ndole/internal/model"
)

func chunkWithVec(page, pos int, vec []float32) model.Chunk {
	return model.Chunk{Page: page, Position: pos, Embedding: pgvector.NewVector(vec)}
}

func TestDotProductRankerOrdering(t *testing.T) {
	candidates := []model.Chunk{
		chunkWithVec(0, 0, []float32{1, 0}),
		chunkWithVec(0, 1, []float32{0, 1}),
		chunkWithVec(0, 2, []float32{0.9, 0.1}),
	}

	ranked := DotProductRanker{}.Rank([]float32{1, 0}, candidates, 3)
	require.Len(t, ranked, 3)
	assert.Equal(t, 0, ranked[0].Chunk.Position)
	assert.Equal(t, 2, ranked[1].Chunk.Position)
	assert.Equal(t, 1, ranked[2].Chunk.Position)
	assert.InDelta(t, 1.0, float64(ranked[0].Score), 1e-6)
	assert.InDelta(t, 0.9, float64(ranked[1].Score), 1e-6)
	assert.InDelta(t, 0.0, float64(ranked[2].Score), 1e-6)
}

func TestDotProductRankerEmpty(t *testing.T) {
	ranked := DotProductRanker{}.Rank([]float32{1, 0}, nil, 5)
	assert.Empty(t, ranked)
}

func TestDotProductRankerTopK(t *testing.T) {
	var candidates []model.Chunk
	for i := 0; i < 30; i++ {
		candidates = append(candidates, chunkWithVec(0, i, []float32{float32(i) / 30, 0}))
	}
	ranked := DotProductRanker{}.Rank([]float32{1, 0}, candidates, 20)
	assert.Len(t, ranked, 20)
	assert.Equal(t, 29, ranked[0].Chunk.Position)
}

func TestDotProductRankerStableTies(t *testing.T) {
	candidates := []model.Chunk{
		chunkWithVec(0, 0, []float32{0.5, 0}),
		chunkWithVec(0, 1, []float32{0.5, 0}),
		chunkWithVec(0, 2, []float32{0.5, 0}),
	}
	ranked := DotProductRanker{}.Rank([]float32{1, 0}, candidates, 3)
	require.Len(t, ranked, 3)
	// Equal scores keep candidate order.
	assert.Equal(t, 0, ranked[0].Chunk.Position)
	assert.Equal(t, 1, ranked[1].Chunk.Position)
	assert.Equal(t, 2, ranked[2].Chunk.Position)
}

func TestDotMismatchedLengths(t *testing.T) {
	assert.InDelta(t, 1.0, float64(dot([]float32{1, 0, 5}, []float32{1, 0})), 1e-6)
	assert.InDelta(t, 0.0, float64(dot(nil, []float32{1})), 1e-6)
}
