package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heretounderstand/ndole/internal/pdfext"
)

// fakeEmbedder records inputs and returns constant small vectors.
type fakeEmbedder struct {
	seen []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	f.seen = append(f.seen, text)
	return pgvector.NewVector([]float32{1, 0}), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	vectors := make([]pgvector.Vector, len(texts))
	for i, t := range texts {
		f.seen = append(f.seen, t)
		vectors[i] = pgvector.NewVector([]float32{1, 0})
	}
	return vectors, nil
}

func TestBuildChunksSkipsBlankBlocks(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc := NewChunkService(embedder)
	docID := uuid.New()

	pages := []pdfext.PageText{
		{Page: 0, Blocks: []string{"Hello", "   ", "", "World"}},
	}

	chunks, err := svc.BuildChunks(context.Background(), docID, pages)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	// Positions are sequential over the kept blocks, not block indices.
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, 1, chunks[1].Position)
	assert.Equal(t, "Hello", chunks[0].Text)
	assert.Equal(t, "World", chunks[1].Text)
	assert.Equal(t, []string{"Hello", "World"}, embedder.seen)
}

func TestBuildChunksPositionsResetPerPage(t *testing.T) {
	svc := NewChunkService(&fakeEmbedder{})
	docID := uuid.New()

	pages := []pdfext.PageText{
		{Page: 0, Blocks: []string{"a", "b"}},
		{Page: 1, Blocks: []string{"", "c"}},
	}

	chunks, err := svc.BuildChunks(context.Background(), docID, pages)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, 0, chunks[0].Page)
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, 0, chunks[1].Page)
	assert.Equal(t, 1, chunks[1].Position)
	assert.Equal(t, 1, chunks[2].Page)
	assert.Equal(t, 0, chunks[2].Position)
	assert.Equal(t, docID, chunks[2].DocumentID)
}

func TestBuildChunksAllBlankPage(t *testing.T) {
	svc := NewChunkService(&fakeEmbedder{})

	pages := []pdfext.PageText{
		{Page: 0, Blocks: []string{"  ", "\n", ""}},
	}
	chunks, err := svc.BuildChunks(context.Background(), uuid.New(), pages)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
