package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heretounderstand/ndole/internal/model"
	"github.com/heretounderstand/ndole/internal/pdfext"
)

// ChunkService turns extracted pages into embedded chunks. Blank blocks are
// dropped before positions are assigned, so positions stay sequential per
// page even when a page contains whitespace-only blocks.
type ChunkService struct {
	embedder Embedder
	logger   *slog.Logger
}

func NewChunkService(embedder Embedder) *ChunkService {
	return &ChunkService{
		embedder: embedder,
		logger:   slog.Default().With("component", "chunker"),
	}
}

// BuildChunks produces the chunk rows for a document from its extracted
// pages. Embeddings are generated per page batch; the full block text is
// stored while only the truncated prefix is embedded.
func (s *ChunkService) BuildChunks(ctx context.Context, documentID uuid.UUID, pages []pdfext.PageText) ([]model.Chunk, error) {
	var chunks []model.Chunk

	for _, page := range pages {
		var texts []string
		for _, block := range page.Blocks {
			if strings.TrimSpace(block) == "" {
				continue
			}
			texts = append(texts, block)
		}
		if len(texts) == 0 {
			continue
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}

		for i, text := range texts {
			chunks = append(chunks, model.Chunk{
				DocumentID: documentID,
				Page:       page.Page,
				Position:   i,
				Text:       text,
				Embedding:  vectors[i],
			})
		}
	}

	s.logger.Debug("built chunks", "document_id", documentID, "count", len(chunks))
	return chunks, nil
}
