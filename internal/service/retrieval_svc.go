package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/heretounderstand/ndole/internal/model"
	"github.com/heretounderstand/ndole/internal/repository"
)

// DefaultTopK is how many chunks a retrieval returns at most.
const DefaultTopK = 20

// ScoredChunk pairs a chunk with its similarity to the query.
type ScoredChunk struct {
	Chunk model.Chunk
	Score float32
}

// Ranker orders candidate chunks against a query vector. Ties preserve
// candidate order, so results are stable for equal scores.
type Ranker interface {
	Rank(query []float32, candidates []model.Chunk, k int) []ScoredChunk
}

// DotProductRanker scores by dot product, which equals cosine similarity
// for the normalized vectors the embedding API returns.
type DotProductRanker struct{}

func (DotProductRanker) Rank(query []float32, candidates []model.Chunk, k int) []ScoredChunk {
	scored := make([]ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, ScoredChunk{Chunk: c, Score: dot(query, c.Embedding.Slice())})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// RetrievalService finds the chunks most relevant to a query within a
// repository's documents.
type RetrievalService struct {
	embedder Embedder
	docRepo  *repository.DocumentRepository
	ranker   Ranker
	logger   *slog.Logger
}

func NewRetrievalService(embedder Embedder, docRepo *repository.DocumentRepository, ranker Ranker) *RetrievalService {
	if ranker == nil {
		ranker = DotProductRanker{}
	}
	return &RetrievalService{
		embedder: embedder,
		docRepo:  docRepo,
		ranker:   ranker,
		logger:   slog.Default().With("component", "retrieval"),
	}
}

// BestMatches embeds the query and ranks every chunk of the repository's
// documents, optionally restricted to a single page. A repository with no
// chunks yields an empty result, not an error.
func (s *RetrievalService) BestMatches(ctx context.Context, repositoryID uuid.UUID, query string, page *int, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	docs, err := s.docRepo.FindByRepositoryID(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return []ScoredChunk{}, nil
	}

	docIDs := make([]uuid.UUID, len(docs))
	for i, d := range docs {
		docIDs[i] = d.ID
	}

	chunks, err := s.docRepo.FindChunksByDocumentIDs(ctx, docIDs)
	if err != nil {
		return nil, err
	}

	if page != nil {
		filtered := chunks[:0]
		for _, c := range chunks {
			if c.Page == *page {
				filtered = append(filtered, c)
			}
		}
		chunks = filtered
	}
	if len(chunks) == 0 {
		return []ScoredChunk{}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	matches := s.ranker.Rank(queryVec.Slice(), chunks, k)
	s.logger.Debug("retrieved chunks", "repository_id", repositoryID, "candidates", len(chunks), "returned", len(matches))
	return matches, nil
}
