package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heretounderstand/ndole/internal/model"
	"github.com/heretounderstand/ndole/internal/pkg/apperr"
	"github.com/heretounderstand/ndole/internal/repository"
)

// RepositoryService manages document repositories and their engagement
// records.
type RepositoryService struct {
	repoRepo *repository.RepoRepository
	docRepo  *repository.DocumentRepository
	stats    *StatsService
	logger   *slog.Logger
}

func NewRepositoryService(repoRepo *repository.RepoRepository, docRepo *repository.DocumentRepository, stats *StatsService) *RepositoryService {
	return &RepositoryService{
		repoRepo: repoRepo,
		docRepo:  docRepo,
		stats:    stats,
		logger:   slog.Default().With("component", "repository"),
	}
}

func (s *RepositoryService) Create(ctx context.Context, ownerID uuid.UUID, name, description string, isPublic bool, categories []string) (*model.Repository, error) {
	if name == "" {
		return nil, apperr.Validation("repository name is required")
	}
	repo := &model.Repository{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		IsPublic:    isPublic,
		Categories:  model.StringArray(categories),
	}
	if err := s.repoRepo.Create(ctx, repo); err != nil {
		return nil, err
	}

	if _, err := s.stats.Apply(ctx, ownerID, model.StatsDelta{RepositoriesCreated: 1, XPGained: 10}, false); err != nil {
		s.logger.Warn("stats update failed after repository create", "repository_id", repo.ID, "error", err)
	}
	return repo, nil
}

// Get loads a repository the user may see: their own, or any public one.
// A non-owner access is recorded as an engagement and counts toward the
// repositories_accessed stat.
func (s *RepositoryService) Get(ctx context.Context, userID, repoID uuid.UUID) (*model.Repository, error) {
	repo, err := s.find(ctx, repoID)
	if err != nil {
		return nil, err
	}
	if repo.OwnerID != userID {
		if !repo.IsPublic {
			return nil, apperr.Forbidden("repository is private")
		}
		if err := s.repoRepo.AddEngagement(ctx, &model.Engagement{
			RepositoryID: repoID,
			UserID:       userID,
			Kind:         model.EngagementAccess,
		}); err != nil {
			s.logger.Warn("recording repository access failed", "repository_id", repoID, "error", err)
		}
		if _, err := s.stats.Apply(ctx, userID, model.StatsDelta{RepositoriesAccessed: 1}, false); err != nil {
			s.logger.Warn("stats update failed after repository access", "repository_id", repoID, "error", err)
		}
	}
	return repo, nil
}

func (s *RepositoryService) ListMine(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]model.Repository, int64, error) {
	return s.repoRepo.FindByOwner(ctx, ownerID, normalizeLimit(limit), offset)
}

func (s *RepositoryService) ListPublic(ctx context.Context, limit, offset int) ([]model.Repository, int64, error) {
	return s.repoRepo.FindPublic(ctx, normalizeLimit(limit), offset)
}

func (s *RepositoryService) Patch(ctx context.Context, userID, repoID uuid.UUID, patch repository.RepositoryPatch) (*model.Repository, error) {
	repo, err := s.find(ctx, repoID)
	if err != nil {
		return nil, err
	}
	if repo.OwnerID != userID {
		return nil, apperr.Forbidden("only the owner can modify a repository")
	}
	if err := s.repoRepo.Patch(ctx, repoID, patch); err != nil {
		return nil, err
	}
	return s.find(ctx, repoID)
}

// Delete removes the repository with its documents and their chunks.
func (s *RepositoryService) Delete(ctx context.Context, userID, repoID uuid.UUID) error {
	repo, err := s.find(ctx, repoID)
	if err != nil {
		return err
	}
	if repo.OwnerID != userID {
		return apperr.Forbidden("only the owner can delete a repository")
	}

	docs, err := s.docRepo.FindByRepositoryID(ctx, repoID)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.docRepo.DeleteChunksByDocumentID(ctx, doc.ID); err != nil {
			return err
		}
		if err := s.docRepo.Delete(ctx, doc.ID); err != nil {
			return err
		}
	}
	return s.repoRepo.Delete(ctx, repoID)
}

// Engage records or toggles an engagement. Access and share rows always
// append; like/dislike/bookmark toggle off on repeat, and like/dislike are
// mutually exclusive. Owners cannot engage with their own repository.
func (s *RepositoryService) Engage(ctx context.Context, userID, repoID uuid.UUID, kind model.EngagementKind) (bool, error) {
	repo, err := s.find(ctx, repoID)
	if err != nil {
		return false, err
	}
	if repo.OwnerID == userID {
		return false, apperr.Validation("cannot engage with your own repository")
	}

	switch kind {
	case model.EngagementAccess, model.EngagementShare:
		err := s.repoRepo.AddEngagement(ctx, &model.Engagement{RepositoryID: repoID, UserID: userID, Kind: kind})
		return err == nil, err

	case model.EngagementLike, model.EngagementDislike:
		active, err := s.repoRepo.HasEngagement(ctx, repoID, userID, kind)
		if err != nil {
			return false, err
		}
		if active {
			return false, s.repoRepo.RemoveEngagement(ctx, repoID, userID, kind)
		}
		opposite := model.EngagementDislike
		if kind == model.EngagementDislike {
			opposite = model.EngagementLike
		}
		if err := s.repoRepo.RemoveEngagement(ctx, repoID, userID, opposite); err != nil {
			return false, err
		}
		err = s.repoRepo.AddEngagement(ctx, &model.Engagement{RepositoryID: repoID, UserID: userID, Kind: kind})
		return err == nil, err

	case model.EngagementBookmark:
		active, err := s.repoRepo.HasEngagement(ctx, repoID, userID, kind)
		if err != nil {
			return false, err
		}
		if active {
			return false, s.repoRepo.RemoveEngagement(ctx, repoID, userID, kind)
		}
		err = s.repoRepo.AddEngagement(ctx, &model.Engagement{RepositoryID: repoID, UserID: userID, Kind: kind})
		return err == nil, err
	}
	return false, apperr.Validation("unknown engagement kind %q", kind)
}

// Stats summarizes a repository's documents and engagement counts.
// Pertinence is likes minus dislikes.
func (s *RepositoryService) Stats(ctx context.Context, repoID uuid.UUID) (*model.RepositoryStats, error) {
	if _, err := s.find(ctx, repoID); err != nil {
		return nil, err
	}

	docs, err := s.docRepo.FindByRepositoryID(ctx, repoID)
	if err != nil {
		return nil, err
	}

	counts := map[model.EngagementKind]int64{}
	for _, kind := range []model.EngagementKind{
		model.EngagementAccess, model.EngagementLike, model.EngagementDislike,
		model.EngagementBookmark, model.EngagementShare,
	} {
		n, err := s.repoRepo.CountEngagements(ctx, repoID, kind)
		if err != nil {
			return nil, err
		}
		counts[kind] = n
	}

	return &model.RepositoryStats{
		DocumentCount:   len(docs),
		AccessCount:     int(counts[model.EngagementAccess]),
		PertinenceCount: int(counts[model.EngagementLike] - counts[model.EngagementDislike]),
		SharedCount:     int(counts[model.EngagementShare]),
		SavedCount:      int(counts[model.EngagementBookmark]),
	}, nil
}

func (s *RepositoryService) find(ctx context.Context, repoID uuid.UUID) (*model.Repository, error) {
	repo, err := s.repoRepo.FindByID(ctx, repoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("repository %s not found", repoID)
	}
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
