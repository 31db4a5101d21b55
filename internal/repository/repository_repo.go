package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heretounderstand/ndole/internal/model"
)

type RepoRepository struct {
	db *gorm.DB
}

func NewRepoRepository(db *gorm.DB) *RepoRepository {
	return &RepoRepository{db: db}
}

func (r *RepoRepository) Create(ctx context.Context, repo *model.Repository) error {
	return r.db.WithContext(ctx).Create(repo).Error
}

func (r *RepoRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Repository, error) {
	var repo model.Repository
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&repo).Error
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

func (r *RepoRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]model.Repository, int64, error) {
	var repos []model.Repository
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Repository{}).Where("owner_id = ?", ownerID)
	query.Count(&total)
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&repos).Error
	return repos, total, err
}

func (r *RepoRepository) FindPublic(ctx context.Context, limit, offset int) ([]model.Repository, int64, error) {
	var repos []model.Repository
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Repository{}).Where("is_public = ?", true)
	query.Count(&total)
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&repos).Error
	return repos, total, err
}

// RepositoryPatch is a partial update; nil fields are left untouched.
type RepositoryPatch struct {
	Name        *string
	Description *string
	IsPublic    *bool
	Categories  *model.StringArray
}

func (r *RepoRepository) Patch(ctx context.Context, id uuid.UUID, patch RepositoryPatch) error {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.IsPublic != nil {
		updates["is_public"] = *patch.IsPublic
	}
	if patch.Categories != nil {
		updates["categories"] = *patch.Categories
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Repository{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *RepoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Repository{}).Error
}

// Engagement records

func (r *RepoRepository) AddEngagement(ctx context.Context, e *model.Engagement) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *RepoRepository) RemoveEngagement(ctx context.Context, repoID, userID uuid.UUID, kind model.EngagementKind) error {
	return r.db.WithContext(ctx).
		Where("repository_id = ? AND user_id = ? AND kind = ?", repoID, userID, kind).
		Delete(&model.Engagement{}).Error
}

func (r *RepoRepository) HasEngagement(ctx context.Context, repoID, userID uuid.UUID, kind model.EngagementKind) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Engagement{}).
		Where("repository_id = ? AND user_id = ? AND kind = ?", repoID, userID, kind).
		Count(&count).Error
	return count > 0, err
}

func (r *RepoRepository) CountEngagements(ctx context.Context, repoID uuid.UUID, kind model.EngagementKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Engagement{}).
		Where("repository_id = ? AND kind = ?", repoID, kind).
		Count(&count).Error
	return count, err
}
