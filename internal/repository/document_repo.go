package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heretounderstand/ndole/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *DocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) FindByRepositoryID(ctx context.Context, repoID uuid.UUID) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).
		Where("repository_id = ?", repoID).
		Order("created_at ASC").
		Find(&docs).Error
	return docs, err
}

// DocumentPatch is a partial update; nil fields are left untouched.
type DocumentPatch struct {
	Title       *string
	Description *string
	Category    *string
}

func (r *DocumentRepository) Patch(ctx context.Context, id uuid.UUID, patch DocumentPatch) error {
	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Document{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Document{}).Error
}

// Chunks

func (r *DocumentRepository) CreateChunks(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&chunks, 200).Error
}

// FindChunksByDocumentIDs loads the embedding set of a repository: the union
// of its documents' chunks, in (document, page, position) order.
func (r *DocumentRepository) FindChunksByDocumentIDs(ctx context.Context, documentIDs []uuid.UUID) ([]model.Chunk, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	var chunks []model.Chunk
	err := r.db.WithContext(ctx).
		Where("document_id IN ?", documentIDs).
		Order("document_id ASC, page ASC, position ASC").
		Find(&chunks).Error
	return chunks, err
}

func (r *DocumentRepository) DeleteChunksByDocumentID(ctx context.Context, documentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&model.Chunk{}).Error
}

func (r *DocumentRepository) CountChunks(ctx context.Context, documentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Chunk{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	return count, err
}
