package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heretounderstand/ndole/internal/model"
	"github.com/heretounderstand/ndole/internal/pdfext"
	"github.com/heretounderstand/ndole/internal/pkg/apperr"
	"github.com/heretounderstand/ndole/internal/pkg/storage"
	"github.com/heretounderstand/ndole/internal/repository"
)

// DocumentService handles the upload pipeline: validation, text extraction,
// chunking with embeddings, binary storage, and persistence.
type DocumentService struct {
	docRepo       *repository.DocumentRepository
	repoRepo      *repository.RepoRepository
	chunker       *ChunkService
	store         *storage.Store
	stats         *StatsService
	maxUploadSize int64
	logger        *slog.Logger
}

func NewDocumentService(docRepo *repository.DocumentRepository, repoRepo *repository.RepoRepository, chunker *ChunkService, store *storage.Store, stats *StatsService, maxUploadSize int64) *DocumentService {
	return &DocumentService{
		docRepo:       docRepo,
		repoRepo:      repoRepo,
		chunker:       chunker,
		store:         store,
		stats:         stats,
		maxUploadSize: maxUploadSize,
		logger:        slog.Default().With("component", "document"),
	}
}

// Upload validates and ingests a PDF into a repository. All validation runs
// before any side effect; an extraction or embedding failure leaves no
// partial document behind.
func (s *DocumentService) Upload(ctx context.Context, ownerID, repoID uuid.UUID, filename string, data []byte, title, description, category string) (*model.Document, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, apperr.Validation("only PDF files are supported")
	}
	if int64(len(data)) > s.maxUploadSize {
		return nil, apperr.Validation("file exceeds the %d MB upload limit", s.maxUploadSize/(1<<20))
	}
	if !pdfext.IsPDF(data) {
		return nil, apperr.Validation("file is not a valid PDF")
	}

	repo, err := s.repoRepo.FindByID(ctx, repoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("repository %s not found", repoID)
	}
	if err != nil {
		return nil, err
	}
	if repo.OwnerID != ownerID {
		return nil, apperr.Forbidden("only the owner can upload to a repository")
	}

	extracted, err := pdfext.Extract(data)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "could not read the PDF", err)
	}

	if title == "" {
		title = strings.TrimSuffix(filename, ".pdf")
	}

	doc := &model.Document{
		RepositoryID: repoID,
		OwnerID:      ownerID,
		Title:        title,
		Description:  description,
		Category:     category,
		FileSize:     int64(len(data)),
		PageCount:    extracted.PageCount,
		WordCount:    extracted.WordCount,
	}
	doc.ID = uuid.New()
	doc.FilePath = fmt.Sprintf("documents/%s/%s.pdf", repoID, doc.ID)

	chunks, err := s.chunker.BuildChunks(ctx, doc.ID, extracted.Pages)
	if err != nil {
		return nil, apperr.External("embedding the document failed, please retry", err)
	}

	if err := s.store.Put(doc.FilePath, data); err != nil {
		return nil, apperr.External("storing the document failed", err)
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		s.cleanupFile(doc.FilePath)
		return nil, err
	}
	if err := s.docRepo.CreateChunks(ctx, chunks); err != nil {
		s.cleanupFile(doc.FilePath)
		if derr := s.docRepo.Delete(ctx, doc.ID); derr != nil {
			s.logger.Error("orphaned document after chunk failure", "document_id", doc.ID, "error", derr)
		}
		return nil, err
	}

	if _, err := s.stats.Apply(ctx, ownerID, model.StatsDelta{DocumentsUploaded: 1, XPGained: 20}, false); err != nil {
		s.logger.Warn("stats update failed after upload", "document_id", doc.ID, "error", err)
	}

	s.logger.Info("document uploaded",
		"document_id", doc.ID, "repository_id", repoID,
		"pages", doc.PageCount, "chunks", len(chunks))
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, docID uuid.UUID) (*model.Document, error) {
	doc, err := s.docRepo.FindByID(ctx, docID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("document %s not found", docID)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) ListByRepository(ctx context.Context, repoID uuid.UUID) ([]model.Document, error) {
	return s.docRepo.FindByRepositoryID(ctx, repoID)
}

// SignedURL issues an expiring download link for the stored PDF and counts
// the read.
func (s *DocumentService) SignedURL(ctx context.Context, userID, docID uuid.UUID) (string, error) {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return "", err
	}

	if _, err := s.stats.Apply(ctx, userID, model.StatsDelta{DocumentsRead: 1}, false); err != nil {
		s.logger.Warn("stats update failed after document read", "document_id", docID, "error", err)
	}
	return s.store.SignedPath(doc.FilePath), nil
}

// Open fetches the stored bytes for a verified signed path.
func (s *DocumentService) Open(key string, expires int64, sig string) ([]byte, error) {
	if !s.store.Verify(key, expires, sig) {
		return nil, apperr.Unauthorized("download link is invalid or expired")
	}
	data, err := s.store.Get(key)
	if err != nil {
		return nil, apperr.NotFound("file not found")
	}
	return data, nil
}

func (s *DocumentService) Patch(ctx context.Context, userID, docID uuid.UUID, patch repository.DocumentPatch) (*model.Document, error) {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != userID {
		return nil, apperr.Forbidden("only the owner can modify a document")
	}
	if err := s.docRepo.Patch(ctx, docID, patch); err != nil {
		return nil, err
	}
	return s.Get(ctx, docID)
}

// Delete removes the document, its chunks, and its stored binary.
func (s *DocumentService) Delete(ctx context.Context, userID, docID uuid.UUID) error {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return err
	}
	if doc.OwnerID != userID {
		return apperr.Forbidden("only the owner can delete a document")
	}

	if err := s.docRepo.DeleteChunksByDocumentID(ctx, docID); err != nil {
		return err
	}
	if err := s.docRepo.Delete(ctx, docID); err != nil {
		return err
	}
	s.cleanupFile(doc.FilePath)
	return nil
}

func (s *DocumentService) cleanupFile(path string) {
	if err := s.store.Delete(path); err != nil {
		s.logger.Warn("stored file cleanup failed", "path", path, "error", err)
	}
}
