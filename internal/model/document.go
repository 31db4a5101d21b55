package model

import (
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type Document struct {
	BaseModel
	RepositoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"repository_id"`
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title        string    `gorm:"size:500;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Category     string    `gorm:"size:100" json:"category,omitempty"`
	FilePath     string    `gorm:"size:1000" json:"file_path"`
	FileSize     int64     `gorm:"not null" json:"file_size"`
	PageCount    int       `gorm:"default:0" json:"page_count"`
	WordCount    int       `gorm:"default:0" json:"word_count"`
	Metadata     JSONMap   `gorm:"type:jsonb" json:"metadata,omitempty"`

	Chunks []Chunk `gorm:"foreignKey:DocumentID" json:"-"`
}

func (Document) TableName() string {
	return "documents"
}

// Chunk is a page-anchored, positioned slice of extracted document text plus
// its embedding vector. Position is unique within (document, page).
type Chunk struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DocumentID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_chunk_doc_page_pos" json:"document_id"`
	Page       int             `gorm:"not null;uniqueIndex:idx_chunk_doc_page_pos" json:"page"`
	Position   int             `gorm:"not null;uniqueIndex:idx_chunk_doc_page_pos" json:"position"`
	Text       string          `gorm:"type:text;not null" json:"text"`
	Embedding  pgvector.Vector `gorm:"type:vector(1536)" json:"-"`
}

func (Chunk) TableName() string {
	return "chunks"
}
