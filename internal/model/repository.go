package model

import (
	"time"

	"github.com/google/uuid"
)

type EngagementKind string

const (
	EngagementAccess   EngagementKind = "access"
	EngagementLike     EngagementKind = "like"
	EngagementDislike  EngagementKind = "dislike"
	EngagementBookmark EngagementKind = "bookmark"
	EngagementShare    EngagementKind = "share"
)

// Repository is a user-owned collection of documents forming one retrieval
// scope. Its embedding set is the union of its documents' chunks.
type Repository struct {
	BaseModel
	OwnerID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name        string      `gorm:"size:255;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	IsPublic    bool        `gorm:"default:false" json:"is_public"`
	Categories  StringArray `gorm:"type:jsonb" json:"categories"`

	Documents []Document `gorm:"foreignKey:RepositoryID" json:"documents,omitempty"`
}

func (Repository) TableName() string {
	return "document_repositories"
}

// Engagement is a timestamped actor record against a repository.
// Access and share rows accumulate; like/dislike/bookmark are toggles.
type Engagement struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RepositoryID uuid.UUID      `gorm:"type:uuid;not null;index" json:"repository_id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind         EngagementKind `gorm:"size:20;not null;index" json:"kind"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Engagement) TableName() string {
	return "repository_engagements"
}

// RepositoryStats is the engagement summary shown on a repository card.
type RepositoryStats struct {
	DocumentCount   int `json:"document_count"`
	AccessCount     int `json:"access_count"`
	PertinenceCount int `json:"pertinence_count"`
	SharedCount     int `json:"shared_count"`
	SavedCount      int `json:"saved_count"`
}
