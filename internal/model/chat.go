package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatType string

const (
	ChatTypeQA       ChatType = "qa"
	ChatTypeCourse   ChatType = "course"
	ChatTypeExercise ChatType = "exercise"
)

// ChatHistory is one conversation scoped to a repository. For course and
// exercise chats, Mode distinguishes generation (false) from follow-up Q&A
// (true); the flip happens after the first successful generation.
type ChatHistory struct {
	BaseModel
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	RepositoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"repository_id"`
	Type         ChatType  `gorm:"size:20;not null" json:"type"`
	Mode         bool      `gorm:"default:false" json:"mode"`
	Title        string    `gorm:"size:255;default:'New Conversation'" json:"title"`

	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	LastMessagePreview string     `gorm:"size:500" json:"last_message_preview,omitempty"`

	Messages []Message `gorm:"foreignKey:ChatID" json:"messages,omitempty"`
}

func (ChatHistory) TableName() string {
	return "chat_histories"
}

// Message is append-only per chat and soft-deletable. Score holds the
// structured grading result for exercise messages, set at most once.
type Message struct {
	BaseModel
	ChatID      uuid.UUID `gorm:"type:uuid;not null;index" json:"chat_id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	IsAssistant bool      `gorm:"default:false" json:"is_assistant"`
	Score       JSONMap   `gorm:"type:jsonb" json:"score,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
