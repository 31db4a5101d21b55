package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heretounderstand/ndole/internal/model"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, chat *model.ChatHistory) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *ChatRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ChatHistory, error) {
	var chat model.ChatHistory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *ChatRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]model.ChatHistory, int64, error) {
	var chats []model.ChatHistory
	var total int64

	query := r.db.WithContext(ctx).Model(&model.ChatHistory{}).Where("owner_id = ?", ownerID)
	query.Count(&total)
	err := query.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&chats).Error
	return chats, total, err
}

func (r *ChatRepository) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	return r.db.WithContext(ctx).Model(&model.ChatHistory{}).
		Where("id = ?", id).
		Update("title", title).Error
}

func (r *ChatRepository) UpdateMode(ctx context.Context, id uuid.UUID, mode bool) error {
	return r.db.WithContext(ctx).Model(&model.ChatHistory{}).
		Where("id = ?", id).
		Update("mode", mode).Error
}

func (r *ChatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ChatHistory{}).Error
}

// Messages

const previewRunes = 500

// messagePreview cuts content to the preview column width. The varchar(500)
// column holds 500 characters, not bytes, so the cut lands on a rune
// boundary; a byte cut could split a multi-byte character and postgres
// rejects invalid UTF-8.
func messagePreview(content string) string {
	runes := []rune(content)
	if len(runes) > previewRunes {
		return string(runes[:previewRunes])
	}
	return content
}

func (r *ChatRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return err
	}
	// Keep the chat's last-message snapshot in step with the append.
	preview := messagePreview(msg.Content)
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.ChatHistory{}).
		Where("id = ?", msg.ChatID).
		Updates(map[string]interface{}{
			"last_message_at":      &now,
			"last_message_preview": preview,
		}).Error
}

func (r *ChatRepository) FindMessageByID(ctx context.Context, id uuid.UUID) (*model.Message, error) {
	var msg model.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindMessages returns the chat's non-deleted messages in chat order, the
// replay source for session rehydration.
func (r *ChatRepository) FindMessages(ctx context.Context, chatID uuid.UUID) ([]model.Message, error) {
	var msgs []model.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *ChatRepository) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Message{}).Error
}

// SetMessageScore attaches a grading result to a message if none is present
// yet. Returns false when the message already carries a score.
func (r *ChatRepository) SetMessageScore(ctx context.Context, id uuid.UUID, score model.JSONMap) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ? AND score IS NULL", id).
		Update("score", score)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
