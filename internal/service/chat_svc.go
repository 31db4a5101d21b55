package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heretounderstand/ndole/internal/llm"
	"github.com/heretounderstand/ndole/internal/model"
	"github.com/heretounderstand/ndole/internal/pkg/apperr"
	"github.com/heretounderstand/ndole/internal/pkg/redisx"
	"github.com/heretounderstand/ndole/internal/repository"
)

const (
	defaultExerciseCount = 3
	maxExerciseCount     = 20
	sessionKeyPrefix     = "chat_session:"
)

// TurnResult is the outcome of one conversation turn. On failure the user
// message is already persisted; only the assistant reply is missing.
type TurnResult struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message,omitempty"`
	Content     string          `json:"content,omitempty"`
	NewMessages []model.Message `json:"new_messages"`
}

// ChatService runs retrieval-augmented conversations over a repository's
// documents. A chat is typed qa, course, or exercise; course and exercise
// chats generate once and then switch into discussion mode.
type ChatService struct {
	chatRepo   *repository.ChatRepository
	repoRepo   *repository.RepoRepository
	retrieval  *RetrievalService
	chatModel  einomodel.BaseChatModel
	cache      *redisx.Client
	stats      *StatsService
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewChatService(
	chatRepo *repository.ChatRepository,
	repoRepo *repository.RepoRepository,
	retrieval *RetrievalService,
	chatModel einomodel.BaseChatModel,
	cache *redisx.Client,
	stats *StatsService,
	sessionTTL time.Duration,
) *ChatService {
	return &ChatService{
		chatRepo:   chatRepo,
		repoRepo:   repoRepo,
		retrieval:  retrieval,
		chatModel:  chatModel,
		cache:      cache,
		stats:      stats,
		sessionTTL: sessionTTL,
		logger:     slog.Default().With("component", "chat"),
	}
}

func (s *ChatService) Create(ctx context.Context, ownerID, repoID uuid.UUID, chatType model.ChatType, title string) (*model.ChatHistory, error) {
	switch chatType {
	case model.ChatTypeQA, model.ChatTypeCourse, model.ChatTypeExercise:
	default:
		return nil, apperr.Validation("unknown chat type %q", chatType)
	}

	if _, err := s.repoRepo.FindByID(ctx, repoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("repository %s not found", repoID)
		}
		return nil, err
	}

	chat := &model.ChatHistory{
		OwnerID:      ownerID,
		RepositoryID: repoID,
		Type:         chatType,
		Title:        title,
	}
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}

	if _, err := s.stats.Apply(ctx, ownerID, model.StatsDelta{ChatsCreated: 1, XPGained: 5}, false); err != nil {
		s.logger.Warn("stats update failed after chat create", "chat_id", chat.ID, "error", err)
	}
	return chat, nil
}

func (s *ChatService) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]model.ChatHistory, int64, error) {
	return s.chatRepo.FindByOwner(ctx, ownerID, normalizeLimit(limit), offset)
}

func (s *ChatService) Rename(ctx context.Context, userID, chatID uuid.UUID, title string) error {
	if _, err := s.owned(ctx, userID, chatID); err != nil {
		return err
	}
	return s.chatRepo.UpdateTitle(ctx, chatID, title)
}

func (s *ChatService) Delete(ctx context.Context, userID, chatID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, chatID); err != nil {
		return err
	}
	s.dropSession(ctx, chatID)
	return s.chatRepo.Delete(ctx, chatID)
}

// ResetMode returns a course or exercise chat to generation mode so the
// next turn produces fresh content.
func (s *ChatService) ResetMode(ctx context.Context, userID, chatID uuid.UUID) error {
	chat, err := s.owned(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if chat.Type == model.ChatTypeQA {
		return apperr.Validation("qa chats have no generation mode")
	}
	return s.chatRepo.UpdateMode(ctx, chatID, false)
}

func (s *ChatService) Messages(ctx context.Context, userID, chatID uuid.UUID) ([]model.Message, error) {
	if _, err := s.owned(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return s.chatRepo.FindMessages(ctx, chatID)
}

// DeleteMessage soft-deletes one message of the user's chat. The cached
// session is dropped so the next turn replays the surviving messages.
func (s *ChatService) DeleteMessage(ctx context.Context, userID, chatID, messageID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, chatID); err != nil {
		return err
	}
	msg, err := s.chatRepo.FindMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("message %s not found", messageID)
		}
		return err
	}
	if msg.ChatID != chatID {
		return apperr.NotFound("message %s not found", messageID)
	}
	if err := s.chatRepo.DeleteMessage(ctx, messageID); err != nil {
		return err
	}
	s.dropSession(ctx, chatID)
	return nil
}

// SendMessage runs one conversation turn, dispatched by the chat's type and
// mode. Course and exercise chats generate on their first turn and then
// behave like qa follow-ups; page restricts course retrieval to one page
// and count bounds the number of generated exercises.
func (s *ChatService) SendMessage(ctx context.Context, userID, chatID uuid.UUID, content string, page, count *int) (*TurnResult, error) {
	if content == "" {
		return nil, apperr.Validation("message content is required")
	}

	chat, err := s.owned(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	switch {
	case chat.Type == model.ChatTypeQA || chat.Mode:
		return s.qaTurn(ctx, chat, content)
	case chat.Type == model.ChatTypeCourse:
		return s.courseTurn(ctx, chat, content, page)
	case chat.Type == model.ChatTypeExercise:
		return s.exerciseTurn(ctx, chat, content, count)
	}
	return nil, apperr.Validation("unknown chat type %q", chat.Type)
}

func (s *ChatService) qaTurn(ctx context.Context, chat *model.ChatHistory, question string) (*TurnResult, error) {
	turn, err := s.runTurn(ctx, chat, question, func(contextBlock string) (string, error) {
		return llm.FormatQAPrompt(ctx, contextBlock, question)
	}, nil, llm.DefaultChunkCount)
	if err != nil || !turn.Success {
		return turn, err
	}

	delta := model.StatsDelta{MessagesSent: 1, QuestionsAsked: 1, XPGained: 2}
	s.applyStats(ctx, chat.OwnerID, delta)
	return turn, nil
}

func (s *ChatService) courseTurn(ctx context.Context, chat *model.ChatHistory, topic string, page *int) (*TurnResult, error) {
	userContent := fmt.Sprintf("Generate a course on: %s", topic)
	turn, err := s.runTurnWithContent(ctx, chat, userContent, topic, func(contextBlock string) (string, error) {
		return llm.FormatCoursePrompt(ctx, contextBlock, topic)
	}, page, llm.DefaultChunkCount)
	if err != nil || !turn.Success {
		return turn, err
	}

	if err := s.chatRepo.UpdateMode(ctx, chat.ID, true); err != nil {
		s.logger.Warn("mode flip failed after course generation", "chat_id", chat.ID, "error", err)
	}

	delta := model.StatsDelta{MessagesSent: 1, CoursesCreated: 1, XPGained: 15}
	s.applyStats(ctx, chat.OwnerID, delta)
	return turn, nil
}

func (s *ChatService) exerciseTurn(ctx context.Context, chat *model.ChatHistory, request string, count *int) (*TurnResult, error) {
	n := defaultExerciseCount
	if count != nil {
		n = *count
	}
	if n < 1 || n > maxExerciseCount {
		return nil, apperr.Validation("exercise count must be between 1 and %d", maxExerciseCount)
	}

	userContent := fmt.Sprintf("Generate %d exercises on: %s", n, request)
	turn, err := s.runTurnWithContent(ctx, chat, userContent, request, func(contextBlock string) (string, error) {
		return llm.FormatExercisePrompt(ctx, contextBlock, request, n)
	}, nil, n*2)
	if err != nil || !turn.Success {
		return turn, err
	}

	if err := s.chatRepo.UpdateMode(ctx, chat.ID, true); err != nil {
		s.logger.Warn("mode flip failed after exercise generation", "chat_id", chat.ID, "error", err)
	}

	delta := model.StatsDelta{MessagesSent: 1, QuizzesCreated: 1, QuestionsAsked: n, XPGained: 10}
	s.applyStats(ctx, chat.OwnerID, delta)
	return turn, nil
}

func (s *ChatService) runTurn(ctx context.Context, chat *model.ChatHistory, content string, format func(string) (string, error), page *int, maxChunks int) (*TurnResult, error) {
	return s.runTurnWithContent(ctx, chat, content, content, format, page, maxChunks)
}

// runTurnWithContent is the shared turn pipeline: persist the user message,
// retrieve context for the query, load or rehydrate the session, call the
// model, persist the reply. The user message survives a model failure so
// the history shows what was asked.
func (s *ChatService) runTurnWithContent(ctx context.Context, chat *model.ChatHistory, userContent, query string, format func(string) (string, error), page *int, maxChunks int) (*TurnResult, error) {
	prior, err := s.chatRepo.FindMessages(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	userMsg := model.Message{ChatID: chat.ID, Content: userContent, IsAssistant: false}
	if err := s.chatRepo.CreateMessage(ctx, &userMsg); err != nil {
		return nil, err
	}
	result := &TurnResult{NewMessages: []model.Message{userMsg}}

	matches, err := s.retrieval.BestMatches(ctx, chat.RepositoryID, query, page, DefaultTopK)
	if err != nil {
		result.Message = "finding relevant passages failed, please retry"
		s.logger.Error("retrieval failed", "chat_id", chat.ID, "error", err)
		return result, nil
	}

	chunks := make([]model.Chunk, len(matches))
	for i, m := range matches {
		chunks[i] = m.Chunk
	}
	contextBlock := llm.ContextFromChunks(chunks, maxChunks)

	promptText, err := format(contextBlock)
	if err != nil {
		result.Message = "preparing the prompt failed"
		s.logger.Error("prompt formatting failed", "chat_id", chat.ID, "error", err)
		return result, nil
	}

	session := s.loadSession(ctx, chat.ID, prior)
	reply, err := session.Send(ctx, promptText)
	if err != nil {
		result.Message = "the assistant is unavailable right now, please retry"
		s.logger.Error("chat completion failed", "chat_id", chat.ID, "error", err)
		return result, nil
	}

	assistantMsg := model.Message{ChatID: chat.ID, Content: reply, IsAssistant: true}
	if err := s.chatRepo.CreateMessage(ctx, &assistantMsg); err != nil {
		return nil, err
	}

	s.storeSession(ctx, chat.ID, session)

	result.Success = true
	result.Content = reply
	result.NewMessages = append(result.NewMessages, assistantMsg)
	return result, nil
}

// loadSession prefers the cached session and falls back to replaying the
// persisted messages.
func (s *ChatService) loadSession(ctx context.Context, chatID uuid.UUID, prior []model.Message) *llm.ChatSession {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, sessionKeyPrefix+chatID.String())
		if err == nil {
			session, uerr := llm.Unmarshal(s.chatModel, []byte(data))
			if uerr == nil {
				return session
			}
			s.logger.Warn("cached session unreadable, replaying history", "chat_id", chatID, "error", uerr)
		} else if !redisx.IsNil(err) {
			s.logger.Warn("session cache read failed", "chat_id", chatID, "error", err)
		}
	}
	return llm.Rehydrate(s.chatModel, prior)
}

func (s *ChatService) storeSession(ctx context.Context, chatID uuid.UUID, session *llm.ChatSession) {
	if s.cache == nil {
		return
	}
	data, err := session.Marshal()
	if err != nil {
		s.logger.Warn("session serialization failed", "chat_id", chatID, "error", err)
		return
	}
	if err := s.cache.Set(ctx, sessionKeyPrefix+chatID.String(), data, s.sessionTTL); err != nil {
		s.logger.Warn("session cache write failed", "chat_id", chatID, "error", err)
	}
}

func (s *ChatService) dropSession(ctx context.Context, chatID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, sessionKeyPrefix+chatID.String()); err != nil {
		s.logger.Warn("session cache delete failed", "chat_id", chatID, "error", err)
	}
}

func (s *ChatService) applyStats(ctx context.Context, userID uuid.UUID, delta model.StatsDelta) {
	if _, err := s.stats.Apply(ctx, userID, delta, false); err != nil {
		s.logger.Warn("stats update failed after turn", "user_id", userID, "error", err)
	}
}

func (s *ChatService) owned(ctx context.Context, userID, chatID uuid.UUID) (*model.ChatHistory, error) {
	chat, err := s.chatRepo.FindByID(ctx, chatID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("chat %s not found", chatID)
	}
	if err != nil {
		return nil, err
	}
	if chat.OwnerID != userID {
		return nil, apperr.Forbidden("chat belongs to another user")
	}
	return chat, nil
}
