package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/heretounderstand/ndole/internal/middleware"
	"github.com/heretounderstand/ndole/internal/model"
	"github.com/heretounderstand/ndole/internal/service"
)

type ChatHandler struct {
	svc   *service.ChatService
	quiz  *service.QuizService
	stats *service.StatsService
}

func NewChatHandler(svc *service.ChatService, quiz *service.QuizService, stats *service.StatsService) *ChatHandler {
	return &ChatHandler{svc: svc, quiz: quiz, stats: stats}
}

type createChatRequest struct {
	RepositoryID string `json:"repository_id" binding:"required"`
	Type         string `json:"type" binding:"required"`
	Title        string `json:"title"`
}

func (h *ChatHandler) Create(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	repoID, err := uuid.Parse(req.RepositoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repository_id"})
		return
	}

	chat, err := h.svc.Create(c.Request.Context(), userID, repoID, model.ChatType(req.Type), req.Title)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, chat)
}

func (h *ChatHandler) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	chats, total, err := h.svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": chats,
		"pagination": gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

type renameChatRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h *ChatHandler) Rename(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	var req renameChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Rename(c.Request.Context(), userID, chatID, req.Title); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": req.Title})
}

func (h *ChatHandler) Delete(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, chatID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ResetMode returns a course/exercise chat to generation mode.
func (h *ChatHandler) ResetMode(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	if err := h.svc.ResetMode(c.Request.Context(), userID, chatID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": false})
}

func (h *ChatHandler) Messages(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	msgs, err := h.svc.Messages(c.Request.Context(), userID, chatID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": msgs})
}

func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}
	messageID, err := uuid.Parse(c.Param("messageID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err := h.svc.DeleteMessage(c.Request.Context(), userID, chatID, messageID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
	Page    *int   `json:"page"`
	Count   *int   `json:"count"`
}

// SendMessage runs one conversation turn. A failed turn answers 200 with
// success=false: the user message is persisted and the failure is part of
// the conversation's state, not a transport error.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.SendMessage(c.Request.Context(), userID, chatID, req.Content, req.Page, req.Count)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type gradeRequest struct {
	MessageID string   `json:"message_id" binding:"required"`
	Answers   []string `json:"answers" binding:"required"`
}

// Grade grades a quiz submission against an exercise message. The score
// attaches to the message at most once; re-grading returns the stored
// outcome without a second XP award.
func (h *ChatHandler) Grade(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	var req gradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	messageID, err := uuid.Parse(req.MessageID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message_id"})
		return
	}

	// Ownership check via the chat; Grade scopes the message to it.
	if _, err := h.svc.Messages(c.Request.Context(), userID, chatID); err != nil {
		fail(c, err)
		return
	}

	result, delta, err := h.quiz.Grade(c.Request.Context(), chatID, messageID, req.Answers)
	if err != nil {
		fail(c, err)
		return
	}

	if !result.AlreadyGraded {
		if _, err := h.stats.Apply(c.Request.Context(), userID, delta, false); err != nil {
			fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, result)
}
