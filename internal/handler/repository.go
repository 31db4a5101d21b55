package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/heretounderstand/ndole/internal/middleware"
	"github.com/heretounderstand/ndole/internal/model"
	"github.com/heretounderstand/ndole/internal/repository"
	"github.com/heretounderstand/ndole/internal/service"
)

type RepositoryHandler struct {
	svc *service.RepositoryService
}

func NewRepositoryHandler(svc *service.RepositoryService) *RepositoryHandler {
	return &RepositoryHandler{svc: svc}
}

type createRepositoryRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"is_public"`
	Categories  []string `json:"categories"`
}

func (h *RepositoryHandler) Create(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req createRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	repo, err := h.svc.Create(c.Request.Context(), userID, req.Name, req.Description, req.IsPublic, req.Categories)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, repo)
}

func (h *RepositoryHandler) Get(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	repoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repository id"})
		return
	}

	repo, err := h.svc.Get(c.Request.Context(), userID, repoID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, repo)
}

func (h *RepositoryHandler) ListMine(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	repos, total, err := h.svc.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": repos,
		"pagination": gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

func (h *RepositoryHandler) ListPublic(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	repos, total, err := h.svc.ListPublic(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": repos,
		"pagination": gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

type patchRepositoryRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	IsPublic    *bool     `json:"is_public"`
	Categories  *[]string `json:"categories"`
}

func (h *RepositoryHandler) Patch(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	repoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repository id"})
		return
	}

	var req patchRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := repository.RepositoryPatch{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	if req.Categories != nil {
		cats := model.StringArray(*req.Categories)
		patch.Categories = &cats
	}

	repo, err := h.svc.Patch(c.Request.Context(), userID, repoID, patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, repo)
}

func (h *RepositoryHandler) Delete(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	repoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repository id"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, repoID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type engageRequest struct {
	Kind string `json:"kind" binding:"required"`
}

func (h *RepositoryHandler) Engage(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	repoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repository id"})
		return
	}

	var req engageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active, err := h.svc.Engage(c.Request.Context(), userID, repoID, model.EngagementKind(req.Kind))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": req.Kind, "active": active})
}

func (h *RepositoryHandler) Stats(c *gin.Context) {
	repoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repository id"})
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), repoID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
