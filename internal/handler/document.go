package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/heretounderstand/ndole/internal/middleware"
	"github.com/heretounderstand/ndole/internal/repository"
	"github.com/heretounderstand/ndole/internal/service"
)

type DocumentHandler struct {
	svc *service.DocumentService
}

func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Upload ingests a PDF via multipart form: file plus optional title,
// description, and category fields.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	repoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repository id"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}

	doc, err := h.svc.Upload(
		c.Request.Context(),
		userID, repoID,
		fileHeader.Filename, data,
		c.PostForm("title"), c.PostForm("description"), c.PostForm("category"),
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	doc, err := h.svc.Get(c.Request.Context(), docID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) ListByRepository(c *gin.Context) {
	repoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repository id"})
		return
	}

	docs, err := h.svc.ListByRepository(c.Request.Context(), repoID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": docs})
}

// Download hands out a fresh signed URL for the document's stored PDF.
func (h *DocumentHandler) Download(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	url, err := h.svc.SignedURL(c.Request.Context(), userID, docID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

type patchDocumentRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (h *DocumentHandler) Patch(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	var req patchDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.svc.Patch(c.Request.Context(), userID, docID, repository.DocumentPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, docID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ServeFile streams a stored binary for a verified signed path. This route
// is unauthenticated: the signature is the credential.
func (h *DocumentHandler) ServeFile(c *gin.Context) {
	key := c.Param("key")
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}
	expires, err := strconv.ParseInt(c.Query("expires"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expires parameter"})
		return
	}

	data, err := h.svc.Open(key, expires, c.Query("sig"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", data)
}
