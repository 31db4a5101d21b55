package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/heretounderstand/ndole/internal/config"
	"github.com/heretounderstand/ndole/internal/llm"
	"github.com/heretounderstand/ndole/internal/middleware"
	"github.com/heretounderstand/ndole/internal/pkg/redisx"
	"github.com/heretounderstand/ndole/internal/pkg/storage"
	"github.com/heretounderstand/ndole/internal/pkg/token"
	"github.com/heretounderstand/ndole/internal/repository"
	"github.com/heretounderstand/ndole/internal/service"
)

func SetupRouter(ctx context.Context, cfg *config.Config, db *gorm.DB, cache *redisx.Client) (*gin.Engine, error) {
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// Health check endpoints
	r.GET("/health", healthCheck)
	r.GET("/ready", readinessCheck)
	r.GET("/live", livenessCheck)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	repoRepo := repository.NewRepoRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// Initialize shared infrastructure
	store := storage.New(cfg.StoragePath, cfg.StorageSecret, cfg.SignedURLTTL())
	embedder := service.NewEmbeddingService(
		cfg.EmbeddingAPIKey,
		cfg.EmbeddingBaseURL,
		cfg.EmbeddingModel,
		cfg.EmbeddingDimensions,
		cfg.ExternalTimeout(),
	)
	chatModel, err := llm.NewChatModel(ctx, &llm.ProviderConfig{
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		BaseURL: cfg.LLMBaseURL,
	})
	if err != nil {
		return nil, err
	}

	// Initialize services
	statsSvc := service.NewStatsService(db, userRepo, statsRepo)
	chunkSvc := service.NewChunkService(embedder)
	retrievalSvc := service.NewRetrievalService(embedder, docRepo, nil)
	repoSvc := service.NewRepositoryService(repoRepo, docRepo, statsSvc)
	docSvc := service.NewDocumentService(docRepo, repoRepo, chunkSvc, store, statsSvc, cfg.MaxUploadSize)
	chatSvc := service.NewChatService(chatRepo, repoRepo, retrievalSvc, chatModel, cache, statsSvc, cfg.SessionCacheTTL())
	quizSvc := service.NewQuizService(chatRepo)

	// Initialize handlers
	repoHandler := NewRepositoryHandler(repoSvc)
	docHandler := NewDocumentHandler(docSvc)
	chatHandler := NewChatHandler(chatSvc, quizSvc, statsSvc)
	statsHandler := NewStatsHandler(statsSvc)

	auth := middleware.NewAuthMiddleware(token.NewManager(cfg.JWTSecret, 0))

	// Signed downloads carry their credential in the URL.
	r.GET("/v1/files/*key", docHandler.ServeFile)

	v1 := r.Group("/v1")
	v1.Use(auth.JWTAuth())
	{
		repos := v1.Group("/repositories")
		{
			repos.GET("", repoHandler.ListMine)
			repos.POST("", repoHandler.Create)
			repos.GET("/public", repoHandler.ListPublic)
			repos.GET("/:id", repoHandler.Get)
			repos.PATCH("/:id", repoHandler.Patch)
			repos.DELETE("/:id", repoHandler.Delete)
			repos.POST("/:id/engage", repoHandler.Engage)
			repos.GET("/:id/stats", repoHandler.Stats)
			repos.GET("/:id/documents", docHandler.ListByRepository)
			repos.POST("/:id/documents", docHandler.Upload)
		}

		docs := v1.Group("/documents")
		{
			docs.GET("/:id", docHandler.Get)
			docs.PATCH("/:id", docHandler.Patch)
			docs.DELETE("/:id", docHandler.Delete)
			docs.GET("/:id/download", docHandler.Download)
		}

		chats := v1.Group("/chats")
		{
			chats.GET("", chatHandler.List)
			chats.POST("", chatHandler.Create)
			chats.PATCH("/:id", chatHandler.Rename)
			chats.DELETE("/:id", chatHandler.Delete)
			chats.POST("/:id/reset", chatHandler.ResetMode)
			chats.GET("/:id/messages", chatHandler.Messages)
			chats.POST("/:id/messages", chatHandler.SendMessage)
			chats.DELETE("/:id/messages/:messageID", chatHandler.DeleteMessage)
			chats.POST("/:id/grade", chatHandler.Grade)
		}

		me := v1.Group("/users/me")
		{
			me.GET("/stats", statsHandler.Get)
			me.POST("/stats", statsHandler.Apply)
			me.GET("/badges", statsHandler.Badges)
			me.GET("/challenges", statsHandler.Challenges)
		}
	}

	return r, nil
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ndole",
	})
}

func readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
