package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Host    string `mapstructure:"HOST"`
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// Embedding service (OpenAI compatible)
	EmbeddingAPIKey     string `mapstructure:"EMBEDDING_API_KEY"`
	EmbeddingBaseURL    string `mapstructure:"EMBEDDING_BASE_URL"`
	EmbeddingModel      string `mapstructure:"EMBEDDING_MODEL"`
	EmbeddingDimensions int    `mapstructure:"EMBEDDING_DIMENSIONS"`

	// LLM (OpenAI compatible chat completion)
	LLMAPIKey  string `mapstructure:"LLM_API_KEY"`
	LLMBaseURL string `mapstructure:"LLM_BASE_URL"`
	LLMModel   string `mapstructure:"LLM_MODEL"`

	// File storage
	StoragePath     string `mapstructure:"STORAGE_PATH"`
	StorageSecret   string `mapstructure:"STORAGE_SECRET"`
	MaxUploadSize   int64  `mapstructure:"MAX_UPLOAD_SIZE"`
	SignedURLTTLMin int    `mapstructure:"SIGNED_URL_TTL_MIN"`

	// Auth
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// External calls
	ExternalTimeoutSec int `mapstructure:"EXTERNAL_TIMEOUT_SEC"`
	SessionCacheTTLMin int `mapstructure:"SESSION_CACHE_TTL_MIN"`

	// Logging
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("HOST", "0.0.0.0")
	viper.SetDefault("PORT", "8088")
	viper.SetDefault("GIN_MODE", "release")
	viper.SetDefault("DATABASE_URL", "postgres://localhost:5432/ndole?sslmode=disable")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379")
	viper.SetDefault("EMBEDDING_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("EMBEDDING_MODEL", "text-embedding-3-small")
	viper.SetDefault("EMBEDDING_DIMENSIONS", 1536)
	viper.SetDefault("LLM_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("LLM_MODEL", "gpt-4o-mini")
	viper.SetDefault("STORAGE_PATH", "./storage")
	viper.SetDefault("MAX_UPLOAD_SIZE", 25*1024*1024)
	viper.SetDefault("SIGNED_URL_TTL_MIN", 15)
	viper.SetDefault("EXTERNAL_TIMEOUT_SEC", 60)
	viper.SetDefault("SESSION_CACHE_TTL_MIN", 30)
	viper.SetDefault("LOG_LEVEL", "info")

	// Try to read .env file (optional)
	_ = viper.ReadInConfig()

	// Environment variables take precedence over the .env file
	for _, key := range []string{
		"HOST", "PORT", "GIN_MODE", "DATABASE_URL", "REDIS_URL",
		"EMBEDDING_API_KEY", "EMBEDDING_BASE_URL", "EMBEDDING_MODEL", "EMBEDDING_DIMENSIONS",
		"LLM_API_KEY", "LLM_BASE_URL", "LLM_MODEL",
		"STORAGE_PATH", "STORAGE_SECRET", "MAX_UPLOAD_SIZE", "SIGNED_URL_TTL_MIN",
		"JWT_SECRET", "EXTERNAL_TIMEOUT_SEC", "SESSION_CACHE_TTL_MIN", "LOG_LEVEL",
	} {
		if val := os.Getenv(key); val != "" {
			viper.Set(key, val)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.GinMode) == "debug"
}

func (c *Config) ExternalTimeout() time.Duration {
	return time.Duration(c.ExternalTimeoutSec) * time.Second
}

func (c *Config) SessionCacheTTL() time.Duration {
	return time.Duration(c.SessionCacheTTLMin) * time.Minute
}

func (c *Config) SignedURLTTL() time.Duration {
	return time.Duration(c.SignedURLTTLMin) * time.Minute
}
