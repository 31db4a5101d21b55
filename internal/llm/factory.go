package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewChatModel builds the chat-completion model behind the conversation
// engine. Any OpenAI-compatible endpoint works (OpenAI, Gemini's
// compatibility surface, Dashscope, self-hosted gateways).
func NewChatModel(ctx context.Context, cfg *ProviderConfig) (model.BaseChatModel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider config is nil")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	})
}
