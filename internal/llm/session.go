package llm

import (
	"context"
	"encoding/json"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/heretounderstand/ndole/internal/model"
)

// ChatSession carries a multi-turn conversation against the chat model. The
// system instruction is pinned at index 0; every Send appends the user prompt
// and the model reply to the history. A session is owned by one conversation
// turn at a time and must not be shared across concurrent requests.
type ChatSession struct {
	chatModel einomodel.BaseChatModel
	history   []*schema.Message
}

// NewSession starts a session with the persistent system instruction and an
// optional prior history of role-tagged turns.
func NewSession(chatModel einomodel.BaseChatModel, prior []*schema.Message) *ChatSession {
	history := make([]*schema.Message, 0, len(prior)+1)
	history = append(history, schema.SystemMessage(Instructions))
	history = append(history, prior...)
	return &ChatSession{chatModel: chatModel, history: history}
}

// Rehydrate rebuilds a session from persisted chat messages: every
// non-deleted message becomes a role-tagged turn in chat order. Soft-deleted
// messages are expected to be filtered out by the caller's query.
func Rehydrate(chatModel einomodel.BaseChatModel, messages []model.Message) *ChatSession {
	prior := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.IsAssistant {
			prior = append(prior, &schema.Message{Role: schema.Assistant, Content: msg.Content})
		} else {
			prior = append(prior, &schema.Message{Role: schema.User, Content: msg.Content})
		}
	}
	return NewSession(chatModel, prior)
}

// Send submits a prompt as the next user turn and returns the completion
// text. On failure the prompt is not kept in the history, so a retried turn
// does not double-count.
func (s *ChatSession) Send(ctx context.Context, promptText string) (string, error) {
	input := append(s.history, schema.UserMessage(promptText))
	out, err := s.chatModel.Generate(ctx, input)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	s.history = append(input, &schema.Message{Role: schema.Assistant, Content: out.Content})
	return out.Content, nil
}

// sessionTurn is the serialized form of one history entry for the cache.
type sessionTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Marshal serializes the session history (without the system instruction,
// which NewSession re-pins) for the redis session cache.
func (s *ChatSession) Marshal() ([]byte, error) {
	turns := make([]sessionTurn, 0, len(s.history))
	for _, msg := range s.history {
		if msg.Role == schema.System {
			continue
		}
		turns = append(turns, sessionTurn{Role: string(msg.Role), Content: msg.Content})
	}
	return json.Marshal(turns)
}

// Unmarshal rebuilds a cached session.
func Unmarshal(chatModel einomodel.BaseChatModel, data []byte) (*ChatSession, error) {
	var turns []sessionTurn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	prior := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		prior = append(prior, &schema.Message{Role: schema.RoleType(t.Role), Content: t.Content})
	}
	return NewSession(chatModel, prior), nil
}
