package ai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are Pine Genie, an assistant for building TradingView trading strategies.
You help users design strategy logic, explain indicators, and write Pine Script v5.
Keep answers practical and include code blocks when the user asks for script changes.`

// Client wraps the OpenAI API for the strategy assistant.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

type Config struct {
	APIKey      string
	Model       string  // default: gpt-4o-mini
	Temperature float32 // default: 0.7
	MaxTokens   int     // default: 2000
}

func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}

	return &Client{
		api:         openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// ChatMessage is a single turn of the assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"` // user | assistant
	Content string `json:"content"`
}

// Completion is the assistant reply plus the total tokens the provider
// billed for the exchange (prompt + completion).
type Completion struct {
	Content    string
	TokensUsed int64
}

// Chat sends the conversation history and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, history []ChatMessage) (*Completion, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	return &Completion{
		Content:    resp.Choices[0].Message.Content,
		TokensUsed: int64(resp.Usage.TotalTokens),
	}, nil
}
