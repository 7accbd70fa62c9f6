package llm

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/booking-go/internal/config"
)

// GeminiBaseURL is Gemini's OpenAI-compatible endpoint.
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Client is minimal subset of openai.Client used by the agent; it is easy to mock in tests.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient creates a new OpenAI client. The "gemini" provider talks to
// Gemini through its OpenAI-compatible API unless a base URL is configured.
func NewClient(cfg config.LLMConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	switch {
	case cfg.BaseURL != "":
		clientCfg.BaseURL = cfg.BaseURL
	case strings.EqualFold(cfg.Provider, "gemini"):
		clientCfg.BaseURL = GeminiBaseURL
	}

	return openai.NewClientWithConfig(clientCfg)
}
