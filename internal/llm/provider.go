package llm

import (
	"context"
)

// Provider defines the interface for chat-style text-generation backends
type Provider interface {
	// Complete sends a system instruction plus one user message and returns a single text completion
	Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g., "deepseek", "openai", "gemini")
	Name() string
}

// CompletionRequest contains all parameters needed for a completion
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserMessage  string
	Temperature  float64
	MaxTokens    int64
	// JSONOutput asks providers that support it to constrain output to JSON
	JSONOutput bool
}

// CompletionResponse contains the result from the LLM
type CompletionResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Usage is the token accounting reported by the backend
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}
