package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/yksanjo/soundraw-podcast-music/internal/logger"
)

const (
	// Provider names
	providerNameOpenAI   = "openai"
	providerNameDeepSeek = "deepseek"

	// Logging limits
	maxPreviewChars = 200
)

// OpenAIProvider implements the Provider interface over the Chat Completions API.
// It also serves OpenAI-compatible backends such as DeepSeek through a base URL override.
type OpenAIProvider struct {
	client       *openai.Client
	name         string
	defaultModel string
}

// NewOpenAIProvider creates a new provider. An empty baseURL targets OpenAI.
func NewOpenAIProvider(name, apiKey, baseURL, defaultModel string) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// failed calls surface to the caller unchanged
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		client:       &client,
		name:         name,
		defaultModel: defaultModel,
	}
}

// NewDeepSeekProvider creates a provider for the DeepSeek OpenAI-compatible endpoint
func NewDeepSeekProvider(apiKey, baseURL, model string) *OpenAIProvider {
	return NewOpenAIProvider(providerNameDeepSeek, apiKey, baseURL, model)
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Complete implements a single non-streaming chat completion
func (p *OpenAIProvider) Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error) {
	startTime := time.Now()
	params := p.buildRequestParams(request)

	logger.Info("🎵 Completion request started", logger.Fields{
		"provider": p.name,
		"model":    params.Model,
	})

	transaction := sentry.StartTransaction(ctx, p.name+".complete")
	defer transaction.Finish()

	transaction.SetTag("model", params.Model)
	transaction.SetTag("provider", p.name)

	span := transaction.StartChild(p.name + ".api_call")
	resp, err := p.client.Chat.Completions.New(ctx, params)
	apiDuration := time.Since(startTime)
	span.Finish()

	if err != nil {
		transaction.SetTag("success", "false")
		logger.Error("❌ Completion request failed", err, logger.Fields{
			"provider":    p.name,
			"model":       params.Model,
			"duration_ms": apiDuration.Milliseconds(),
		})
		return nil, fmt.Errorf("%s request failed: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("%s response contained no choices", p.name)
	}

	content := resp.Choices[0].Message.Content
	response := &CompletionResponse{
		Content: content,
		Model:   resp.Model,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}
	if response.Model == "" {
		response.Model = params.Model
	}

	logger.LogCompletionRequest(ctx, response.Model, apiDuration,
		response.Usage.InputTokens, response.Usage.OutputTokens, logger.Fields{
			"provider": p.name,
			"preview":  truncate(content, maxPreviewChars),
		})

	transaction.SetTag("success", "true")
	return response, nil
}

// buildRequestParams maps a CompletionRequest onto Chat Completions parameters
func (p *OpenAIProvider) buildRequestParams(request *CompletionRequest) openai.ChatCompletionNewParams {
	model := request.Model
	if model == "" {
		model = p.defaultModel
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(request.SystemPrompt),
			openai.UserMessage(request.UserMessage),
		},
	}
	if request.Temperature > 0 {
		params.Temperature = openai.Float(request.Temperature)
	}
	if request.MaxTokens > 0 {
		params.MaxTokens = openai.Int(request.MaxTokens)
	}
	return params
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
