package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"

	"github.com/yksanjo/soundraw-podcast-music/internal/logger"
)

const (
	providerNameGemini = "gemini"
	mimeTypeJSON       = "application/json"
	geminiUserRole     = "user"
)

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client       *genai.Client
	defaultModel string
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey, defaultModel string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:       client,
		defaultModel: defaultModel,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Complete implements a single non-streaming generation
func (p *GeminiProvider) Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error) {
	startTime := time.Now()
	model := request.Model
	if model == "" {
		model = p.defaultModel
	}

	transaction := sentry.StartTransaction(ctx, "gemini.complete")
	defer transaction.Finish()

	transaction.SetTag("model", model)
	transaction.SetTag("provider", providerNameGemini)

	contents := buildGeminiContents(request.UserMessage)
	config := buildGeminiConfig(request)

	span := transaction.StartChild("gemini.api_call")
	result, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	apiDuration := time.Since(startTime)
	span.Finish()

	if err != nil {
		transaction.SetTag("success", "false")
		logger.Error("❌ Gemini request failed", err, logger.Fields{
			"model":       model,
			"duration_ms": apiDuration.Milliseconds(),
		})
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	response, err := processGeminiResponse(result, model)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	logger.LogCompletionRequest(ctx, model, apiDuration,
		response.Usage.InputTokens, response.Usage.OutputTokens, logger.Fields{
			"provider": providerNameGemini,
			"preview":  truncate(response.Content, maxPreviewChars),
		})

	transaction.SetTag("success", "true")
	return response, nil
}

func buildGeminiContents(userMessage string) []*genai.Content {
	return []*genai.Content{
		{
			Role:  geminiUserRole,
			Parts: []*genai.Part{{Text: userMessage}},
		},
	}
}

func buildGeminiConfig(request *CompletionRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemPrompt}},
		},
	}
	if request.Temperature > 0 {
		temperature := float32(request.Temperature)
		config.Temperature = &temperature
	}
	if request.MaxTokens > 0 {
		config.MaxOutputTokens = int32(request.MaxTokens)
	}
	if request.JSONOutput {
		config.ResponseMIMEType = mimeTypeJSON
	}
	return config
}

// processGeminiResponse extracts the first candidate's text and token usage
func processGeminiResponse(result *genai.GenerateContentResponse, model string) (*CompletionResponse, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in Gemini response")
	}

	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no parts in Gemini response")
	}

	var text string
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text += part.Text
		}
	}

	response := &CompletionResponse{
		Content: text,
		Model:   model,
	}
	if result.UsageMetadata != nil {
		response.Usage = Usage{
			InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int64(result.UsageMetadata.TotalTokenCount),
		}
	}
	return response, nil
}
