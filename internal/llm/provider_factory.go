package llm

import (
	"context"
	"fmt"
	"strings"
)

// ProviderConfig holds credentials and defaults for every supported backend
type ProviderConfig struct {
	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	DeepSeekModel   string
	OpenAIAPIKey    string
	OpenAIModel     string
	GeminiAPIKey    string
	GeminiModel     string
}

// ProviderFactory creates providers based on explicit provider choice or model name
type ProviderFactory struct {
	cfg ProviderConfig
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg ProviderConfig) *ProviderFactory {
	return &ProviderFactory{cfg: cfg}
}

// GetProvider returns the appropriate provider for the given model/provider name
func (f *ProviderFactory) GetProvider(ctx context.Context, model, providerName string) (Provider, error) {
	if providerName != "" {
		return f.getProviderByName(ctx, providerName)
	}
	return f.getProviderByModel(ctx, model)
}

// getProviderByName creates a provider by explicit name
func (f *ProviderFactory) getProviderByName(ctx context.Context, providerName string) (Provider, error) {
	switch strings.ToLower(providerName) {
	case providerNameDeepSeek:
		if f.cfg.DeepSeekAPIKey == "" {
			return nil, fmt.Errorf("deepseek API key not configured")
		}
		return NewDeepSeekProvider(f.cfg.DeepSeekAPIKey, f.cfg.DeepSeekBaseURL, f.cfg.DeepSeekModel), nil

	case providerNameOpenAI:
		if f.cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai API key not configured")
		}
		return NewOpenAIProvider(providerNameOpenAI, f.cfg.OpenAIAPIKey, "", f.cfg.OpenAIModel), nil

	case providerNameGemini:
		if f.cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini API key not configured")
		}
		return NewGeminiProvider(ctx, f.cfg.GeminiAPIKey, f.cfg.GeminiModel)

	default:
		return nil, fmt.Errorf("unknown provider: %s (allowed: deepseek, openai, gemini)", providerName)
	}
}

// getProviderByModel infers provider from model name
func (f *ProviderFactory) getProviderByModel(ctx context.Context, model string) (Provider, error) {
	modelLower := strings.ToLower(model)

	switch {
	case strings.HasPrefix(modelLower, "gpt-"), strings.HasPrefix(modelLower, "o1"),
		strings.HasPrefix(modelLower, "o3"), strings.HasPrefix(modelLower, "o4"):
		return f.getProviderByName(ctx, providerNameOpenAI)
	case strings.HasPrefix(modelLower, "gemini-"):
		return f.getProviderByName(ctx, providerNameGemini)
	default:
		// DeepSeek is the default backend
		return f.getProviderByName(ctx, providerNameDeepSeek)
	}
}
