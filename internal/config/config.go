package config

import (
	"os"
	"strings"

	apperrors "github.com/yksanjo/soundraw-podcast-music/internal/errors"
)

// Transport modes
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Auth modes for the HTTP transport
const (
	AuthModeNone    = "none"
	AuthModeGateway = "gateway"
	AuthModeJWT     = "jwt"
)

// Config holds the application configuration.
// It is built once at startup and read-only afterwards.
type Config struct {
	// Environment
	Environment string
	Port        string
	Transport   string // "stdio" (tool host) or "http"

	// Text-generation backend
	LLMProvider     string // "deepseek", "openai" or "gemini"
	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	DeepSeekModel   string
	OpenAIAPIKey    string
	OpenAIModel     string
	GeminiAPIKey    string
	GeminiModel     string

	// Music-generation backend
	SoundrawAPIKey  string
	SoundrawBaseURL string

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	// - "jwt": HS256 bearer tokens signed with JWTSecret
	AuthMode  string
	JWTSecret string
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		Transport:         strings.ToLower(getEnv("TRANSPORT", TransportStdio)),
		LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", "deepseek")),
		DeepSeekAPIKey:    getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekBaseURL:   getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
		DeepSeekModel:     getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		SoundrawAPIKey:    getEnv("SOUNDRAW_API_KEY", ""),
		SoundrawBaseURL:   getEnv("SOUNDRAW_BASE_URL", "https://soundraw.io/api/v3"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnv("LANGFUSE_ENABLED", "false") == "true",
		AuthMode:          strings.ToLower(getEnv("AUTH_MODE", AuthModeNone)), // Default to no auth for self-hosted
		JWTSecret:         getEnv("JWT_SECRET", ""),
	}
}

// Validate fails fast on missing credentials and unknown modes
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return apperrors.NewConfigurationError("TRANSPORT", "TRANSPORT must be stdio or http")
	}

	switch c.LLMProvider {
	case "deepseek":
		if c.DeepSeekAPIKey == "" {
			return apperrors.NewConfigurationError("DEEPSEEK_API_KEY", "DEEPSEEK_API_KEY environment variable is required")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return apperrors.NewConfigurationError("OPENAI_API_KEY", "OPENAI_API_KEY environment variable is required")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return apperrors.NewConfigurationError("GEMINI_API_KEY", "GEMINI_API_KEY environment variable is required")
		}
	default:
		return apperrors.NewConfigurationError("LLM_PROVIDER", "LLM_PROVIDER must be deepseek, openai or gemini")
	}

	if c.SoundrawAPIKey == "" {
		return apperrors.NewConfigurationError("SOUNDRAW_API_KEY", "SOUNDRAW_API_KEY environment variable is required")
	}

	switch c.AuthMode {
	case AuthModeNone, AuthModeGateway:
	case AuthModeJWT:
		if c.JWTSecret == "" {
			return apperrors.NewConfigurationError("JWT_SECRET", "JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return apperrors.NewConfigurationError("AUTH_MODE", "AUTH_MODE must be none, gateway or jwt")
	}

	return nil
}

// Model returns the configured model name of the selected text-generation provider
func (c *Config) Model() string {
	switch c.LLMProvider {
	case "openai":
		return c.OpenAIModel
	case "gemini":
		return c.GeminiModel
	default:
		return c.DeepSeekModel
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// IsGatewayMode returns true if running behind an authenticating gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == AuthModeGateway
}

// IsJWTMode returns true if the HTTP transport verifies bearer tokens itself
func (c *Config) IsJWTMode() bool {
	return c.AuthMode == AuthModeJWT
}
