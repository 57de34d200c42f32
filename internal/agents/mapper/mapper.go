package mapper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	apperrors "github.com/yksanjo/soundraw-podcast-music/internal/errors"
	"github.com/yksanjo/soundraw-podcast-music/internal/llm"
	"github.com/yksanjo/soundraw-podcast-music/internal/logger"
	"github.com/yksanjo/soundraw-podcast-music/internal/metrics"
	"github.com/yksanjo/soundraw-podcast-music/internal/models"
	"github.com/yksanjo/soundraw-podcast-music/internal/observability"
	"github.com/yksanjo/soundraw-podcast-music/internal/prompt"
	"github.com/yksanjo/soundraw-podcast-music/internal/vocabulary"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 400
)

// keys the model must return; reasoning is optional
var requiredKeys = []string{"moods", "genres", "themes", "tempo", "energy_profile"}

// Options configures a Mapper
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	Langfuse    *observability.LangfuseClient
	Metrics     *metrics.Recorder
}

// Mapper turns a free-text clip description into validated GenerationParameters
type Mapper struct {
	provider     llm.Provider
	builder      *prompt.Builder
	systemPrompt string
	opts         Options
}

// New creates a mapper. The system prompt is rendered once here.
func New(provider llm.Provider, opts Options) (*Mapper, error) {
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultMaxTokens
	}

	builder := prompt.NewPromptBuilder()
	systemPrompt, err := builder.BuildSystemPrompt()
	if err != nil {
		return nil, fmt.Errorf("failed to build mapping prompt: %w", err)
	}

	logger.Info("🎛️ Parameter mapper initialized", logger.Fields{
		"provider": provider.Name(),
		"model":    opts.Model,
	})

	return &Mapper{
		provider:     provider,
		builder:      builder,
		systemPrompt: systemPrompt,
		opts:         opts,
	}, nil
}

// Map consults the text-generation backend once and returns parameters that
// satisfy the closed vocabularies. Backend failures are not retried.
func (m *Mapper) Map(ctx context.Context, description string, kind models.ClipKind, moodHint string) (*models.GenerationParameters, error) {
	startTime := time.Now()

	transaction := sentry.StartTransaction(ctx, "mapper.map")
	defer transaction.Finish()
	transaction.SetTag("provider", m.provider.Name())
	transaction.SetTag("clip_kind", string(kind))

	userMessage, err := m.builder.BuildUserPrompt(prompt.MappingInput{
		Description: description,
		Kind:        string(kind),
		Mood:        moodHint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build user prompt: %w", err)
	}

	request := &llm.CompletionRequest{
		Model:        m.opts.Model,
		SystemPrompt: m.systemPrompt,
		UserMessage:  userMessage,
		Temperature:  m.opts.Temperature,
		MaxTokens:    m.opts.MaxTokens,
		JSONOutput:   true,
	}

	trace := m.opts.Langfuse.StartTrace(ctx, "podcast.parameter_mapping", map[string]interface{}{
		"clip_kind": string(kind),
		"provider":  m.provider.Name(),
	})
	defer trace.Finish()
	generation := trace.Generation("map_parameters", nil)
	defer generation.Finish()

	resp, err := m.provider.Complete(ctx, request)
	if err != nil {
		transaction.SetTag("success", "false")
		generation.Fail(err)
		return nil, apperrors.NewMappingBackendError(m.provider.Name(), err)
	}

	generation.LogCompletion(request, resp)
	m.opts.Metrics.TokenUsage(ctx, resp.Model, resp.Usage.TotalTokens, resp.Usage.InputTokens, resp.Usage.OutputTokens)

	params, err := ParseResponse(resp.Content)
	if err != nil {
		transaction.SetTag("success", "false")
		generation.Fail(err)
		logger.Warn("Failed to parse mapping response", logger.Fields{
			"provider": m.provider.Name(),
			"content":  truncateForLog(resp.Content, 500),
		})
		return nil, err
	}

	transaction.SetTag("success", "true")
	logger.Info("✅ Podcast description mapped", logger.Fields{
		"moods":       vocabulary.Strings(params.Moods),
		"genres":      vocabulary.Strings(params.Genres),
		"themes":      vocabulary.Strings(params.Themes),
		"tempo":       string(params.Tempo),
		"energy":      string(params.EnergyProfile),
		"cost":        observability.FormatCost(observability.CalculateCost(resp.Model, resp.Usage)),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})
	return params, nil
}

// ParseResponse strips Markdown fences, decodes the model's JSON object and
// sanitizes it against the vocabularies.
func ParseResponse(content string) (*models.GenerationParameters, error) {
	cleaned := stripCodeFences(content)
	if cleaned == "" {
		return nil, apperrors.NewMappingParseError("empty response from text-generation backend", content, nil)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, apperrors.NewMappingParseError("response is not a JSON object", content, err)
	}

	for _, key := range requiredKeys {
		raw, ok := fields[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, apperrors.NewMappingParseError(fmt.Sprintf("response is missing required key %q", key), content, nil)
		}
	}

	var moods, genres, themes []string
	var tempo, energy string
	decode := []struct {
		key    string
		target any
	}{
		{"moods", &moods},
		{"genres", &genres},
		{"themes", &themes},
		{"tempo", &tempo},
		{"energy_profile", &energy},
	}
	for _, d := range decode {
		if err := json.Unmarshal(fields[d.key], d.target); err != nil {
			return nil, apperrors.NewMappingParseError(fmt.Sprintf("key %q has the wrong type", d.key), content, err)
		}
	}

	params := &models.GenerationParameters{
		Moods:  vocabulary.SanitizeMoods(moods),
		Genres: vocabulary.SanitizeGenres(genres),
		Themes: vocabulary.SanitizeThemes(themes),
	}

	if t, ok := vocabulary.ParseTempo(tempo); ok {
		params.Tempo = t
	} else {
		logger.Warn("Dropping unknown tempo from mapping response", logger.Fields{"tempo": tempo})
	}
	if e, ok := vocabulary.ParseEnergyProfile(energy); ok {
		params.EnergyProfile = e
	} else {
		logger.Warn("Dropping unknown energy profile from mapping response", logger.Fields{"energy_profile": energy})
	}

	if raw, ok := fields["reasoning"]; ok {
		// non-string reasoning is ignored
		_ = json.Unmarshal(raw, &params.Reasoning)
	}

	return params, nil
}

// stripCodeFences removes a surrounding ```json or ``` block
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```JSON")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	return strings.TrimSpace(content)
}

func truncateForLog(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
