package mapper

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yksanjo/soundraw-podcast-music/internal/errors"
	"github.com/yksanjo/soundraw-podcast-music/internal/llm"
	"github.com/yksanjo/soundraw-podcast-music/internal/models"
	"github.com/yksanjo/soundraw-podcast-music/internal/vocabulary"
)

// mockProvider is a func-field test double for llm.Provider
type mockProvider struct {
	completeFunc func(ctx context.Context, request *llm.CompletionRequest) (*llm.CompletionResponse, error)
	requests     []*llm.CompletionRequest
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Complete(ctx context.Context, request *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.requests = append(m.requests, request)
	return m.completeFunc(ctx, request)
}

func respondWith(content string) *mockProvider {
	return &mockProvider{
		completeFunc: func(_ context.Context, _ *llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: content, Model: "deepseek-chat"}, nil
		},
	}
}

func newMapper(t *testing.T, p llm.Provider) *Mapper {
	t.Helper()
	m, err := New(p, Options{Model: "deepseek-chat"})
	require.NoError(t, err)
	return m
}

func TestMapSendsBoundedRequest(t *testing.T) {
	provider := respondWith(`{"moods":["Epic"],"genres":["Rock"],"themes":["Technology"],"tempo":"high","energy_profile":"building","reasoning":"punchy"}`)
	m := newMapper(t, provider)

	params, err := m.Map(context.Background(), "upbeat tech interview show", models.ClipIntro, "Hopeful")
	require.NoError(t, err)

	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.Equal(t, "deepseek-chat", req.Model)
	assert.InDelta(t, 0.7, req.Temperature, 1e-9)
	assert.Equal(t, int64(400), req.MaxTokens)
	assert.Contains(t, req.SystemPrompt, "Lofi Hip Hop")
	assert.Contains(t, req.UserMessage, "Description: upbeat tech interview show")
	assert.Contains(t, req.UserMessage, "Type: intro")
	assert.Contains(t, req.UserMessage, "Desired mood: Hopeful")

	assert.Equal(t, []vocabulary.Mood{vocabulary.MoodEpic}, params.Moods)
	assert.Equal(t, []vocabulary.Genre{vocabulary.GenreRock}, params.Genres)
	assert.Equal(t, []vocabulary.Theme{vocabulary.ThemeTechnology}, params.Themes)
	assert.Equal(t, vocabulary.TempoHigh, params.Tempo)
	assert.Equal(t, vocabulary.EnergyBuilding, params.EnergyProfile)
	assert.Equal(t, "punchy", params.Reasoning)
}

func TestMapWrapsBackendErrors(t *testing.T) {
	cause := errors.New("401 unauthorized")
	provider := &mockProvider{
		completeFunc: func(_ context.Context, _ *llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, cause
		},
	}
	m := newMapper(t, provider)

	params, err := m.Map(context.Background(), "news recap", "", "")

	assert.Nil(t, params)
	backendErr, ok := apperrors.As[*apperrors.MappingBackendError](err)
	require.True(t, ok)
	assert.Equal(t, "mock", backendErr.Provider)
	assert.ErrorIs(t, err, cause)
	assert.Len(t, provider.requests, 1, "backend errors are not retried")
}

func TestMapSurfacesParseErrors(t *testing.T) {
	m := newMapper(t, respondWith("I think Epic would be great!"))

	params, err := m.Map(context.Background(), "news recap", models.ClipJingle, "")

	assert.Nil(t, params)
	parseErr, ok := apperrors.As[*apperrors.MappingParseError](err)
	require.True(t, ok)
	assert.Equal(t, "I think Epic would be great!", parseErr.Content)
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, p *models.GenerationParameters)
		wantErr string
	}{
		{
			name:    "plain JSON",
			content: `{"moods":["Happy"],"genres":["Pop"],"themes":["Vlogs"],"tempo":"normal","energy_profile":"steady","reasoning":"r"}`,
			check: func(t *testing.T, p *models.GenerationParameters) {
				assert.Equal(t, []vocabulary.Mood{vocabulary.MoodHappy}, p.Moods)
				assert.Equal(t, vocabulary.TempoNormal, p.Tempo)
			},
		},
		{
			name:    "json fence",
			content: "```json\n{\"moods\":[\"Dreamy\"],\"genres\":[\"Ambient\"],\"themes\":[\"Nature\"],\"tempo\":\"low\",\"energy_profile\":\"ambient\"}\n```",
			check: func(t *testing.T, p *models.GenerationParameters) {
				assert.Equal(t, []vocabulary.Mood{vocabulary.MoodDreamy}, p.Moods)
				assert.Equal(t, vocabulary.EnergyAmbient, p.EnergyProfile)
				assert.Empty(t, p.Reasoning)
			},
		},
		{
			name:    "bare fence",
			content: "```\n{\"moods\":[\"Smooth\"],\"genres\":[\"Jazz\"],\"themes\":[\"Drama\"],\"tempo\":\"low\",\"energy_profile\":\"steady\"}\n```",
			check: func(t *testing.T, p *models.GenerationParameters) {
				assert.Equal(t, []vocabulary.Genre{vocabulary.GenreJazz}, p.Genres)
			},
		},
		{
			name:    "invalid vocabulary entries are filtered with fallbacks",
			content: `{"moods":["Angry","Epic"],"genres":["Techno"],"themes":["Podcast"],"tempo":"high","energy_profile":"climax"}`,
			check: func(t *testing.T, p *models.GenerationParameters) {
				assert.Equal(t, []vocabulary.Mood{vocabulary.MoodEpic}, p.Moods)
				assert.Equal(t, []vocabulary.Genre{vocabulary.GenreLofiHipHop}, p.Genres)
				assert.Equal(t, []vocabulary.Theme{vocabulary.ThemeCorporate}, p.Themes)
			},
		},
		{
			name:    "unknown tempo and energy are left unset",
			content: `{"moods":["Epic"],"genres":["Rock"],"themes":["Drama"],"tempo":"fast","energy_profile":"explosive"}`,
			check: func(t *testing.T, p *models.GenerationParameters) {
				assert.Empty(t, p.Tempo)
				assert.Empty(t, p.EnergyProfile)
			},
		},
		{
			name:    "empty response",
			content: "   ",
			wantErr: "empty response",
		},
		{
			name:    "empty fenced response",
			content: "```json\n```",
			wantErr: "empty response",
		},
		{
			name:    "not JSON",
			content: "moods: Epic",
			wantErr: "not a JSON object",
		},
		{
			name:    "JSON array",
			content: `["Epic"]`,
			wantErr: "not a JSON object",
		},
		{
			name:    "missing key",
			content: `{"moods":["Epic"],"genres":["Rock"],"themes":["Drama"],"tempo":"high"}`,
			wantErr: `"energy_profile"`,
		},
		{
			name:    "null key",
			content: `{"moods":null,"genres":["Rock"],"themes":["Drama"],"tempo":"high","energy_profile":"steady"}`,
			wantErr: `"moods"`,
		},
		{
			name:    "wrong type",
			content: `{"moods":"Epic","genres":["Rock"],"themes":["Drama"],"tempo":"high","energy_profile":"steady"}`,
			wantErr: "wrong type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ParseResponse(tt.content)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Nil(t, params)
				assert.Equal(t, apperrors.ErrCodeMappingParse, apperrors.CodeOf(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, params)
		})
	}
}

func TestParseResponseAlwaysSatisfiesVocabulary(t *testing.T) {
	inputs := []string{
		`{"moods":[],"genres":[],"themes":[],"tempo":"","energy_profile":""}`,
		`{"moods":["epic","HAPPY"],"genres":["lofi"],"themes":["corporate"],"tempo":"low","energy_profile":"steady"}`,
		`{"moods":["Mysterious","Mysterious"],"genres":["Cinematic","Orchestra"],"themes":["Documentary"],"tempo":"normal","energy_profile":"building"}`,
	}

	for _, in := range inputs {
		p, err := ParseResponse(in)
		require.NoError(t, err)
		require.NotEmpty(t, p.Moods)
		require.NotEmpty(t, p.Genres)
		require.NotEmpty(t, p.Themes)
		for _, m := range p.Moods {
			_, ok := vocabulary.ParseMood(string(m))
			assert.True(t, ok)
		}
		for _, g := range p.Genres {
			_, ok := vocabulary.ParseGenre(string(g))
			assert.True(t, ok)
		}
		for _, th := range p.Themes {
			_, ok := vocabulary.ParseTheme(string(th))
			assert.True(t, ok)
		}
	}
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("  {\"a\":1}  "))
	assert.True(t, strings.HasPrefix(stripCodeFences("```\n{}\n```"), "{"))
}
