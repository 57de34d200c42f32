package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yksanjo/soundraw-podcast-music/internal/config"
	"github.com/yksanjo/soundraw-podcast-music/internal/llm"
)

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		usage    llm.Usage
		expected float64
	}{
		{
			name:     "deepseek chat",
			model:    "deepseek-chat",
			usage:    llm.Usage{InputTokens: 1000, OutputTokens: 1000},
			expected: 0.00027 + 0.0011,
		},
		{
			name:     "gpt-4o-mini",
			model:    "gpt-4o-mini",
			usage:    llm.Usage{InputTokens: 2000, OutputTokens: 500},
			expected: 2*0.00015 + 0.5*0.0006,
		},
		{
			name:     "unknown model uses default pricing",
			model:    "mystery-model",
			usage:    llm.Usage{InputTokens: 1000},
			expected: 0.00027,
		},
		{
			name:     "zero usage",
			model:    "gemini-2.5-flash",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CalculateCost(tt.model, tt.usage), 1e-12)
		})
	}
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.001370", FormatCost(0.00137))
}

func TestDisabledClientIsNoop(t *testing.T) {
	client := InitializeLangfuse(context.Background(), &config.Config{LangfuseEnabled: false})
	assert.False(t, client.IsEnabled())

	trace := client.StartTrace(context.Background(), "podcast.mapping", nil)
	gen := trace.Generation("map_parameters", map[string]interface{}{"kind": "intro"})

	assert.NotPanics(t, func() {
		gen.Metadata(map[string]interface{}{"x": 1})
		gen.LogCompletion(&llm.CompletionRequest{}, &llm.CompletionResponse{Model: "deepseek-chat"})
		gen.Fail(errors.New("unparseable mapping"))
		gen.Finish()
		trace.Finish()
	})
}

func TestNilClientIsDisabled(t *testing.T) {
	var client *LangfuseClient
	assert.False(t, client.IsEnabled())
}
