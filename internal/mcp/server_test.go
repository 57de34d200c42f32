package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yksanjo/soundraw-podcast-music/internal/errors"
	"github.com/yksanjo/soundraw-podcast-music/internal/models"
)

type stubGenerator struct {
	result *models.NormalizedResult
	err    error
	got    *models.ClipRequest
}

func (g *stubGenerator) Generate(_ context.Context, req *models.ClipRequest) (*models.NormalizedResult, error) {
	g.got = req
	return g.result, g.err
}

func callTool(args map[string]any) mcpgo.CallToolRequest {
	var req mcpgo.CallToolRequest
	req.Params.Name = ToolName
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := mcpgo.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestToolHandlerSuccess(t *testing.T) {
	gen := &stubGenerator{result: &models.NormalizedResult{
		ShareLink:  "https://soundraw.io/s/1",
		AudioURL:   "https://cdn.soundraw.io/1.m4a",
		RequestID:  "req-1",
		BPM:        110,
		FileFormat: models.FormatM4A,
	}}
	handler := NewToolHandler(gen)

	result, err := handler(context.Background(), callTool(map[string]any{
		"description":      "upbeat tech interview show",
		"podcast_type":     "intro",
		"duration_seconds": float64(30),
		"mood":             "Hopeful",
		"style":            "synthwave",
		"engine":           "ios",
		"file_format":      "mp3",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := textOf(t, result)
	assert.True(t, strings.Contains(text, "\n  \"share_link\""), "indented JSON")

	var decoded models.NormalizedResult
	require.NoError(t, json.Unmarshal([]byte(text), &decoded))
	assert.Equal(t, "req-1", decoded.RequestID)
	assert.Equal(t, 110, decoded.BPM)

	require.NotNil(t, gen.got)
	assert.Equal(t, "upbeat tech interview show", gen.got.Description)
	assert.Equal(t, models.ClipIntro, gen.got.PodcastType)
	require.NotNil(t, gen.got.DurationSeconds)
	assert.Equal(t, 30, *gen.got.DurationSeconds)
	assert.Equal(t, "Hopeful", gen.got.Mood)
	assert.Equal(t, "synthwave", gen.got.Style)
	assert.Equal(t, models.PlatformIOS, gen.got.Engine)
	assert.Equal(t, models.FormatMP3, gen.got.FileFormat)
}

func TestToolHandlerOptionalArguments(t *testing.T) {
	gen := &stubGenerator{result: &models.NormalizedResult{}}
	handler := NewToolHandler(gen)

	_, err := handler(context.Background(), callTool(map[string]any{"description": "news"}))
	require.NoError(t, err)

	assert.Nil(t, gen.got.DurationSeconds)
	assert.Empty(t, gen.got.PodcastType)
	assert.Empty(t, gen.got.FileFormat)
}

func TestToolHandlerErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		genErr   error
		wantText string
	}{
		{
			name:     "missing description",
			args:     map[string]any{"podcast_type": "intro"},
			wantText: "Error: ",
		},
		{
			name:     "generation failed",
			args:     map[string]any{"description": "news"},
			genErr:   apperrors.NewGenerationFailedError("req-9"),
			wantText: "Error: [GENERATION_FAILED_ERROR] soundraw generation failed: req-9",
		},
		{
			name:     "plain error",
			args:     map[string]any{"description": "news"},
			genErr:   errors.New("boom"),
			wantText: "Error: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewToolHandler(&stubGenerator{err: tt.genErr})

			result, err := handler(context.Background(), callTool(tt.args))
			require.NoError(t, err, "tool failures are reported in the result")
			assert.True(t, result.IsError)
			assert.True(t, strings.HasPrefix(textOf(t, result), tt.wantText), textOf(t, result))
		})
	}
}

func TestToolSchema(t *testing.T) {
	tool := Tool()

	assert.Equal(t, "generate_podcast_music", tool.Name)
	assert.Equal(t, ToolDescription, tool.Description)
	assert.Equal(t, []string{"description"}, tool.InputSchema.Required)

	raw, err := json.Marshal(tool)
	require.NoError(t, err)

	var schema struct {
		InputSchema struct {
			Properties map[string]map[string]any `json:"properties"`
		} `json:"inputSchema"`
	}
	require.NoError(t, json.Unmarshal(raw, &schema))

	props := schema.InputSchema.Properties
	assert.Len(t, props, 7)
	assert.Equal(t, []any{"intro", "outro", "background", "jingle"}, props["podcast_type"]["enum"])
	assert.Equal(t, []any{"web", "ios", "android"}, props["engine"]["enum"])
	assert.Equal(t, []any{"m4a", "mp3", "wav"}, props["file_format"]["enum"])
	assert.EqualValues(t, 10, props["duration_seconds"]["minimum"])
	assert.EqualValues(t, 300, props["duration_seconds"]["maximum"])
}

func TestServerListsTool(t *testing.T) {
	s := NewServer(&stubGenerator{})

	msg := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.Len(t, resp.Result.Tools, 1)
	assert.Equal(t, ToolName, resp.Result.Tools[0].Name)
}
