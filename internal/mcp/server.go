package mcp

import (
	"context"
	"encoding/json"
	"io"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/yksanjo/soundraw-podcast-music/internal/logger"
	"github.com/yksanjo/soundraw-podcast-music/internal/models"
	"github.com/yksanjo/soundraw-podcast-music/internal/vocabulary"
)

const (
	ServerName    = "soundraw-podcast-music"
	ServerVersion = "1.0.0"
	ToolName      = "generate_podcast_music"

	ToolDescription = "Generate podcast music (intro, outro, background, jingle). Uses DeepSeek for parameter mapping and Soundraw for audio generation."
)

// Generator runs one clip generation
type Generator interface {
	Generate(ctx context.Context, req *models.ClipRequest) (*models.NormalizedResult, error)
}

// Tool is the generate_podcast_music definition. Only description is required.
func Tool() mcpgo.Tool {
	return mcpgo.NewTool(ToolName,
		mcpgo.WithDescription(ToolDescription),
		mcpgo.WithString("description",
			mcpgo.Required(),
			mcpgo.Description("Podcast description or topic"),
		),
		mcpgo.WithString("podcast_type",
			mcpgo.Enum(vocabulary.Strings(models.ClipKinds)...),
			mcpgo.Description("Type of podcast music"),
		),
		mcpgo.WithNumber("duration_seconds",
			mcpgo.Min(models.MinDurationSeconds),
			mcpgo.Max(models.MaxDurationSeconds),
			mcpgo.Description("Duration in seconds (10-300)"),
		),
		mcpgo.WithString("mood", mcpgo.Description("Desired mood")),
		mcpgo.WithString("style", mcpgo.Description("Musical style preference")),
		mcpgo.WithString("engine",
			mcpgo.Enum(vocabulary.Strings(models.Platforms)...),
			mcpgo.Description("Platform for integration code"),
		),
		mcpgo.WithString("file_format",
			mcpgo.Enum(vocabulary.Strings(models.AudioFormats)...),
			mcpgo.Description("Audio file format"),
		),
	)
}

// NewServer registers the tool on a new MCP server
func NewServer(gen Generator) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.AddTool(Tool(), NewToolHandler(gen))
	return s
}

// NewToolHandler adapts a Generator to an MCP tool handler. Failures are
// reported inside the result as "Error: <message>" with IsError set.
func NewToolHandler(gen Generator) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		startTime := time.Now()

		req, err := clipRequestFrom(request)
		if err != nil {
			return toolError(err), nil
		}

		result, err := gen.Generate(ctx, req)
		if err != nil {
			logger.Error("Tool execution failed", err, logger.Fields{
				"tool":        ToolName,
				"duration_ms": time.Since(startTime).Milliseconds(),
			})
			return toolError(err), nil
		}

		body, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return toolError(err), nil
		}
		return mcpgo.NewToolResultText(string(body)), nil
	}
}

func clipRequestFrom(request mcpgo.CallToolRequest) (*models.ClipRequest, error) {
	description, err := request.RequireString("description")
	if err != nil {
		return nil, err
	}

	req := &models.ClipRequest{
		Description: description,
		PodcastType: models.ClipKind(request.GetString("podcast_type", "")),
		Mood:        request.GetString("mood", ""),
		Style:       request.GetString("style", ""),
		Engine:      models.Platform(request.GetString("engine", "")),
		FileFormat:  models.AudioFormat(request.GetString("file_format", "")),
	}
	if _, ok := request.GetArguments()["duration_seconds"]; ok {
		d := request.GetInt("duration_seconds", 0)
		req.DurationSeconds = &d
	}
	return req, nil
}

func toolError(err error) *mcpgo.CallToolResult {
	return mcpgo.NewToolResultError("Error: " + err.Error())
}

// ServeStdio serves s over in/out until ctx is cancelled or in is closed
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(zap.NewStdLog(logger.Zap()))

	logger.Info("🎙️ MCP server listening on stdio", logger.Fields{
		"server":  ServerName,
		"version": ServerVersion,
	})
	return stdio.Listen(ctx, in, out)
}
