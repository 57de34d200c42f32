package observability

import (
	"context"
	"os"
	"time"

	langfuse "github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"

	"github.com/yksanjo/soundraw-podcast-music/internal/config"
	"github.com/yksanjo/soundraw-podcast-music/internal/llm"
	"github.com/yksanjo/soundraw-podcast-music/internal/logger"
)

// LangfuseClient wraps the Langfuse client with our configuration
type LangfuseClient struct {
	client  *langfuse.Langfuse
	enabled bool
	ctx     context.Context
}

// InitializeLangfuse builds the Langfuse client. The SDK reads its keys and host from the environment.
func InitializeLangfuse(ctx context.Context, cfg *config.Config) *LangfuseClient {
	if !cfg.LangfuseEnabled || cfg.LangfuseSecretKey == "" {
		logger.Info("⚠️  Langfuse not configured (LANGFUSE_ENABLED=false or LANGFUSE_SECRET_KEY not set)", nil)
		return Disabled()
	}

	lf := langfuse.New(ctx)

	logger.Info("✅ Langfuse initialized", logger.Fields{
		"host":           cfg.LangfuseHost,
		"public_key_set": os.Getenv("LANGFUSE_PUBLIC_KEY") != "",
	})
	return &LangfuseClient{
		client:  lf,
		enabled: true,
		ctx:     ctx,
	}
}

// Disabled returns a client that records nothing
func Disabled() *LangfuseClient {
	return &LangfuseClient{enabled: false, ctx: context.Background()}
}

// IsEnabled returns whether Langfuse is enabled
func (c *LangfuseClient) IsEnabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// StartTrace starts a new trace in Langfuse
func (c *LangfuseClient) StartTrace(ctx context.Context, name string, metadata map[string]interface{}) *Trace {
	if !c.IsEnabled() {
		return &Trace{enabled: false, ctx: ctx}
	}

	trace, err := c.client.Trace(&model.Trace{
		Name:     name,
		Metadata: metadata,
	})
	if err != nil {
		logger.Warn("⚠️  Failed to create Langfuse trace", logger.Fields{"error": err.Error()})
		return &Trace{enabled: false, ctx: ctx}
	}

	return &Trace{
		trace:   trace,
		enabled: true,
		ctx:     ctx,
		client:  c.client,
	}
}

// Trace represents a Langfuse trace
type Trace struct {
	trace   *model.Trace
	enabled bool
	ctx     context.Context
	client  *langfuse.Langfuse
}

// Generation creates a new generation span within the trace
func (t *Trace) Generation(name string, metadata map[string]interface{}) *Generation {
	if !t.enabled {
		return &Generation{enabled: false, ctx: t.ctx}
	}

	now := time.Now()
	gen, err := t.client.Generation(&model.Generation{
		TraceID:   t.trace.ID,
		Name:      name,
		StartTime: &now,
		Metadata:  metadata,
	}, nil)
	if err != nil {
		logger.Warn("⚠️  Failed to create Langfuse generation", logger.Fields{"error": err.Error()})
		return &Generation{enabled: false, ctx: t.ctx}
	}

	return &Generation{
		generation: gen,
		enabled:    true,
		ctx:        t.ctx,
		client:     t.client,
	}
}

// Finish completes the trace and flushes batched events
func (t *Trace) Finish() {
	if t.enabled && t.client != nil {
		t.client.Flush(t.ctx)
	}
}

// Generation represents a Langfuse generation span
type Generation struct {
	generation *model.Generation
	enabled    bool
	ctx        context.Context
	client     *langfuse.Langfuse
}

// Metadata adds metadata to the generation
func (g *Generation) Metadata(metadata map[string]interface{}) {
	if !g.enabled || g.generation == nil {
		return
	}
	if g.generation.Metadata == nil {
		g.generation.Metadata = make(map[string]interface{})
	}
	if md, ok := g.generation.Metadata.(map[string]interface{}); ok {
		for k, v := range metadata {
			md[k] = v
		}
	} else {
		g.generation.Metadata = metadata
	}
}

// Fail flags the generation as an error so failed mappings stand out in Langfuse
func (g *Generation) Fail(err error) {
	if !g.enabled || g.generation == nil || err == nil {
		return
	}
	g.generation.Level = model.ObservationLevel("ERROR")
	g.Metadata(map[string]interface{}{"error": err.Error()})
}

// LogCompletion records prompts, output, usage and cost of one completion
func (g *Generation) LogCompletion(request *llm.CompletionRequest, resp *llm.CompletionResponse) {
	if !g.enabled || g.generation == nil {
		return
	}

	cost := CalculateCost(resp.Model, resp.Usage)

	g.generation.Model = resp.Model
	g.generation.Input = []map[string]interface{}{
		{"role": "system", "content": request.SystemPrompt},
		{"role": "user", "content": request.UserMessage},
	}
	g.generation.Output = resp.Content
	g.generation.Usage = model.Usage{
		Input:     int(resp.Usage.InputTokens),
		Output:    int(resp.Usage.OutputTokens),
		Total:     int(resp.Usage.TotalTokens),
		Unit:      model.ModelUsageUnitTokens,
		TotalCost: cost,
	}
	g.Metadata(map[string]interface{}{
		"cost_usd":    cost,
		"temperature": request.Temperature,
		"max_tokens":  request.MaxTokens,
	})
}

// Finish completes the generation and sends it to Langfuse
func (g *Generation) Finish() {
	if g.enabled && g.generation != nil && g.client != nil {
		now := time.Now()
		g.generation.EndTime = &now
		if _, err := g.client.GenerationEnd(g.generation); err != nil {
			logger.Warn("⚠️  Failed to end Langfuse generation", logger.Fields{"error": err.Error()})
		}
	}
}
