package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yksanjo/soundraw-podcast-music/internal/mcp"
	"github.com/yksanjo/soundraw-podcast-music/internal/soundraw"
)

const bytesPerMB = 1 << 20

type MetricsHandler struct {
	started   time.Time
	version   string
	transport string
}

func NewMetricsHandler(version, transport string) *MetricsHandler {
	return &MetricsHandler{started: time.Now(), version: version, transport: transport}
}

type RuntimeStats struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	HeapMB     uint64 `json:"heap_mb"`
	GCCycles   uint32 `json:"gc_cycles"`
}

type ComposerLimits struct {
	PollIntervalMS  int64 `json:"poll_interval_ms"`
	MaxPollAttempts int   `json:"max_poll_attempts"`
	BudgetSeconds   int64 `json:"budget_seconds"`
}

type MetricsResponse struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	StartedAt     string         `json:"started_at"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Runtime       RuntimeStats   `json:"runtime"`
	MCP           gin.H          `json:"mcp"`
	Composer      ComposerLimits `json:"composer"`
}

// GetMetrics reports process health and the composition polling budget
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	budget := soundraw.DefaultPollInterval * time.Duration(soundraw.DefaultMaxPollAttempts)

	c.JSON(http.StatusOK, MetricsResponse{
		Status:        "healthy",
		Version:       h.version,
		StartedAt:     h.started.UTC().Format(time.RFC3339),
		UptimeSeconds: time.Since(h.started).Round(10 * time.Millisecond).Seconds(),
		Runtime: RuntimeStats{
			GoVersion:  runtime.Version(),
			Goroutines: runtime.NumGoroutine(),
			HeapMB:     mem.HeapAlloc / bytesPerMB,
			GCCycles:   mem.NumGC,
		},
		MCP: gin.H{
			"server":    mcp.ServerName,
			"version":   mcp.ServerVersion,
			"tool":      mcp.ToolName,
			"transport": h.transport,
		},
		Composer: ComposerLimits{
			PollIntervalMS:  soundraw.DefaultPollInterval.Milliseconds(),
			MaxPollAttempts: soundraw.DefaultMaxPollAttempts,
			BudgetSeconds:   int64(budget.Seconds()),
		},
	})
}
