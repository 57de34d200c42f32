package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yksanjo/soundraw-podcast-music/internal/agents/mapper"
	"github.com/yksanjo/soundraw-podcast-music/internal/api"
	"github.com/yksanjo/soundraw-podcast-music/internal/config"
	"github.com/yksanjo/soundraw-podcast-music/internal/llm"
	"github.com/yksanjo/soundraw-podcast-music/internal/logger"
	"github.com/yksanjo/soundraw-podcast-music/internal/mcp"
	"github.com/yksanjo/soundraw-podcast-music/internal/metrics"
	"github.com/yksanjo/soundraw-podcast-music/internal/observability"
	"github.com/yksanjo/soundraw-podcast-music/internal/services"
	"github.com/yksanjo/soundraw-podcast-music/internal/soundraw"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	shutdownTimeout       = 10 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	if err := run(); err != nil {
		logger.Error("Server failed", err, nil)
		logger.Sync()
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; a missing file is not an error
	envErr := godotenv.Load()

	cfg := config.Load()

	if err := logger.Init(cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Debug("No .env file found, using environment variables", nil)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "soundraw-podcast-music@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			EnableLogs:       true,
			Debug:            cfg.Environment != environmentProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			logger.Warn("Failed to initialize Sentry", logger.Fields{"error": err.Error()})
		} else {
			logger.Info("✅ Sentry initialized", logger.Fields{
				"environment": cfg.Environment,
				"release":     releaseVersion,
			})
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		logger.Info("⚠️  Sentry not configured (SENTRY_DSN not set)", nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, recorder, err := buildService(ctx, cfg)
	if err != nil {
		sentry.CaptureException(err)
		return err
	}

	switch cfg.Transport {
	case config.TransportHTTP:
		return serveHTTP(ctx, cfg, service, recorder)
	default:
		return mcp.ServeStdio(ctx, mcp.NewServer(service), os.Stdin, os.Stdout)
	}
}

// buildService wires mapper, composition client and metrics once at startup
func buildService(ctx context.Context, cfg *config.Config) (*services.PodcastMusicService, *metrics.Recorder, error) {
	cloudwatchClient, err := metrics.NewClient(ctx, cfg.Environment)
	if err != nil {
		return nil, nil, err
	}
	recorder := metrics.NewRecorder(metrics.NewSentryMetrics(), cloudwatchClient)

	factory := llm.NewProviderFactory(llm.ProviderConfig{
		DeepSeekAPIKey:  cfg.DeepSeekAPIKey,
		DeepSeekBaseURL: cfg.DeepSeekBaseURL,
		DeepSeekModel:   cfg.DeepSeekModel,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIModel:     cfg.OpenAIModel,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
	})
	provider, err := factory.GetProvider(ctx, cfg.Model(), cfg.LLMProvider)
	if err != nil {
		return nil, nil, err
	}

	parameterMapper, err := mapper.New(provider, mapper.Options{
		Model:    cfg.Model(),
		Langfuse: observability.InitializeLangfuse(ctx, cfg),
		Metrics:  recorder,
	})
	if err != nil {
		return nil, nil, err
	}

	composer, err := soundraw.NewClient(soundraw.Config{
		APIKey:  cfg.SoundrawAPIKey,
		BaseURL: cfg.SoundrawBaseURL,
		Metrics: recorder,
	})
	if err != nil {
		return nil, nil, err
	}

	return services.NewPodcastMusicService(parameterMapper, composer, recorder), recorder, nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, service *services.PodcastMusicService, recorder *metrics.Recorder) error {
	if cfg.Environment == environmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.SetupRouter(cfg, service, recorder, GetVersion()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Starting server", logger.Fields{"port": cfg.Port, "auth_mode": cfg.AuthMode})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
