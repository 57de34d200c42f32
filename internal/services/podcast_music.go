package services

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	apperrors "github.com/yksanjo/soundraw-podcast-music/internal/errors"
	"github.com/yksanjo/soundraw-podcast-music/internal/integration"
	"github.com/yksanjo/soundraw-podcast-music/internal/logger"
	"github.com/yksanjo/soundraw-podcast-music/internal/metrics"
	"github.com/yksanjo/soundraw-podcast-music/internal/models"
	"github.com/yksanjo/soundraw-podcast-music/internal/progress"
	"github.com/yksanjo/soundraw-podcast-music/internal/soundraw"
)

// ParameterMapper turns a description into validated generation parameters
type ParameterMapper interface {
	Map(ctx context.Context, description string, kind models.ClipKind, moodHint string) (*models.GenerationParameters, error)
}

// Composer runs compositions against the music backend
type Composer interface {
	Compose(ctx context.Context, params soundraw.ComposeParams) (*models.CompositionJob, error)
	GetResult(ctx context.Context, requestID string) (*models.CompositionJob, error)
}

// PodcastMusicService runs one clip generation end to end:
// map the description, compose, extract, attach an integration snippet.
type PodcastMusicService struct {
	mapper   ParameterMapper
	composer Composer
	metrics  *metrics.Recorder
}

func NewPodcastMusicService(mapper ParameterMapper, composer Composer, recorder *metrics.Recorder) *PodcastMusicService {
	return &PodcastMusicService{
		mapper:   mapper,
		composer: composer,
		metrics:  recorder,
	}
}

// Generate never returns a partial result. Errors propagate unchanged.
func (s *PodcastMusicService) Generate(ctx context.Context, req *models.ClipRequest) (*models.NormalizedResult, error) {
	startTime := time.Now()
	kind := req.PodcastType

	transaction := sentry.StartTransaction(ctx, "podcast.generate")
	defer transaction.Finish()
	transaction.SetTag("clip_kind", string(kind))

	result, err := s.generate(ctx, req)
	if err != nil {
		transaction.SetTag("success", "false")
		transaction.SetTag("error_code", string(apperrors.CodeOf(err)))
		s.metrics.GenerationFinished(ctx, string(kind), outcomeOf(err), time.Since(startTime))
		return nil, err
	}

	transaction.SetTag("success", "true")
	s.metrics.GenerationFinished(ctx, string(kind), metrics.OutcomeDone, time.Since(startTime))
	logger.Info("🎧 Podcast music generated", logger.Fields{
		"request_id":  result.RequestID,
		"clip_kind":   string(kind),
		"file_format": string(result.FileFormat),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})
	return result, nil
}

func (s *PodcastMusicService) generate(ctx context.Context, req *models.ClipRequest) (*models.NormalizedResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Generating podcast music", logger.Fields{
		"clip_kind": string(req.PodcastType),
		"mood":      req.Mood,
		"style":     req.Style,
		"engine":    string(req.Engine),
	})

	progress.Report(ctx, progress.Update{Stage: progress.StageMapping, Message: "mapping description to music parameters"})
	params, err := s.mapper.Map(ctx, req.Description, req.PodcastType, req.Mood)
	if err != nil {
		return nil, err
	}

	var formats []models.AudioFormat
	if req.FileFormat != "" {
		formats = []models.AudioFormat{req.FileFormat}
	}

	job, err := s.composer.Compose(ctx, soundraw.NewComposeParams(params, req.Duration(), formats...))
	if err != nil {
		return nil, err
	}

	progress.Report(ctx, progress.Update{RequestID: job.RequestID, Stage: progress.StageExtract})
	extracted, err := soundraw.Extract(job, req.Format())
	if err != nil {
		return nil, err
	}

	result := &models.NormalizedResult{
		ShareLink:        extracted.ShareLink,
		AudioURL:         extracted.AudioURL,
		RequestID:        extracted.RequestID,
		DurationSeconds:  extracted.DurationSeconds,
		BPM:              extracted.BPM,
		FileFormat:       extracted.Format,
		Reasoning:        params.Reasoning,
		GenerationParams: models.EchoParams(params),
		Timestamps:       extracted.Timestamps,
	}

	if req.Engine != "" {
		kind := req.PodcastType
		if kind == "" {
			kind = models.DefaultClipKind
		}
		if code, ok := integration.Snippet(req.Engine, extracted.AudioURL, kind); ok {
			result.IntegrationCode = code
		}
	}

	progress.Report(ctx, progress.Update{RequestID: result.RequestID, Stage: progress.StageDone})
	return result, nil
}

// JobStatus fetches a backend job once, e.g. to re-check it after a poll timeout
func (s *PodcastMusicService) JobStatus(ctx context.Context, requestID string) (*models.CompositionJob, error) {
	if requestID == "" {
		return nil, apperrors.NewValidationError("request_id", requestID, "request_id is required")
	}
	return s.composer.GetResult(ctx, requestID)
}

func outcomeOf(err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodePollTimeout:
		return metrics.OutcomeTimeout
	case apperrors.ErrCodeGenerationFailed:
		return metrics.OutcomeFailed
	default:
		return metrics.OutcomeError
	}
}
