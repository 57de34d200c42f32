package metrics

import (
	"context"
	"time"
)

// Poll outcomes
const (
	OutcomeDone    = "done"
	OutcomeFailed  = "failed"
	OutcomeTimeout = "timeout"
	OutcomeError   = "error"
)

// Recorder fans domain events out to Sentry and CloudWatch.
// A nil Recorder discards everything.
type Recorder struct {
	sentry     *SentryMetrics
	cloudwatch *Client
}

// NewRecorder combines the two sinks. Either may be nil.
func NewRecorder(sentryMetrics *SentryMetrics, cloudwatchClient *Client) *Recorder {
	return &Recorder{sentry: sentryMetrics, cloudwatch: cloudwatchClient}
}

func (r *Recorder) TokenUsage(ctx context.Context, model string, total, input, output int64) {
	if r == nil {
		return
	}
	if r.sentry != nil {
		r.sentry.RecordTokenUsage(ctx, model, total, input, output)
	}
	r.cloudwatch.RecordTokenUsage(model, total, input, output)
}

func (r *Recorder) PollFinished(ctx context.Context, requestID string, attempts int, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	if r.sentry != nil {
		r.sentry.RecordPollAttempts(ctx, requestID, attempts, outcome)
	}
	r.cloudwatch.RecordPollAttempts(attempts, outcome)
	r.cloudwatch.RecordCompositionDuration(elapsed, outcome == OutcomeDone)
}

func (r *Recorder) GenerationFinished(ctx context.Context, clipKind, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	if r.sentry != nil {
		r.sentry.RecordGeneration(ctx, clipKind, outcome, elapsed)
	}
	r.cloudwatch.RecordGenerationOutcome(clipKind, outcome)
}

func (r *Recorder) APIRequest(ctx context.Context, endpoint string, statusCode int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if r.sentry != nil {
		r.sentry.RecordAPIRequest(ctx, endpoint, statusCode, elapsed)
	}
	r.cloudwatch.RecordAPIRequest(endpoint, statusCode, elapsed)
}
