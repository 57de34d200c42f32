package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryMetrics records domain events as spans on the active transaction
type SentryMetrics struct{}

func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{}
}

// spanStatus maps an outcome label onto a span status
func spanStatus(outcome string) sentry.SpanStatus {
	switch outcome {
	case OutcomeDone:
		return sentry.SpanStatusOK
	case OutcomeTimeout:
		return sentry.SpanStatusDeadlineExceeded
	case OutcomeFailed:
		return sentry.SpanStatusAborted
	default:
		return sentry.SpanStatusInternalError
	}
}

func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, route string, statusCode int, elapsed time.Duration) {
	span := sentry.StartSpan(ctx, "http.route")
	defer span.Finish()

	ok := statusCode < http.StatusBadRequest
	span.Description = route
	span.SetTag("route", route)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetData("elapsed_ms", elapsed.Milliseconds())
	if ok {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.HTTPtoSpanStatus(statusCode)
	}
}

// RecordTokenUsage tags the mapping call's token spend on the current transaction
func (m *SentryMetrics) RecordTokenUsage(ctx context.Context, model string, totalTokens, inputTokens, outputTokens int64) {
	if tx := sentry.TransactionFromContext(ctx); tx != nil {
		tx.SetTag("mapper.model", model)
		tx.SetData("mapper.total_tokens", totalTokens)
	}

	span := sentry.StartSpan(ctx, "mapper.tokens")
	defer span.Finish()

	span.Description = model
	span.SetData("input_tokens", inputTokens)
	span.SetData("output_tokens", outputTokens)
	span.SetData("total_tokens", totalTokens)
	span.Status = sentry.SpanStatusOK
}

func (m *SentryMetrics) RecordPollAttempts(ctx context.Context, requestID string, attempts int, outcome string) {
	span := sentry.StartSpan(ctx, "soundraw.poll.summary")
	defer span.Finish()

	span.Description = requestID
	span.SetTag("outcome", outcome)
	span.SetData("attempts", attempts)
	span.Status = spanStatus(outcome)
}

func (m *SentryMetrics) RecordGeneration(ctx context.Context, clipKind, outcome string, elapsed time.Duration) {
	span := sentry.StartSpan(ctx, "podcast.clip")
	defer span.Finish()

	span.Description = clipKind
	span.SetTag("clip_kind", clipKind)
	span.SetTag("outcome", outcome)
	span.SetData("elapsed_ms", elapsed.Milliseconds())
	span.Status = spanStatus(outcome)
}
