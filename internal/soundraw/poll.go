package soundraw

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	apperrors "github.com/yksanjo/soundraw-podcast-music/internal/errors"
	"github.com/yksanjo/soundraw-podcast-music/internal/logger"
	"github.com/yksanjo/soundraw-podcast-music/internal/metrics"
	"github.com/yksanjo/soundraw-podcast-music/internal/models"
	"github.com/yksanjo/soundraw-podcast-music/internal/progress"
)

// Poll rechecks a composition every poll interval until it is done, failed,
// or the attempt budget runs out. Waits happen only between attempts.
//
// A PollTimeoutError is a client-side give-up: the job may still finish on
// the backend afterwards, and no cancel call is made.
func (c *Client) Poll(ctx context.Context, requestID string) (*models.CompositionJob, error) {
	startTime := time.Now()

	transaction := sentry.StartTransaction(ctx, "soundraw.poll")
	defer transaction.Finish()
	transaction.SetTag("request_id", requestID)

	finish := func(attempts int, outcome string) {
		transaction.SetTag("outcome", outcome)
		transaction.SetData("attempts", attempts)
		c.metrics.PollFinished(ctx, requestID, attempts, outcome, time.Since(startTime))
	}

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, c.pollInterval); err != nil {
				finish(attempt-1, metrics.OutcomeError)
				return nil, err
			}
		}

		job, err := c.GetResult(ctx, requestID)
		if err != nil {
			finish(attempt, metrics.OutcomeError)
			return nil, err
		}

		progress.Report(ctx, progress.Update{
			RequestID:   requestID,
			Stage:       progress.StagePoll,
			Attempt:     attempt,
			MaxAttempts: c.maxAttempts,
			Status:      string(job.Status),
		})

		switch job.Status {
		case models.StatusDone:
			if job.Result != nil {
				finish(attempt, metrics.OutcomeDone)
				logger.Info("✅ Composition finished", logger.Fields{
					"request_id":  requestID,
					"attempts":    attempt,
					"duration_ms": time.Since(startTime).Milliseconds(),
				})
				return job, nil
			}
			logger.Debug("Composition reported done without a result, rechecking", logger.Fields{
				"request_id": requestID,
				"attempt":    attempt,
			})
		case models.StatusFailed:
			finish(attempt, metrics.OutcomeFailed)
			return nil, apperrors.NewGenerationFailedError(requestID)
		}
	}

	finish(c.maxAttempts, metrics.OutcomeTimeout)
	logger.Warn("Gave up waiting for composition", logger.Fields{
		"request_id": requestID,
		"attempts":   c.maxAttempts,
	})
	return nil, apperrors.NewPollTimeoutError(requestID, c.maxAttempts)
}

func timerWait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
