package progress

import (
	"context"
	"time"
)

// Stage represents a step of a clip generation
type Stage string

const (
	StageMapping Stage = "mapping"
	StageSubmit  Stage = "submit"
	StagePoll    Stage = "poll"
	StageExtract Stage = "extract"
	StageDone    Stage = "done"
)

// Update holds a progress update
type Update struct {
	RequestID   string    `json:"request_id,omitempty"`
	Stage       Stage     `json:"stage"`
	Attempt     int       `json:"attempt,omitempty"`
	MaxAttempts int       `json:"max_attempts,omitempty"`
	Status      string    `json:"status,omitempty"`
	Message     string    `json:"message,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Reporter is the interface for progress reporting
type Reporter interface {
	Report(update Update)
}

// FuncReporter adapts a function to a Reporter
type FuncReporter func(Update)

func (f FuncReporter) Report(update Update) {
	f(update)
}

// NoopReporter discards all updates
type NoopReporter struct{}

func (n NoopReporter) Report(_ Update) {}

type ctxKey struct{}

// WithReporter attaches r to ctx
func WithReporter(ctx context.Context, r Reporter) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// FromContext returns the reporter attached to ctx, or a NoopReporter
func FromContext(ctx context.Context) Reporter {
	if r, ok := ctx.Value(ctxKey{}).(Reporter); ok && r != nil {
		return r
	}
	return NoopReporter{}
}

// Report stamps the update and sends it to the reporter in ctx
func Report(ctx context.Context, update Update) {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now()
	}
	FromContext(ctx).Report(update)
}
