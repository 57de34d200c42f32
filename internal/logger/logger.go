package logger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields represents structured log fields
type Fields map[string]interface{}

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// Init builds the process logger. Output goes to stderr so stdout stays
// reserved for the stdio tool transport.
func Init(environment string) error {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	SetLogger(z)
	return nil
}

// SetLogger replaces the process logger
func SetLogger(z *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = z
}

// Zap returns the underlying zap logger
func Zap() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync flushes buffered log entries
func Sync() {
	_ = Zap().Sync()
}

// Info logs an informational message with structured fields
func Info(msg string, fields Fields) {
	Zap().Info(msg, toZap(fields)...)

	breadcrumb(sentry.LevelInfo, msg, fields)
}

// Error logs an error message with structured fields and sends to Sentry
func Error(msg string, err error, fields Fields) {
	Zap().Error(msg, append(toZap(fields), zap.Error(err))...)

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetContext("fields", sentry.Context(fields))

			// Tags for filtering in Sentry
			if requestID, ok := fields["request_id"].(string); ok {
				scope.SetTag("request_id", requestID)
			}
			if model, ok := fields["model"].(string); ok {
				scope.SetTag("model", model)
			}
			if code, ok := fields["error_code"].(string); ok {
				scope.SetTag("error_code", code)
			}

			hub.CaptureException(err)
		})
	}
}

// Warn logs a warning message with structured fields
func Warn(msg string, fields Fields) {
	Zap().Warn(msg, toZap(fields)...)

	breadcrumb(sentry.LevelWarning, msg, fields)
}

// Debug logs a debug message with structured fields
func Debug(msg string, fields Fields) {
	Zap().Debug(msg, toZap(fields)...)

	breadcrumb(sentry.LevelDebug, msg, fields)
}

// LogCompletionRequest logs a text-generation call with its token usage
func LogCompletionRequest(ctx context.Context, model string, duration time.Duration, inputTokens, outputTokens int64, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}

	fields["model"] = model
	fields["duration_ms"] = duration.Milliseconds()
	fields["input_tokens"] = inputTokens
	fields["output_tokens"] = outputTokens
	fields["total_tokens"] = inputTokens + outputTokens

	Info("Completion request completed", fields)

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		span := sentry.StartSpan(ctx, "llm.complete")
		span.Description = model
		span.SetData("input_tokens", inputTokens)
		span.SetData("output_tokens", outputTokens)
		span.Finish()
	}
}

// toZap converts Fields to zap fields in a stable order
func toZap(fields Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}

// breadcrumb records non-error log lines on the Sentry hub so captured
// errors carry the mapping and polling trail that led to them
func breadcrumb(level sentry.Level, msg string, fields Fields) {
	if sentry.CurrentHub().Client() == nil {
		return
	}
	data := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		data[k] = v
	}
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:     string(level),
		Category: "log",
		Message:  msg,
		Data:     data,
		Level:    level,
	})
}
