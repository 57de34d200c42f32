package metrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/yksanjo/soundraw-podcast-music/internal/logger"
)

const (
	namespace                = "PodcastMusic/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// putMetricDataAPI is the slice of the CloudWatch client used here
type putMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput,
		optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      putMetricDataAPI
	enabled     bool
	environment string
	// async sends each metric batch from its own goroutine
	async bool
}

// NewClient creates a new CloudWatch metrics client
func NewClient(ctx context.Context, environment string) (*Client, error) {
	// Only enable in production
	if environment != "production" {
		logger.Info("📊 CloudWatch Metrics: DISABLED", logger.Fields{"environment": environment})
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Warn("⚠️  Failed to load AWS config for CloudWatch", logger.Fields{"error": err.Error()})
		return &Client{enabled: false}, nil
	}

	logger.Info("📊 CloudWatch Metrics: ✅ ENABLED", logger.Fields{"namespace": namespace})

	return &Client{
		client:      cloudwatch.NewFromConfig(cfg),
		enabled:     true,
		environment: environment,
		async:       true,
	}, nil
}

// newClientWithAPI builds a synchronous client around api
func newClientWithAPI(api putMetricDataAPI, environment string) *Client {
	return &Client{client: api, enabled: true, environment: environment}
}

// Enabled reports whether metrics are shipped
func (m *Client) Enabled() bool {
	return m != nil && m.enabled
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	if !m.Enabled() {
		return
	}

	m.dispatch(func(ctx context.Context) {
		metricName := "APIRequests"
		if statusCode >= httpStatusServerError {
			metricName = "APIErrors"
		}

		dimensions := m.dimensions("Endpoint", endpoint)
		m.put(ctx, metricName, 1, types.StandardUnitCount, dimensions)
		m.put(ctx, "APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
	})
}

// RecordTokenUsage records text-generation token usage
func (m *Client) RecordTokenUsage(model string, totalTokens, inputTokens, outputTokens int64) {
	if !m.Enabled() {
		return
	}

	m.dispatch(func(ctx context.Context) {
		dimensions := m.dimensions("Model", model)
		m.put(ctx, "LLMTokens/Total", float64(totalTokens), types.StandardUnitCount, dimensions)
		m.put(ctx, "LLMTokens/Input", float64(inputTokens), types.StandardUnitCount, dimensions)
		m.put(ctx, "LLMTokens/Output", float64(outputTokens), types.StandardUnitCount, dimensions)
	})
}

// RecordPollAttempts records the number of status checks a composition needed
func (m *Client) RecordPollAttempts(attempts int, outcome string) {
	if !m.Enabled() {
		return
	}

	m.dispatch(func(ctx context.Context) {
		m.put(ctx, "PollAttempts", float64(attempts), types.StandardUnitCount, m.dimensions("Outcome", outcome))
	})
}

// RecordCompositionDuration records submit-to-result time on the music backend
func (m *Client) RecordCompositionDuration(duration time.Duration, success bool) {
	if !m.Enabled() {
		return
	}

	m.dispatch(func(ctx context.Context) {
		m.put(ctx, "CompositionDuration", float64(duration.Milliseconds()),
			types.StandardUnitMilliseconds, m.dimensions("Success", boolToString(success)))
	})
}

// RecordGenerationOutcome counts finished clip generations by kind and error code
func (m *Client) RecordGenerationOutcome(clipKind, errorCode string) {
	if !m.Enabled() {
		return
	}

	m.dispatch(func(ctx context.Context) {
		dimensions := append(m.dimensions("ClipKind", clipKind), types.Dimension{
			Name:  aws.String("Outcome"),
			Value: aws.String(errorCode),
		})
		m.put(ctx, "Generations", 1, types.StandardUnitCount, dimensions)
	})
}

func (m *Client) dispatch(fn func(ctx context.Context)) {
	if m.async {
		go fn(context.Background())
		return
	}
	fn(context.Background())
}

func (m *Client) dimensions(name, value string) []types.Dimension {
	return []types.Dimension{
		{
			Name:  aws.String(name),
			Value: aws.String(value),
		},
		{
			Name:  aws.String("Environment"),
			Value: aws.String(m.environment),
		},
	}
}

func (m *Client) put(ctx context.Context, metricName string, value float64, unit types.StandardUnit, dimensions []types.Dimension) {
	if err := m.putMetric(ctx, metricName, value, unit, dimensions); err != nil {
		logger.Warn("Failed to record CloudWatch metric", logger.Fields{
			"metric": metricName,
			"error":  err.Error(),
		})
	}
}

// putMetric sends a metric to CloudWatch
func (m *Client) putMetric(
	ctx context.Context,
	metricName string,
	value float64,
	unit types.StandardUnit,
	dimensions []types.Dimension,
) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})

	return err
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
