package soundraw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	apperrors "github.com/yksanjo/soundraw-podcast-music/internal/errors"
	"github.com/yksanjo/soundraw-podcast-music/internal/logger"
	"github.com/yksanjo/soundraw-podcast-music/internal/metrics"
	"github.com/yksanjo/soundraw-podcast-music/internal/models"
	"github.com/yksanjo/soundraw-podcast-music/internal/progress"
	"github.com/yksanjo/soundraw-podcast-music/internal/vocabulary"
)

const (
	DefaultBaseURL         = "https://soundraw.io/api/v3"
	DefaultPollInterval    = 2000 * time.Millisecond
	DefaultMaxPollAttempts = 150
	DefaultRequestTimeout  = 30 * time.Second

	maxBodyBytes = 1 << 20
)

// WaitFunc suspends the caller for d or until ctx is done
type WaitFunc func(ctx context.Context, d time.Duration) error

// Config configures a Client. Zero values fall back to the defaults above.
type Config struct {
	APIKey          string
	BaseURL         string
	PollInterval    time.Duration
	MaxPollAttempts int
	HTTPClient      *http.Client
	Wait            WaitFunc
	Metrics         *metrics.Recorder
}

// Client talks to the Soundraw v3 composition API
type Client struct {
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	maxAttempts  int
	httpClient   *http.Client
	wait         WaitFunc
	metrics      *metrics.Recorder
}

// NewClient builds a client. A missing API key is a configuration error.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigurationError("SOUNDRAW_API_KEY", "SOUNDRAW_API_KEY environment variable is required")
	}

	c := &Client{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		pollInterval: cfg.PollInterval,
		maxAttempts:  cfg.MaxPollAttempts,
		httpClient:   cfg.HTTPClient,
		wait:         cfg.Wait,
		metrics:      cfg.Metrics,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxPollAttempts
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	if c.wait == nil {
		c.wait = timerWait
	}

	return c, nil
}

// ComposeParams is what gets submitted for one composition
type ComposeParams struct {
	Moods       []vocabulary.Mood
	Genres      []vocabulary.Genre
	Themes      []vocabulary.Theme
	Length      int
	Energy      vocabulary.EnergyProfile
	Tempo       vocabulary.Tempo
	FileFormats []models.AudioFormat
}

// NewComposeParams builds submission parameters from mapper output
func NewComposeParams(p *models.GenerationParameters, length int, formats ...models.AudioFormat) ComposeParams {
	return ComposeParams{
		Moods:       p.Moods,
		Genres:      p.Genres,
		Themes:      p.Themes,
		Length:      length,
		Energy:      p.EnergyProfile,
		Tempo:       p.Tempo,
		FileFormats: formats,
	}
}

type composeRequest struct {
	Moods      []string `json:"moods"`
	Genres     []string `json:"genres"`
	Themes     []string `json:"themes"`
	Length     int      `json:"length"`
	Energy     string   `json:"energy"`
	Tempo      string   `json:"tempo"`
	FileFormat []string `json:"file_format"`
}

type composeResponse struct {
	RequestID string `json:"request_id"`
}

func (p ComposeParams) wire() composeRequest {
	req := composeRequest{
		Moods:  vocabulary.Strings(p.Moods),
		Genres: vocabulary.Strings(p.Genres),
		Themes: vocabulary.Strings(p.Themes),
		Length: p.Length,
		Energy: string(p.Energy),
		Tempo:  string(p.Tempo),
	}
	if req.Energy == "" {
		req.Energy = string(vocabulary.EnergySteady)
	}
	if req.Tempo == "" {
		req.Tempo = string(vocabulary.TempoNormal)
	}
	for _, f := range p.FileFormats {
		req.FileFormat = append(req.FileFormat, string(f))
	}
	if len(req.FileFormat) == 0 {
		req.FileFormat = []string{string(models.DefaultFormat)}
	}
	return req
}

// Submit starts a composition and returns the backend's request id
func (c *Client) Submit(ctx context.Context, params ComposeParams) (string, error) {
	body, err := json.Marshal(params.wire())
	if err != nil {
		return "", apperrors.NewSubmissionError(0, "", err)
	}

	logger.Info("🎵 Submitting composition", logger.Fields{
		"length": params.Length,
		"moods":  vocabulary.Strings(params.Moods),
	})

	req, err := c.newRequest(ctx, http.MethodPost, "/musics/compose", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewSubmissionError(0, "", err)
	}

	status, respBody, err := c.do(req)
	if err != nil {
		return "", apperrors.NewSubmissionError(0, "", err)
	}
	if !isSuccess(status) {
		return "", apperrors.NewSubmissionError(status, string(respBody), nil)
	}

	var decoded composeResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", apperrors.NewSubmissionError(0, string(respBody), err)
	}
	if decoded.RequestID == "" {
		return "", apperrors.NewSubmissionError(0, string(respBody), fmt.Errorf("response has no request_id"))
	}

	progress.Report(ctx, progress.Update{
		RequestID: decoded.RequestID,
		Stage:     progress.StageSubmit,
		Message:   "composition submitted",
	})
	return decoded.RequestID, nil
}

// GetResult fetches the current state of a composition once
func (c *Client) GetResult(ctx context.Context, requestID string) (*models.CompositionJob, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/results/"+url.PathEscape(requestID), nil)
	if err != nil {
		return nil, apperrors.NewPollTransportError(requestID, 0, "", err)
	}

	status, respBody, err := c.do(req)
	if err != nil {
		return nil, apperrors.NewPollTransportError(requestID, 0, "", err)
	}
	if !isSuccess(status) {
		return nil, apperrors.NewPollTransportError(requestID, status, string(respBody), nil)
	}

	var job models.CompositionJob
	if err := json.Unmarshal(respBody, &job); err != nil {
		return nil, apperrors.NewPollTransportError(requestID, status, string(respBody), err)
	}
	if job.RequestID == "" {
		job.RequestID = requestID
	}
	return &job, nil
}

// Compose submits params and polls until the composition is finished
func (c *Client) Compose(ctx context.Context, params ComposeParams) (*models.CompositionJob, error) {
	transaction := sentry.StartTransaction(ctx, "soundraw.compose")
	defer transaction.Finish()

	requestID, err := c.Submit(ctx, params)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}
	transaction.SetTag("request_id", requestID)

	job, err := c.Poll(ctx, requestID)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	transaction.SetTag("success", "true")
	return job, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
