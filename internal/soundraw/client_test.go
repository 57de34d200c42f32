package soundraw

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yksanjo/soundraw-podcast-music/internal/errors"
	"github.com/yksanjo/soundraw-podcast-music/internal/models"
	"github.com/yksanjo/soundraw-podcast-music/internal/progress"
	"github.com/yksanjo/soundraw-podcast-music/internal/vocabulary"
)

const doneResult = `{
	"request_id": "req-1",
	"status": "done",
	"result": {
		"share_link": "https://soundraw.io/s/abc",
		"m4a_url": "https://cdn.soundraw.io/abc.m4a",
		"mp3_url": "https://cdn.soundraw.io/abc.mp3",
		"wav_url": "https://cdn.soundraw.io/abc.wav",
		"length": 58.5,
		"bpm": "118",
		"timestamps": [{"start": 0, "end": 12.5, "energy": "low"}]
	}
}`

// waitRecorder replaces the poll timer and records every requested wait
type waitRecorder struct {
	waits []time.Duration
}

func (w *waitRecorder) wait(_ context.Context, d time.Duration) error {
	w.waits = append(w.waits, d)
	return nil
}

func newTestClient(t *testing.T, server *httptest.Server, w *waitRecorder) *Client {
	t.Helper()
	client, err := NewClient(Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Wait:       w.wait,
	})
	require.NoError(t, err)
	return client
}

// resultServer answers GET /results/{id} with statuses[i] for the i-th call
// and the done payload once statuses run out.
func resultServer(t *testing.T, calls *int32, statuses ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/results/req-1", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		n := int(atomic.AddInt32(calls, 1))
		if n <= len(statuses) {
			fmt.Fprintf(w, `{"request_id":"req-1","status":%q}`, statuses[n-1])
			return
		}
		fmt.Fprint(w, doneResult)
	}))
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(Config{APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, 2*time.Second, client.pollInterval)
	assert.Equal(t, 150, client.maxAttempts)
	assert.Equal(t, DefaultRequestTimeout, client.httpClient.Timeout)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	cfgErr, ok := apperrors.As[*apperrors.ConfigurationError](err)
	require.True(t, ok)
	assert.Equal(t, "SOUNDRAW_API_KEY", cfgErr.Key)
}

func TestSubmit(t *testing.T) {
	var got composeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/musics/compose", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"request_id":"req-1"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server, &waitRecorder{})

	var updates []progress.Update
	ctx := progress.WithReporter(context.Background(), progress.FuncReporter(func(u progress.Update) {
		updates = append(updates, u)
	}))

	requestID, err := client.Submit(ctx, ComposeParams{
		Moods:  []vocabulary.Mood{vocabulary.MoodEpic},
		Genres: []vocabulary.Genre{vocabulary.GenreRock},
		Themes: []vocabulary.Theme{vocabulary.ThemeTechnology},
		Length: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, "req-1", requestID)

	assert.Equal(t, []string{"Epic"}, got.Moods)
	assert.Equal(t, []string{"Rock"}, got.Genres)
	assert.Equal(t, []string{"Technology"}, got.Themes)
	assert.Equal(t, 60, got.Length)
	assert.Equal(t, "steady", got.Energy, "energy defaults to steady")
	assert.Equal(t, "normal", got.Tempo, "tempo defaults to normal")
	assert.Equal(t, []string{"m4a"}, got.FileFormat)

	require.Len(t, updates, 1)
	assert.Equal(t, progress.StageSubmit, updates[0].Stage)
	assert.Equal(t, "req-1", updates[0].RequestID)
}

func TestSubmitKeepsExplicitValues(t *testing.T) {
	params := NewComposeParams(&models.GenerationParameters{
		Moods:         []vocabulary.Mood{vocabulary.MoodDreamy},
		Genres:        []vocabulary.Genre{vocabulary.GenreAmbient},
		Themes:        []vocabulary.Theme{vocabulary.ThemeNature},
		Tempo:         vocabulary.TempoLow,
		EnergyProfile: vocabulary.EnergyAmbient,
	}, 120, models.FormatWAV)

	wire := params.wire()
	assert.Equal(t, "ambient", wire.Energy)
	assert.Equal(t, "low", wire.Tempo)
	assert.Equal(t, []string{"wav"}, wire.FileFormat)
	assert.Equal(t, 120, wire.Length)
}

func TestSubmitErrors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantBody   string
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":"invalid token"}`)
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"invalid token"}`,
		},
		{
			name: "missing request id",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{}`)
			},
			wantStatus: 0,
			wantBody:   `{}`,
		},
		{
			name: "invalid JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `not json`)
			},
			wantStatus: 0,
			wantBody:   `not json`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := newTestClient(t, server, &waitRecorder{})
			_, err := client.Submit(context.Background(), ComposeParams{Length: 30})

			subErr, ok := apperrors.As[*apperrors.SubmissionError](err)
			require.True(t, ok, "expected SubmissionError, got %v", err)
			assert.Equal(t, tt.wantStatus, subErr.StatusCode)
			assert.Equal(t, tt.wantBody, subErr.Body)
		})
	}
}

func TestSubmitTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, server, &waitRecorder{})
	server.Close()

	_, err := client.Submit(context.Background(), ComposeParams{Length: 30})

	subErr, ok := apperrors.As[*apperrors.SubmissionError](err)
	require.True(t, ok)
	assert.Equal(t, 0, subErr.StatusCode)
	assert.NotNil(t, subErr.Cause)
}

func TestPollReturnsFirstDoneResult(t *testing.T) {
	var calls int32
	server := resultServer(t, &calls, "pending", "processing", "processing")
	defer server.Close()

	w := &waitRecorder{}
	client := newTestClient(t, server, w)

	var updates []progress.Update
	ctx := progress.WithReporter(context.Background(), progress.FuncReporter(func(u progress.Update) {
		updates = append(updates, u)
	}))

	job, err := client.Poll(ctx, "req-1")
	require.NoError(t, err)

	assert.Equal(t, int32(4), atomic.LoadInt32(&calls), "no poll after the done response")
	assert.Len(t, w.waits, 3)
	for _, d := range w.waits {
		assert.Equal(t, DefaultPollInterval, d)
	}

	assert.Equal(t, models.StatusDone, job.Status)
	require.NotNil(t, job.Result)
	assert.Equal(t, "https://soundraw.io/s/abc", job.Result.ShareLink)
	assert.Equal(t, models.BackendString("118"), job.Result.BPM)

	require.Len(t, updates, 4)
	assert.Equal(t, 1, updates[0].Attempt)
	assert.Equal(t, "pending", updates[0].Status)
	assert.Equal(t, 4, updates[3].Attempt)
	assert.Equal(t, "done", updates[3].Status)
	assert.Equal(t, 150, updates[3].MaxAttempts)
}

func TestPollTimesOutAfterBudget(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"request_id":"req-1","status":"pending"}`)
	}))
	defer server.Close()

	w := &waitRecorder{}
	client := newTestClient(t, server, w)

	job, err := client.Poll(context.Background(), "req-1")

	assert.Nil(t, job)
	timeoutErr, ok := apperrors.As[*apperrors.PollTimeoutError](err)
	require.True(t, ok, "expected PollTimeoutError, got %v", err)
	assert.Equal(t, "req-1", timeoutErr.RequestID)
	assert.Equal(t, 150, timeoutErr.Attempts)
	assert.Equal(t, int32(150), atomic.LoadInt32(&calls))
	assert.Len(t, w.waits, 149, "waits happen only between attempts")
}

func TestPollDoneWithoutResultKeepsPolling(t *testing.T) {
	var calls int32
	server := resultServer(t, &calls, "done")
	defer server.Close()

	client := newTestClient(t, server, &waitRecorder{})

	job, err := client.Poll(context.Background(), "req-1")
	require.NoError(t, err)
	require.NotNil(t, job.Result)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPollStopsOnFailure(t *testing.T) {
	var calls int32
	server := resultServer(t, &calls, "processing", "failed", "done")
	defer server.Close()

	client := newTestClient(t, server, &waitRecorder{})

	_, err := client.Poll(context.Background(), "req-1")

	failedErr, ok := apperrors.As[*apperrors.GenerationFailedError](err)
	require.True(t, ok)
	assert.Equal(t, "req-1", failedErr.RequestID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "no poll after the failed response")
}

func TestPollTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream down")
	}))
	defer server.Close()

	w := &waitRecorder{}
	client := newTestClient(t, server, w)

	_, err := client.Poll(context.Background(), "req-1")

	transportErr, ok := apperrors.As[*apperrors.PollTransportError](err)
	require.True(t, ok)
	assert.Equal(t, "req-1", transportErr.RequestID)
	assert.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
	assert.Equal(t, "upstream down", transportErr.Body)
	assert.Empty(t, w.waits)
}

func TestPollHonorsContextDuringWait(t *testing.T) {
	var calls int32
	server := resultServer(t, &calls, "pending", "pending")
	defer server.Close()

	client, err := NewClient(Config{
		APIKey:       "test-key",
		BaseURL:      server.URL,
		HTTPClient:   server.Client(),
		PollInterval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Poll(ctx, "req-1")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCompose(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/musics/compose", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"request_id":"req-1"}`)
	})
	mux.HandleFunc("/results/req-1", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) == 1 {
			fmt.Fprint(w, `{"request_id":"req-1","status":"processing"}`)
			return
		}
		fmt.Fprint(w, doneResult)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server, &waitRecorder{})

	job, err := client.Compose(context.Background(), ComposeParams{Length: 60})
	require.NoError(t, err)
	assert.Equal(t, "req-1", job.RequestID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&polls))
}

func TestGetResultFillsMissingRequestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"processing"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server, &waitRecorder{})

	job, err := client.GetResult(context.Background(), "req-9")
	require.NoError(t, err)
	assert.Equal(t, "req-9", job.RequestID)
	assert.Equal(t, models.StatusProcessing, job.Status)
}
