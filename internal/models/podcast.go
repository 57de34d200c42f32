package models

import (
	"bytes"
	"encoding/json"
	"strings"

	apperrors "github.com/yksanjo/soundraw-podcast-music/internal/errors"
	"github.com/yksanjo/soundraw-podcast-music/internal/vocabulary"
)

// ClipKind is the podcast placement a clip is generated for
type ClipKind string

const (
	ClipIntro      ClipKind = "intro"
	ClipOutro      ClipKind = "outro"
	ClipBackground ClipKind = "background"
	ClipJingle     ClipKind = "jingle"
)

var ClipKinds = []ClipKind{ClipIntro, ClipOutro, ClipBackground, ClipJingle}

// Platform selects the integration snippet flavour
type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

var Platforms = []Platform{PlatformWeb, PlatformIOS, PlatformAndroid}

// AudioFormat is an output container offered by the backend
type AudioFormat string

const (
	FormatM4A AudioFormat = "m4a"
	FormatMP3 AudioFormat = "mp3"
	FormatWAV AudioFormat = "wav"
)

var AudioFormats = []AudioFormat{FormatM4A, FormatMP3, FormatWAV}

const (
	MinDurationSeconds     = 10
	MaxDurationSeconds     = 300
	DefaultDurationSeconds = 60
	DefaultFormat          = FormatM4A
	DefaultClipKind        = ClipBackground
)

// ClipRequest is the input of a clip generation.
// Only Description is required.
type ClipRequest struct {
	Description     string      `json:"description"`
	PodcastType     ClipKind    `json:"podcast_type,omitempty"`
	DurationSeconds *int        `json:"duration_seconds,omitempty"`
	Mood            string      `json:"mood,omitempty"`
	Style           string      `json:"style,omitempty"` // accepted and logged, unused downstream
	Engine          Platform    `json:"engine,omitempty"`
	FileFormat      AudioFormat `json:"file_format,omitempty"`
}

// Validate rejects blank descriptions, out of range durations and unknown enum values
func (r *ClipRequest) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return apperrors.NewValidationError("description", r.Description, "description is required")
	}
	if r.DurationSeconds != nil {
		d := *r.DurationSeconds
		if d < MinDurationSeconds || d > MaxDurationSeconds {
			return apperrors.NewValidationError("duration_seconds", d, "duration_seconds must be between 10 and 300")
		}
	}
	if r.PodcastType != "" && !contains(ClipKinds, r.PodcastType) {
		return apperrors.NewValidationError("podcast_type", r.PodcastType, "podcast_type must be one of intro, outro, background, jingle")
	}
	if r.Engine != "" && !contains(Platforms, r.Engine) {
		return apperrors.NewValidationError("engine", r.Engine, "engine must be one of web, ios, android")
	}
	if r.FileFormat != "" && !contains(AudioFormats, r.FileFormat) {
		return apperrors.NewValidationError("file_format", r.FileFormat, "file_format must be one of m4a, mp3, wav")
	}
	return nil
}

// Duration returns the requested duration or the default
func (r *ClipRequest) Duration() int {
	if r.DurationSeconds == nil {
		return DefaultDurationSeconds
	}
	return *r.DurationSeconds
}

// Format returns the requested format or the default
func (r *ClipRequest) Format() AudioFormat {
	if r.FileFormat == "" {
		return DefaultFormat
	}
	return r.FileFormat
}

// GenerationParameters is the validated output of the parameter mapper.
// Moods, Genres and Themes are never empty. Tempo and EnergyProfile may be unset.
type GenerationParameters struct {
	Moods         []vocabulary.Mood        `json:"moods"`
	Genres        []vocabulary.Genre       `json:"genres"`
	Themes        []vocabulary.Theme       `json:"themes"`
	Tempo         vocabulary.Tempo         `json:"tempo,omitempty"`
	EnergyProfile vocabulary.EnergyProfile `json:"energy_profile,omitempty"`
	Reasoning     string                   `json:"reasoning"`
}

// JobStatus is the backend-reported state of a composition
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusDone       JobStatus = "done"
	StatusFailed     JobStatus = "failed"
)

// CompositionJob mirrors the backend's result document. It is only ever read.
type CompositionJob struct {
	RequestID string     `json:"request_id"`
	Status    JobStatus  `json:"status"`
	Result    *JobResult `json:"result,omitempty"`
}

// JobResult is the payload of a finished composition
type JobResult struct {
	ShareLink  string          `json:"share_link"`
	M4AURL     string          `json:"m4a_url,omitempty"`
	MP3URL     string          `json:"mp3_url,omitempty"`
	WAVURL     string          `json:"wav_url,omitempty"`
	Length     float64         `json:"length"`
	BPM        BackendString   `json:"bpm"`
	Timestamps []EnergySegment `json:"timestamps,omitempty"`
}

// EnergySegment is one timestamped energy level of a composed track
type EnergySegment struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Energy string  `json:"energy"`
}

// BackendString decodes from either a JSON string or a JSON number
type BackendString string

func (s *BackendString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = BackendString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = BackendString(num.String())
	return nil
}

// GenerationParamsEcho is the parameter block echoed back in a NormalizedResult
type GenerationParamsEcho struct {
	Moods         []string `json:"moods"`
	Genres        []string `json:"genres"`
	Themes        []string `json:"themes"`
	Tempo         string   `json:"tempo,omitempty"`
	EnergyProfile string   `json:"energy_profile,omitempty"`
}

// NormalizedResult is the response of a successful generation
type NormalizedResult struct {
	ShareLink        string               `json:"share_link"`
	AudioURL         string               `json:"audio_url"`
	RequestID        string               `json:"request_id"`
	DurationSeconds  float64              `json:"duration_seconds"`
	BPM              int                  `json:"bpm"`
	FileFormat       AudioFormat          `json:"file_format"`
	IntegrationCode  string               `json:"integration_code,omitempty"`
	Reasoning        string               `json:"reasoning"`
	GenerationParams GenerationParamsEcho `json:"generation_params"`
	Timestamps       []EnergySegment      `json:"timestamps,omitempty"`
}

// EchoParams converts mapper output into its wire form
func EchoParams(p *GenerationParameters) GenerationParamsEcho {
	return GenerationParamsEcho{
		Moods:         vocabulary.Strings(p.Moods),
		Genres:        vocabulary.Strings(p.Genres),
		Themes:        vocabulary.Strings(p.Themes),
		Tempo:         string(p.Tempo),
		EnergyProfile: string(p.EnergyProfile),
	}
}

func contains[T comparable](values []T, v T) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
